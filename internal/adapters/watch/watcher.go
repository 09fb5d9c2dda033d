package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/addon-bridge/internal/adapters/workspace"
	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/eapache/queue"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

// SendFunc pushes one reload request to the bridge.
type SendFunc func(ctx context.Context, workspace, file string) error

// Delivery describes one attempted send.
type Delivery struct {
	Workspace string
	File      string
	At        time.Time
	Err       error
}

type Option func(*Watcher)

func WithDebounce(debounce time.Duration) Option {
	return func(w *Watcher) {
		if debounce > 0 {
			w.debounce = debounce
		}
	}
}

// WithPackageMode sends the package entry point instead of the changed file
// whenever the file belongs to a package.
func WithPackageMode(enabled bool) Option {
	return func(w *Watcher) {
		w.packageMode = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithObserver(observer func(Delivery)) Option {
	return func(w *Watcher) {
		w.observer = observer
	}
}

// Watcher turns settled source file changes under a directory tree into
// reload sends, one at a time and in the order the changes settled.
type Watcher struct {
	root        string
	layout      domain.Layout
	resolver    workspace.Resolver
	debounce    time.Duration
	packageMode bool
	logger      *slog.Logger
	observer    func(Delivery)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending *queue.Queue
	closed  bool

	ready   chan struct{}
	started chan struct{}
}

func New(root string, resolver workspace.Resolver, opts ...Option) *Watcher {
	w := &Watcher{
		root:     filepath.Clean(root),
		layout:   resolver.Layout,
		resolver: resolver,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		timers:   map[string]*time.Timer{},
		pending:  queue.New(),
		ready:    make(chan struct{}, 1),
		started:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Started is closed once the directory tree is being watched.
func (w *Watcher) Started() <-chan struct{} {
	return w.started
}

func (w *Watcher) Run(ctx context.Context, send SendFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}
	defer w.stop()

	w.logger.Info("watching for changes", "path", w.root, "debounce", w.debounce.String())
	close(w.started)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-w.ready:
			w.drain(ctx, send)
		}
	}
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			w.logger.Warn("watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fsw, event.Name); err != nil {
				w.logger.Warn("watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.layout.IsSource(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.timers[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.enqueue(path)
	})
}

func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	if w.closed {
		w.mu.Unlock()
		return
	}
	for i := 0; i < w.pending.Length(); i++ {
		if w.pending.Get(i).(string) == path {
			w.mu.Unlock()
			return
		}
	}
	w.pending.Add(path)
	w.mu.Unlock()

	select {
	case w.ready <- struct{}{}:
	default:
	}
}

func (w *Watcher) next() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending.Length() == 0 {
		return "", false
	}
	return w.pending.Remove().(string), true
}

func (w *Watcher) drain(ctx context.Context, send SendFunc) {
	for {
		if ctx.Err() != nil {
			return
		}
		path, ok := w.next()
		if !ok {
			return
		}
		w.deliver(ctx, send, path)
	}
}

func (w *Watcher) deliver(ctx context.Context, send SendFunc, path string) {
	delivery := Delivery{File: path, At: time.Now()}

	root, err := w.resolver.Root(path)
	if err != nil {
		delivery.Err = err
		w.report(delivery)
		return
	}
	delivery.Workspace = root

	if w.packageMode {
		if entry, err := w.resolver.EntryPoint(root); err == nil {
			delivery.File = entry
		}
	}

	delivery.Err = send(ctx, delivery.Workspace, delivery.File)
	w.report(delivery)
}

func (w *Watcher) report(delivery Delivery) {
	if delivery.Err != nil {
		w.logger.Error("send reload request", "file", delivery.File, "error", delivery.Err)
	} else {
		w.logger.Info("reload request sent", "workspace", delivery.Workspace, "file", delivery.File)
	}

	if w.observer != nil {
		w.observer(delivery)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}
