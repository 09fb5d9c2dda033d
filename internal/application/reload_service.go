package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/bnema/addon-bridge/internal/ports"
)

type ReloadOption func(*ReloadService)

func WithLayout(layout domain.Layout) ReloadOption {
	return func(s *ReloadService) {
		s.layout = layout
	}
}

func WithMatchMode(mode domain.MatchMode) ReloadOption {
	return func(s *ReloadService) {
		s.match = mode
	}
}

// ReloadService implements the reload protocol: parse, classify, retire the
// previous version, then import and register the new one.
type ReloadService struct {
	host     ports.Host
	reporter ports.Reporter
	logger   *slog.Logger
	layout   domain.Layout
	match    domain.MatchMode
}

func NewReloadService(host ports.Host, reporter ports.Reporter, logger *slog.Logger, opts ...ReloadOption) *ReloadService {
	if reporter == nil {
		reporter = ports.NopReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &ReloadService{
		host:     host,
		reporter: reporter,
		logger:   logger,
		layout:   domain.LuaLayout,
		match:    domain.MatchBoundary,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *ReloadService) Layout() domain.Layout {
	return s.layout
}

// Dispatch handles one payload. It never returns an error: every failure ends
// only the current request and is carried in the outcome.
func (s *ReloadService) Dispatch(ctx context.Context, requestID, payload string) (outcome domain.Outcome) {
	outcome.RequestID = requestID
	logger := s.logger.With("request_id", requestID)
	defer func() {
		s.reporter.Reloaded(outcome)
	}()

	req, err := domain.ParseReloadRequest(payload)
	if err != nil {
		outcome.Status = domain.OutcomeMalformedRequest
		outcome.Err = err
		logger.Error("reject reload request", "error", err)
		return outcome
	}
	outcome.Request = req

	target, err := s.layout.Classify(req)
	if err != nil {
		outcome.Status = domain.OutcomeUnsupportedTarget
		outcome.Err = err
		logger.Error("reject reload target", "file", req.TargetFilePath, "error", err)
		return outcome
	}
	outcome.Target = target
	logger = logger.With("module", string(target.Identity), "mode", string(target.Mode))
	logger.Info("reloading module", "file", req.TargetFilePath)

	outcome.Report = s.Unregister(ctx, target.Identity)

	if err := s.ensureSearchRoot(target.SearchRoot); err != nil {
		outcome.Status = domain.OutcomeImportFailure
		outcome.Err = fmt.Errorf("%w %s: %w", domain.ErrImportFailure, target.Identity, err)
		logger.Error("extend module search path", "dir", target.SearchRoot, "error", err)
		return outcome
	}

	module, err := s.host.Import(ctx, target.Identity)
	if err != nil {
		return s.importFailed(logger, outcome, "import module", err)
	}

	loadable, ok := module.(ports.Loadable)
	if !ok {
		outcome.Status = domain.OutcomeRegisterMissing
		logger.Warn("module has no register entry point")
		return outcome
	}

	if err := loadable.Register(ctx); err != nil {
		return s.importFailed(logger, outcome, "register module", err)
	}

	outcome.Status = domain.OutcomeOK
	logger.Info("module reloaded")
	return outcome
}

// Unregister retires every extension class and cached module belonging to
// identity. Each step is best effort: failures are logged and recorded, never
// returned.
func (s *ReloadService) Unregister(ctx context.Context, identity domain.ModuleIdentity) domain.UnregisterReport {
	report := domain.UnregisterReport{Identity: identity}
	logger := s.logger.With("module", string(identity))

	classes, err := s.host.Classes(ctx)
	if err != nil {
		logger.Error("list extension classes", "error", err)
	}
	for _, class := range classes {
		if !s.match.Matches(identity, class.Module) {
			continue
		}

		if err := s.host.Unregister(ctx, class.Name); err != nil {
			report.ClassFailures = append(report.ClassFailures, domain.ClassFailure{
				Class: class.Name,
				Err:   fmt.Errorf("%w %s: %w", domain.ErrClassUnregister, class.Name, err),
			})
			logger.Warn("unregister class failed", "class", class.Name, "error", err)
			continue
		}

		report.Unregistered = append(report.Unregistered, class.Name)
		logger.Debug("class unregistered", "class", class.Name)
	}

	keys, err := s.host.Keys(ctx)
	if err != nil {
		logger.Error("list cached modules", "error", err)
	}
	for _, key := range keys {
		if !s.match.Matches(identity, key) {
			continue
		}

		err := s.host.Evict(ctx, key)
		switch {
		case err == nil:
			logger.Debug("module evicted", "key", key)
		case errors.Is(err, ports.ErrModuleNotCached):
			logger.Debug("module already evicted", "key", key)
		default:
			report.EvictionFailures = append(report.EvictionFailures, domain.EvictionFailure{
				Module: key,
				Err:    fmt.Errorf("%w %s: %w", domain.ErrModuleEviction, key, err),
			})
			logger.Warn("evict module failed", "key", key, "error", err)
			continue
		}
		report.Evicted = append(report.Evicted, key)
	}

	if len(report.Unregistered) > 0 {
		s.reporter.Unregistered(report)
	}

	return report
}

func (s *ReloadService) ensureSearchRoot(dir string) error {
	if s.host.Contains(dir) {
		return nil
	}

	return s.host.Append(dir)
}

func (s *ReloadService) importFailed(logger *slog.Logger, outcome domain.Outcome, step string, err error) domain.Outcome {
	if errors.Is(err, ports.ErrExitRequested) {
		outcome.Status = domain.OutcomeExitRequested
		outcome.Err = err
		logger.Warn("add-on requested exit, bridge keeps running", "step", step)
		return outcome
	}

	outcome.Status = domain.OutcomeImportFailure
	outcome.Err = fmt.Errorf("%w %s: %w", domain.ErrImportFailure, outcome.Target.Identity, err)
	logger.Error(step, "error", err)
	return outcome
}
