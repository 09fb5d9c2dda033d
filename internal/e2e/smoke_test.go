package e2e

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runBridge(t, binaryPath, home, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Equal(t, "dev", strings.TrimSpace(stdout))

	_, stderr, err = runBridge(t, binaryPath, home, "config", "init")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.FileExists(t, filepath.Join(home, ".addon-bridge", "config.toml"))
}

func TestSmokeServeAndSend(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	port := freePort(t)

	addon := filepath.Join(home, "src", "gizmo")
	writeFile(t, filepath.Join(addon, "init.lua"), `
local M = {}
function M.register()
  host.register_class({ name = "GIZMO_OT_spin" })
  host.log("gizmo registered")
end
return M
`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serve := exec.CommandContext(ctx, binaryPath, "serve", "--port", port)
	serve.Env = append(os.Environ(), "HOME="+home)
	serveOut := &syncBuffer{}
	serve.Stdout = serveOut
	stderrPipe, err := serve.StderrPipe()
	require.NoError(t, err)
	require.NoError(t, serve.Start())
	t.Cleanup(func() {
		_ = serve.Process.Signal(os.Interrupt)
		_ = serve.Wait()
	})

	listening := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(stderrPipe)
		signalled := false
		for scanner.Scan() {
			if !signalled && strings.Contains(scanner.Text(), "listening for reload requests") {
				close(listening)
				signalled = true
			}
		}
	}()

	select {
	case <-listening:
	case <-time.After(10 * time.Second):
		t.Fatal("bridge did not start listening")
	}

	_, stderr, err := runBridge(t, binaryPath, home, "send", filepath.Join(addon, "init.lua"), "--port", port)
	require.NoError(t, err, "stderr: %s", stderr)

	_, stderr, err = runBridge(t, binaryPath, home, "send", filepath.Join(addon, "init.lua"), "--port", port)
	require.NoError(t, err, "stderr: %s", stderr)

	require.Eventually(t, func() bool {
		return strings.Count(serveOut.String(), "Reload gizmo (package)") == 2
	}, 5*time.Second, 20*time.Millisecond)

	output := serveOut.String()
	assert.Contains(t, output, "GIZMO_OT_spin unregistered")
	assert.NotContains(t, output, "import_failure")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "addon-bridge-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bridge")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build addon-bridge binary: %s", string(output))
	return binaryPath
}

func runBridge(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func freePort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)
	require.NoError(t, listener.Close())
	return port
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
