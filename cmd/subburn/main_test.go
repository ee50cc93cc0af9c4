package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subburn/internal/config"
	"subburn/internal/daemon"
	"subburn/internal/ipc"
	"subburn/internal/logging"
	"subburn/internal/queue"
	"subburn/internal/testsupport"
	"subburn/internal/workflow"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *queue.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""

	configPath := filepath.Join(filepath.Dir(cfg.Paths.LogDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)

	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIQueueAndAddFileCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewFile(ctx, "/videos/Alpha_Talk.mp4", "en"); err != nil {
		t.Fatalf("NewFile pending: %v", err)
	}

	failed, err := env.store.NewFile(ctx, "/videos/Beta_Recap.mkv", "de")
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	failed.Status = queue.StatusFailed
	failed.ErrorMessage = "extraction exploded"
	if err := env.store.Update(ctx, failed); err != nil {
		t.Fatalf("update failed item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	if !strings.Contains(out, "Pending") || !strings.Contains(out, "Failed") {
		t.Fatalf("unexpected queue status output: %q", out)
	}

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Alpha Talk") || !strings.Contains(out, "Beta Recap") {
		t.Fatalf("queue list missing items: %q", out)
	}

	out, _, err = runCLI(t, []string{"queue", "show", strconv.FormatInt(failed.ID, 10)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	if !strings.Contains(out, "Beta Recap") || !strings.Contains(out, "extraction exploded") {
		t.Fatalf("unexpected queue show output: %q", out)
	}

	out, _, err = runCLI(t, []string{"queue", "retry"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	if !strings.Contains(out, "Retried 1 failed items") {
		t.Fatalf("unexpected retry output: %q", out)
	}
	updatedFailed, err := env.store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID after retry: %v", err)
	}
	if updatedFailed.Status != queue.StatusPending {
		t.Fatalf("expected failed item retried to pending, got %s", updatedFailed.Status)
	}

	updatedFailed.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updatedFailed); err != nil {
		t.Fatalf("reset failed status: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear --failed: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 failed items") {
		t.Fatalf("unexpected clear failed output: %q", out)
	}

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	if !strings.Contains(out, "Cleared") {
		t.Fatalf("unexpected clear output: %q", out)
	}

	out, _, err = runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status after clear: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("expected empty queue message, got %q", out)
	}

	manualDir := filepath.Join(env.cfg.Paths.StagingDir, "manual")
	if err := os.MkdirAll(manualDir, 0o755); err != nil {
		t.Fatalf("ensure manual dir: %v", err)
	}
	manualPath := filepath.Join(manualDir, "Manual Movie.mkv")
	if err := os.WriteFile(manualPath, []byte("data"), 0o644); err != nil {
		t.Fatalf("write manual file: %v", err)
	}

	out, _, err = runCLI(t, []string{"add-file", manualPath, "--language", "en"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("add-file: %v", err)
	}
	if !strings.Contains(out, "Queued Manual Movie.mkv") {
		t.Fatalf("unexpected add-file output: %q", out)
	}
}

func TestCLIAddFileRejectsUnsupported(t *testing.T) {
	env := setupCLITestEnv(t)

	textPath := filepath.Join(env.cfg.Paths.StagingDir, "notes.txt")
	if err := os.WriteFile(textPath, []byte("nope"), 0o644); err != nil {
		t.Fatalf("write text file: %v", err)
	}

	_, _, err := runCLI(t, []string{"add-file", textPath}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unsupported file extension") {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
}

func TestCLIShowLogs(t *testing.T) {
	env := setupCLITestEnv(t)

	logPath := filepath.Join(env.cfg.Paths.LogDir, "subburn.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	out, _, err := runCLI(t, []string{"show", "--lines", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("show --lines: %v", err)
	}
	if !strings.Contains(out, "second") || !strings.Contains(out, "third") {
		t.Fatalf("unexpected show output: %q", out)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("show returned more lines than requested: %q", out)
	}
}

func TestCLIStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Workflow running") {
		t.Fatalf("status output missing workflow line: %q", out)
	}
	if !strings.Contains(out, "Queue Status") {
		t.Fatalf("status output missing queue section: %q", out)
	}
}

func TestCLIDepsCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Paths.APIBind = ""
	configPath := filepath.Join(filepath.Dir(cfg.Paths.LogDir), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, []string{"deps"}, filepath.Join(cfg.Paths.LogDir, "unused.sock"), configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	if !strings.Contains(out, "FFmpeg") || !strings.Contains(out, "Whisper") {
		t.Fatalf("deps output missing binaries: %q", out)
	}
	if !strings.Contains(out, "[OK]") {
		t.Fatalf("expected stubbed binaries to be ready: %q", out)
	}
}

func TestCLIQueueStatusWithoutDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := env.store.NewFile(context.Background(), "/videos/Gamma.mp4", ""); err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	deadSocket := filepath.Join(env.cfg.Paths.LogDir, "missing.sock")
	out, _, err := runCLI(t, []string{"queue", "status"}, deadSocket, env.configPath)
	if err != nil {
		t.Fatalf("queue status without daemon: %v", err)
	}
	if !strings.Contains(out, "Pending") {
		t.Fatalf("expected pending row from direct store access: %q", out)
	}
}
