package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subburn/internal/daemon"
	"subburn/internal/ipc"
	"subburn/internal/logging"
	"subburn/internal/queue"
	"subburn/internal/stage"
	"subburn/internal/testsupport"
	"subburn/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Item) error { return nil }
func (noopStage) Execute(context.Context, *queue.Item) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Extractor: noopStage{}})
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "subburn.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.PID <= 0 || status.QueueDBPath == "" {
		t.Fatalf("unexpected status payload: %+v", status)
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	source := filepath.Join(cfg.Paths.StagingDir, "Talk.mp4")
	testsupport.WriteFile(t, source, 2048)
	addResp, err := client.AddFile(source, "en")
	if err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	if addResp.Item.Status != string(queue.StatusPending) {
		t.Fatalf("expected queued item pending, got %s", addResp.Item.Status)
	}
	if addResp.Item.Language != "en" {
		t.Fatalf("expected language to persist, got %q", addResp.Item.Language)
	}

	itemB := testsupport.NewFile(t, store, "/videos/b.mp4", "")
	itemB.SetFailed("whisper crashed")
	if err := store.Update(ctx, itemB); err != nil {
		t.Fatalf("Update itemB: %v", err)
	}
	itemC := testsupport.NewFile(t, store, "/videos/c.mp4", "")
	itemC.Status = queue.StatusExtracting
	if err := store.Update(ctx, itemC); err != nil {
		t.Fatalf("Update itemC: %v", err)
	}

	listResp, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(listResp.Items) != 3 {
		t.Fatalf("expected 3 queue items, got %d", len(listResp.Items))
	}

	failedResp, err := client.QueueList([]string{string(queue.StatusFailed)})
	if err != nil {
		t.Fatalf("QueueList filter failed: %v", err)
	}
	if len(failedResp.Items) != 1 || failedResp.Items[0].ID != itemB.ID {
		t.Fatalf("expected failed item %d, got %+v", itemB.ID, failedResp.Items)
	}

	describeResp, err := client.QueueDescribe(itemB.ID)
	if err != nil {
		t.Fatalf("QueueDescribe failed: %v", err)
	}
	if describeResp.Item.ErrorMessage != "whisper crashed" {
		t.Fatalf("unexpected describe payload: %+v", describeResp.Item)
	}

	resetResp, err := client.QueueReset()
	if err != nil {
		t.Fatalf("QueueReset failed: %v", err)
	}
	if resetResp.Updated != 1 {
		t.Fatalf("expected 1 item reset, got %d", resetResp.Updated)
	}
	updatedC, err := store.GetByID(ctx, itemC.ID)
	if err != nil {
		t.Fatalf("GetByID itemC: %v", err)
	}
	if updatedC.Status != queue.StatusPending {
		t.Fatalf("expected itemC pending after reset, got %s", updatedC.Status)
	}

	retryResp, err := client.QueueRetry(nil)
	if err != nil {
		t.Fatalf("QueueRetry failed: %v", err)
	}
	if retryResp.Updated != 1 {
		t.Fatalf("expected 1 retried item, got %d", retryResp.Updated)
	}

	healthResp, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth failed: %v", err)
	}
	if healthResp.Total != 3 || healthResp.Failed != 0 {
		t.Fatalf("unexpected health response: %#v", healthResp)
	}

	removeResp, err := client.QueueRemove([]int64{itemB.ID})
	if err != nil {
		t.Fatalf("QueueRemove failed: %v", err)
	}
	if removeResp.Removed != 1 {
		t.Fatalf("expected 1 item removed, got %d", removeResp.Removed)
	}

	logPath := d.LogPath()
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp.Message == "" {
		t.Fatalf("expected notification message, got %#v", notifyResp)
	}

	clearResp, err := client.QueueClear()
	if err != nil {
		t.Fatalf("QueueClear failed: %v", err)
	}
	if clearResp.Removed != 2 {
		t.Fatalf("expected 2 items cleared, got %d", clearResp.Removed)
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
