package workflow_test

import (
	"context"
	"testing"
	"time"

	"subburn/internal/config"
	"subburn/internal/logging"
	"subburn/internal/queue"
	"subburn/internal/services"
	"subburn/internal/stage"
	"subburn/internal/testsupport"
	"subburn/internal/workflow"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.ErrorRetryInterval = 0
	return cfg
}

func newManager(t *testing.T, cfg *config.Config, store *queue.Store, set workflow.StageSet) *workflow.Manager {
	t.Helper()
	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), nil)
	mgr.ConfigureStages(set)
	return mgr
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %s", want)
		default:
		}
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(25 * time.Millisecond)
	}
}

func TestManagerProcessesItemThroughAllStages(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	extractor := newStubStage("extraction")
	extractor.executeHook = func(item *queue.Item) { item.AudioFile = "/staging/audio.wav" }
	transcriber := newStubStage("transcription")
	transcriber.executeHook = func(item *queue.Item) { item.SubtitleFile = "/staging/captions.srt" }
	burner := newStubStage("burnin")
	burner.executeHook = func(item *queue.Item) { item.OutputFile = "/output/clip.subtitled.mp4" }

	mgr := newManager(t, cfg, store, workflow.StageSet{
		Extractor:   extractor,
		Transcriber: transcriber,
		Burner:      burner,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item := testsupport.NewFile(t, store, "/videos/clip.mp4", "en")
	final := waitForStatus(t, store, item.ID, queue.StatusCompleted)

	if final.AudioFile == "" || final.SubtitleFile == "" || final.OutputFile == "" {
		t.Fatalf("expected all artifacts recorded: %#v", final)
	}
	if final.ProgressPercent != 100 {
		t.Fatalf("expected progress 100, got %v", final.ProgressPercent)
	}
}

func TestManagerMarksValidationFailuresForReview(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	extractor := newStubStage("extraction")
	extractor.executeErr = services.Wrap(
		services.ErrValidation, "extraction", "probe source",
		"No audio track found in the uploaded video", nil)

	mgr := newManager(t, cfg, store, workflow.StageSet{Extractor: extractor})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item := testsupport.NewFile(t, store, "/videos/silent.mp4", "")
	failed := waitForStatus(t, store, item.ID, queue.StatusFailed)

	if !failed.NeedsReview {
		t.Fatalf("expected validation failure to need review: %#v", failed)
	}
	if failed.ErrorMessage == "" {
		t.Fatal("expected error message to be recorded")
	}
}

func TestManagerFailsItemsOnTransientErrors(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	extractor := newStubStage("extraction")
	extractor.executeErr = services.Wrap(
		services.ErrExternalTool, "extraction", "extract audio",
		"ffmpeg failed to extract the audio track", nil)

	mgr := newManager(t, cfg, store, workflow.StageSet{Extractor: extractor})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(mgr.Stop)

	item := testsupport.NewFile(t, store, "/videos/clip.mp4", "")
	failed := waitForStatus(t, store, item.ID, queue.StatusFailed)

	if failed.NeedsReview {
		t.Fatalf("external tool failure should not be flagged for review: %#v", failed)
	}
}

func TestManagerStartRequiresStages(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), nil)
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error starting manager without stages")
	}
}

func TestManagerStatusReportsHealth(t *testing.T) {
	cfg := testConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	extractor := newStubStage("extraction")
	transcriber := newStubStage("transcription")
	transcriber.health = stage.Unhealthy("transcription", "whisper missing")

	mgr := newManager(t, cfg, store, workflow.StageSet{
		Extractor:   extractor,
		Transcriber: transcriber,
	})

	summary := mgr.Status(context.Background())
	if summary.Running {
		t.Fatal("expected manager not running")
	}
	if h, ok := summary.StageHealth["transcription"]; !ok || h.Ready {
		t.Fatalf("expected unhealthy transcription stage, got %#v", summary.StageHealth)
	}
	if h, ok := summary.StageHealth["extraction"]; !ok || !h.Ready {
		t.Fatalf("expected healthy extraction stage, got %#v", summary.StageHealth)
	}
}
