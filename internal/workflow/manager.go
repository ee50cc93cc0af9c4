package workflow

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"subburn/internal/config"
	"subburn/internal/notifications"
	"subburn/internal/queue"
	"subburn/internal/stage"
)

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	pollInterval time.Duration
	notifier     notifications.Service

	heartbeat *HeartbeatMonitor

	stages       []pipelineStage
	statusOrder  []queue.Status
	stageByStart map[queue.Status]pipelineStage

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *queue.Item
}

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Extractor   stage.Handler
	Transcriber stage.Handler
	Burner      stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// NewManager constructs a new workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage
	if set.Extractor != nil {
		stages = append(stages, pipelineStage{
			name:             "extraction",
			handler:          set.Extractor,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusExtracting,
			doneStatus:       queue.StatusExtracted,
		})
	}
	if set.Transcriber != nil {
		stages = append(stages, pipelineStage{
			name:             "transcription",
			handler:          set.Transcriber,
			startStatus:      queue.StatusExtracted,
			processingStatus: queue.StatusTranscribing,
			doneStatus:       queue.StatusTranscribed,
		})
	}
	if set.Burner != nil {
		stages = append(stages, pipelineStage{
			name:             "burnin",
			handler:          set.Burner,
			startStatus:      queue.StatusTranscribed,
			processingStatus: queue.StatusBurning,
			doneStatus:       queue.StatusCompleted,
		})
	}

	byStart := make(map[queue.Status]pipelineStage, len(stages))
	order := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		byStart[stg.startStatus] = stg
		order = append(order, stg.startStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = byStart
	m.statusOrder = order
	m.mu.Unlock()
}
