package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"subburn/internal/config"
	"subburn/internal/daemon"
	"subburn/internal/ipc"
	"subburn/internal/logging"
	"subburn/internal/queue"
	"subburn/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		log.Fatalf("open queue store: %v", err)
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	workflowManager.ConfigureStages(buildStages(cfg, store, logger))

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	socketPath := buildSocketPath(cfg)
	ipcServer, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		log.Fatalf("start IPC server: %v", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Warn("daemon start", logging.Error(err))
	}

	<-ctx.Done()
	logger.Info("subburnd shutting down")
}
