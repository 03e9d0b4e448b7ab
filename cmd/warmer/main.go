package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/supercivilian/supercivilian/internal/bootstrap"
	"github.com/supercivilian/supercivilian/internal/pkg/config"
	"github.com/supercivilian/supercivilian/internal/pkg/logging"
	"github.com/supercivilian/supercivilian/internal/workflows"
)

// warmupWorkflowID keeps a single cron schedule per namespace.
const warmupWorkflowID = "shelter-cache-warmup"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: warmer <worker|trigger|once>")
	}

	cfg, err := config.Load("supercivilian-warmer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    slog.Default(),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	switch os.Args[1] {
	case "worker":
		runWorker(c, cfg)
	case "trigger":
		trigger(c, cfg, cfg.Temporal.Cron)
	case "once":
		trigger(c, cfg, "")
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func runWorker(c client.Client, cfg *config.Config) {
	ctx := context.Background()

	// The worker must write to the cache the API reads from.
	cache, closeCache, err := bootstrap.OpenCache(ctx, cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer closeCache()
	if cache == nil {
		slog.Warn("cache backend is none, warm-up only exercises the upstream")
	}

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.WarmupWorkflow)
	w.RegisterActivity(&workflows.WarmupActivities{
		Shelters: bootstrap.ShelterService(cfg, cache),
	})

	slog.Info("warm-up worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// trigger starts the warm-up, on a cron schedule unless cron is empty.
func trigger(c client.Client, cfg *config.Config, cron string) {
	opts := client.StartWorkflowOptions{
		ID:           warmupWorkflowID,
		TaskQueue:    cfg.Temporal.TaskQueue,
		CronSchedule: cron,
	}
	if cron == "" {
		opts.ID = warmupWorkflowID + "-once"
	}

	input := workflows.WarmupInput{RadiusMeters: cfg.Temporal.Radius}
	run, err := c.ExecuteWorkflow(context.Background(), opts, workflows.WarmupWorkflow, input)
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("warm-up started", "workflow_id", run.GetID(), "run_id", run.GetRunID(), "cron", cron)
}
