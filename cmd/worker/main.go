package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mailsplit-backend/internal/bootstrap"
	"mailsplit-backend/internal/shared/config"
	"mailsplit-backend/internal/shared/telemetry"
	"mailsplit-backend/internal/workerproc"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	handler := newHandler(app)

	switch {
	case app.SQS != nil:
		consumer := &workerproc.SQSConsumer{
			API:               app.SQS.API,
			QueueURL:          app.SQS.QueueURL,
			Handler:           handler,
			Concurrency:       envInt("MS_WORKER_CONCURRENCY", workerproc.DefaultConcurrency),
			VisibilitySeconds: envInt("MS_SQS_VISIBILITY_TIMEOUT_SECONDS", workerproc.DefaultVisibilitySeconds),
			ShutdownTimeout:   time.Duration(envInt("MS_SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
			WaitSeconds:       20,
		}
		consumer.Run(ctx)
	case app.NATS != nil:
		telemetry.Info("worker.started", map[string]any{"backend": "nats", "subject": cfg.NATSSubject})
		if err := app.NATS.Subscribe(ctx, natsHandler(handler)); err != nil {
			log.Fatalf("nats subscribe: %v", err)
		}
	default:
		log.Fatal("MS_SQS_QUEUE_URL or NATS_URL is required")
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Syncer.Wait(waitCtx); err != nil {
		telemetry.Warn("worker.search_sync.pending", map[string]any{"error": err.Error()})
	}
	telemetry.Info("worker.stopped", nil)
}

func newHandler(app *bootstrap.App) *workerproc.Handler {
	h := &workerproc.Handler{Processor: app.AssignService}
	if app.Dedup != nil {
		h.Dedup = app.Dedup
	}
	return h
}

// natsHandler adapts the handler to a core NATS subscription. Core NATS has no
// redelivery, so a retry outcome is returned as an error for logging only.
func natsHandler(h *workerproc.Handler) func(context.Context, []byte) error {
	return func(ctx context.Context, data []byte) error {
		outcome, err := h.Handle(ctx, string(data), map[string]any{"transport": "nats"})
		if outcome == workerproc.Retry {
			return err
		}
		return nil
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return def
	}
	return val
}
