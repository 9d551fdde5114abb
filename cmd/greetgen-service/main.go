// Command greetgen-service runs the NATS worker that generates greeting
// prompts from queued jobs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/pbxkit/greetgen/internal/config"
	"github.com/pbxkit/greetgen/internal/promptstore"
	"github.com/pbxkit/greetgen/internal/synth"
	"github.com/pbxkit/greetgen/internal/transcode"
	"github.com/pbxkit/greetgen/internal/worker"
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "greetgen-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// A temporary logger covers the bootstrap window before the configured
	// log directory is known.
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.LoadService(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, finalLog)
}

// serve wires the NATS connection, the prompt store, and the pipeline
// components into the worker and runs it until the context is cancelled.
func serve(ctx context.Context, cfg *config.ServiceConfig, log *logger.Logger) error {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := promptstore.New(jetstreamContext, cfg.NATS.PromptObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to open prompt store: %w", err)
	}

	synthesizer, err := synth.New(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.GreetingJobSubject,
		store,
		synthesizer,
		transcode.New(cfg.Transcoder.FFmpegPath, log),
		worker.Defaults{
			Template: cfg.Generator.GreetingTemplate,
			Voice:    cfg.Generator.Voice,
		},
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	log.System("greetgen-service initialized. Listening for jobs on subject: %s",
		cfg.NATS.GreetingJobSubject)

	return natsWorker.Run(ctx)
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
