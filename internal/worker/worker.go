// Package worker provides a NATS worker that generates greeting prompts from
// queued jobs.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/pbxkit/greetgen/internal/core"
	"github.com/pbxkit/greetgen/internal/greeting"
	"github.com/pbxkit/greetgen/internal/namesource"
)

const handleMessageTimeout = 60 * time.Second

// Defaults carries the fallback template and voice applied to jobs that do
// not specify their own.
type Defaults struct {
	Template string
	Voice    string
}

// NatsWorker listens for greeting jobs on a NATS subject, runs each through
// the render -> synthesize -> transcode pipeline, and stores the resulting
// prompt in the object store.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	store          core.PromptStore
	synthesizer    core.Synthesizer
	transcoder     core.Transcoder
	defaults       Defaults
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	store core.PromptStore,
	synthesizer core.Synthesizer,
	transcoder core.Transcoder,
	defaults Defaults,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		store:          store,
		synthesizer:    synthesizer,
		transcoder:     transcoder,
		defaults:       defaults,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for jobs until the context is
// cancelled.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

// handleMessage processes one job. Malformed or invalid jobs are logged and
// dropped; the worker keeps serving the subject.
func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	var job GreetingJobEvent

	err := json.Unmarshal(msg.Data, &job)
	if err != nil {
		w.log.Error("Failed to unmarshal greeting job: %v", err)

		return
	}

	reply, processErr := w.processJob(ctx, job)
	if processErr != nil {
		w.log.Error("Failed to process greeting job %s: %v", job.JobID, processErr)

		return
	}

	publishErr := w.publishReply(msg, reply)
	if publishErr != nil {
		w.log.Error("Failed to publish reply for job %s: %v", job.JobID, publishErr)
	}
}

// processJob runs the full pipeline for one job and stores the prompt under
// its derived filename.
func (w *NatsWorker) processJob(
	ctx context.Context,
	job GreetingJobEvent,
) (*PromptCreatedEvent, error) {
	entry, entryErr := namesource.Single(job.FirstName, job.LastName)
	if entryErr != nil {
		return nil, fmt.Errorf("invalid job payload: %w", entryErr)
	}

	template := job.Template
	if template == "" {
		template = w.defaults.Template
	}

	voice := job.Voice
	if voice == "" {
		voice = w.defaults.Voice
	}

	text := greeting.Render(template, entry)

	synthesized, synthErr := w.synthesizer.Synthesize(ctx, text, voice)
	if synthErr != nil {
		return nil, fmt.Errorf("synthesis failed: %w", synthErr)
	}

	transcoded, transcodeErr := w.transcoder.Transcode(ctx, synthesized, core.PBXTargetFormat())
	if transcodeErr != nil {
		return nil, fmt.Errorf("transcoding failed: %w", transcodeErr)
	}

	promptKey := greeting.Filename(entry)

	putErr := w.store.Put(ctx, promptKey, transcoded.Data)
	if putErr != nil {
		return nil, fmt.Errorf("failed to store prompt '%s': %w", promptKey, putErr)
	}

	w.log.Info("Stored prompt %s for job %s (%d bytes)",
		promptKey, job.JobID, len(transcoded.Data))

	return &PromptCreatedEvent{
		JobID:     job.JobID,
		PromptKey: promptKey,
		Bytes:     len(transcoded.Data),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// publishReply marshals and responds with the PromptCreatedEvent.
func (w *NatsWorker) publishReply(msg *nats.Msg, reply *PromptCreatedEvent) error {
	replyData, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}
