// Package batch drives the end-to-end generation pipeline for a sequence of
// name entries, isolating failures per entry and accumulating a summary.
package batch

import (
	"context"
	"fmt"

	"github.com/book-expert/logger"

	"github.com/pbxkit/greetgen/internal/config"
	"github.com/pbxkit/greetgen/internal/core"
	"github.com/pbxkit/greetgen/internal/greeting"
	"github.com/pbxkit/greetgen/internal/output"
)

// State tracks an entry's progress through the pipeline.
type State string

// Pipeline states, in order. A failure at any step leaves the entry in the
// last state it completed.
const (
	StatePending     State = "pending"
	StateRendered    State = "rendered"
	StateSynthesized State = "synthesized"
	StateTranscoded  State = "transcoded"
	StateWritten     State = "written"
	StateDone        State = "done"
)

// Log formats.
const (
	logFmtProcessing   = "Processing: %s %s"
	logFmtEntryFailed  = "Failed: %s %s (after %s): %v"
	logFmtBatchSummary = "Completed: %d successful, %d failed"
)

// Failure records one entry that did not complete, the state it reached, and
// the classifying error.
type Failure struct {
	Entry core.NameEntry
	State State
	Err   error
}

// Summary accumulates the outcome of a run in input order. It is only ever
// appended to; nothing is processed concurrently.
type Summary struct {
	Done   int
	Failed []Failure
}

// Attempted returns the number of entries that entered the pipeline.
func (s Summary) Attempted() int {
	return s.Done + len(s.Failed)
}

// AllFailed reports whether at least one entry was attempted and none
// completed.
func (s Summary) AllFailed() bool {
	return s.Done == 0 && len(s.Failed) > 0
}

// Generator orchestrates render, synthesis, transcoding, and output for each
// entry. Entries are processed strictly sequentially: the synthesis service
// is rate limited and the transcoder contends for local CPU, so unordered
// fan-out buys nothing at expected batch sizes.
type Generator struct {
	synthesizer core.Synthesizer
	transcoder  core.Transcoder
	writer      *output.Writer
	options     config.Options
	target      core.TargetFormat
	log         *logger.Logger
}

// New creates a Generator. All configuration arrives through the explicit
// options struct; there is no fallback to process-wide state.
func New(
	synthesizer core.Synthesizer,
	transcoder core.Transcoder,
	writer *output.Writer,
	options config.Options,
	log *logger.Logger,
) *Generator {
	return &Generator{
		synthesizer: synthesizer,
		transcoder:  transcoder,
		writer:      writer,
		options:     options,
		target:      core.PBXTargetFormat(),
		log:         log,
	}
}

// Run processes every entry in order and returns the summary. One bad entry
// never aborts the batch: each failure is recorded with the entry's identity
// and the error kind, and processing continues with the next entry.
func (g *Generator) Run(ctx context.Context, entries []core.NameEntry) Summary {
	var summary Summary

	for _, entry := range entries {
		g.log.Info(logFmtProcessing, entry.FirstName, entry.LastName)

		state, err := g.processEntry(ctx, entry)
		if err != nil {
			g.log.Error(logFmtEntryFailed, entry.FirstName, entry.LastName, state, err)

			summary.Failed = append(summary.Failed, Failure{
				Entry: entry,
				State: state,
				Err:   err,
			})

			continue
		}

		summary.Done++
	}

	g.log.Info(logFmtBatchSummary, summary.Done, len(summary.Failed))

	return summary
}

// processEntry runs one entry through the full pipeline: at most one
// synthesis attempt and one transcode attempt. It returns the last state the
// entry completed alongside any error.
func (g *Generator) processEntry(ctx context.Context, entry core.NameEntry) (State, error) {
	state := StatePending

	text := greeting.Render(g.options.Template, entry)
	state = StateRendered

	synthesized, synthErr := g.synthesizer.Synthesize(ctx, text, g.options.Voice)
	if synthErr != nil {
		return state, fmt.Errorf("synthesis failed: %w", synthErr)
	}

	state = StateSynthesized

	transcoded, transcodeErr := g.transcoder.Transcode(ctx, synthesized, g.target)
	if transcodeErr != nil {
		return state, fmt.Errorf("transcoding failed: %w", transcodeErr)
	}

	state = StateTranscoded

	target, writeErr := g.writer.Write(transcoded, entry, g.options.OutputDir)
	if writeErr != nil {
		return state, fmt.Errorf("write failed: %w", writeErr)
	}

	state = StateWritten
	g.log.Info("Wrote %s", target.Filename)

	state = StateDone

	return state, nil
}
