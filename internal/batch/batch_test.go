// Package batch_test tests the batch orchestrator with deterministic
// synthesizer and transcoder stand-ins.
package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbxkit/greetgen/internal/batch"
	"github.com/pbxkit/greetgen/internal/config"
	"github.com/pbxkit/greetgen/internal/core"
	"github.com/pbxkit/greetgen/internal/greeting"
	"github.com/pbxkit/greetgen/internal/output"
)

// mockSynthesizer returns deterministic PCM bytes derived from the rendered
// text, or a configured error for texts containing a trigger substring.
type mockSynthesizer struct {
	failSubstring string
	failErr       error
	calls         []string
}

func (m *mockSynthesizer) Synthesize(_ context.Context, text, _ string) (core.AudioAsset, error) {
	m.calls = append(m.calls, text)

	if m.failErr != nil && m.failSubstring != "" &&
		strings.Contains(text, m.failSubstring) {
		return core.AudioAsset{}, m.failErr
	}

	return core.AudioAsset{
		Data:       []byte("pcm:" + text),
		Encoding:   core.EncodingRawPCM,
		SampleRate: 8000,
		Channels:   1,
	}, nil
}

// mockTranscoder wraps the synthesized bytes deterministically, or fails.
type mockTranscoder struct {
	failErr error
}

func (m *mockTranscoder) Transcode(
	_ context.Context,
	asset core.AudioAsset,
	target core.TargetFormat,
) (core.AudioAsset, error) {
	if m.failErr != nil {
		return core.AudioAsset{}, m.failErr
	}

	return core.AudioAsset{
		Data:       append([]byte("wav:"), asset.Data...),
		Encoding:   core.EncodingWAV,
		SampleRate: target.SampleRate,
		Channels:   target.Channels,
	}, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "batch-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testLogger.Close()
	})

	return testLogger
}

func newGenerator(
	t *testing.T,
	synthesizer core.Synthesizer,
	transcoder core.Transcoder,
	outputDir string,
) *batch.Generator {
	t.Helper()

	testLogger := newTestLogger(t)

	options := config.Options{
		Template:  greeting.DefaultTemplate,
		Voice:     config.DefaultVoice,
		OutputDir: outputDir,
	}

	return batch.New(synthesizer, transcoder, output.New(testLogger), options, testLogger)
}

func TestRun_AllEntriesSucceed(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	generator := newGenerator(t, &mockSynthesizer{}, &mockTranscoder{}, outputDir)

	entries := []core.NameEntry{
		{FirstName: "John", LastName: "Doe"},
		{FirstName: "Jane", LastName: "Smith"},
	}

	summary := generator.Run(context.Background(), entries)

	assert.Equal(t, 2, summary.Done)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, 2, summary.Attempted())

	for _, name := range []string{"John_Doe.wav", "Jane_Smith.wav"} {
		_, statErr := os.Stat(filepath.Join(outputDir, name))
		require.NoError(t, statErr, "expected output file %s", name)
	}
}

func TestRun_OneFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	synthesizer := &mockSynthesizer{
		failSubstring: "Jane",
		failErr:       core.ErrServiceUnavailable,
	}
	generator := newGenerator(t, synthesizer, &mockTranscoder{}, outputDir)

	entries := []core.NameEntry{
		{FirstName: "John", LastName: "Doe"},
		{FirstName: "Jane", LastName: "Smith"},
		{FirstName: "Maria", LastName: "Garcia"},
	}

	summary := generator.Run(context.Background(), entries)

	assert.Equal(t, 2, summary.Done)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, 3, summary.Attempted())

	failure := summary.Failed[0]
	assert.Equal(t, core.NameEntry{FirstName: "Jane", LastName: "Smith"}, failure.Entry)
	assert.ErrorIs(t, failure.Err, core.ErrServiceUnavailable)
	assert.Equal(t, batch.StateRendered, failure.State)

	// Entries before and after the failure still produced files.
	_, err := os.Stat(filepath.Join(outputDir, "John_Doe.wav"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "Maria_Garcia.wav"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outputDir, "Jane_Smith.wav"))
	require.Error(t, err)
}

func TestRun_TranscodeFailureRecordedAfterSynthesis(t *testing.T) {
	t.Parallel()

	generator := newGenerator(
		t,
		&mockSynthesizer{},
		&mockTranscoder{failErr: core.ErrTranscodeFailed},
		t.TempDir(),
	)

	summary := generator.Run(context.Background(), []core.NameEntry{
		{FirstName: "John", LastName: "Doe"},
	})

	assert.Equal(t, 0, summary.Done)
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[0].Err, core.ErrTranscodeFailed)
	assert.Equal(t, batch.StateSynthesized, summary.Failed[0].State)
	assert.True(t, summary.AllFailed())
}

func TestRun_SequentialInInputOrder(t *testing.T) {
	t.Parallel()

	synthesizer := &mockSynthesizer{}
	generator := newGenerator(t, synthesizer, &mockTranscoder{}, t.TempDir())

	entries := []core.NameEntry{
		{FirstName: "Aaa", LastName: "One"},
		{FirstName: "Bbb", LastName: "Two"},
		{FirstName: "Ccc", LastName: "Three"},
	}

	generator.Run(context.Background(), entries)

	require.Len(t, synthesizer.calls, 3)
	assert.Contains(t, synthesizer.calls[0], "Aaa One")
	assert.Contains(t, synthesizer.calls[1], "Bbb Two")
	assert.Contains(t, synthesizer.calls[2], "Ccc Three")
}

func TestRun_RerunProducesIdenticalBytes(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	entries := []core.NameEntry{{FirstName: "John", LastName: "Doe"}}

	generator := newGenerator(t, &mockSynthesizer{}, &mockTranscoder{}, outputDir)

	generator.Run(context.Background(), entries)

	first, err := os.ReadFile(filepath.Join(outputDir, "John_Doe.wav"))
	require.NoError(t, err)

	generator.Run(context.Background(), entries)

	second, err := os.ReadFile(filepath.Join(outputDir, "John_Doe.wav"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_EmptyEntrySequence(t *testing.T) {
	t.Parallel()

	generator := newGenerator(t, &mockSynthesizer{}, &mockTranscoder{}, t.TempDir())

	summary := generator.Run(context.Background(), nil)

	assert.Equal(t, 0, summary.Attempted())
	assert.False(t, summary.AllFailed())
}
