// Package synth_test tests the Polly-backed synthesizer.
package synth_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbxkit/greetgen/internal/core"
	"github.com/pbxkit/greetgen/internal/synth"
)

// fakePollyAPI is a deterministic stand-in for the Polly client.
type fakePollyAPI struct {
	err       error
	audio     []byte
	calls     int
	lastInput *polly.SynthesizeSpeechInput
}

func (f *fakePollyAPI) SynthesizeSpeech(
	_ context.Context,
	params *polly.SynthesizeSpeechInput,
	_ ...func(*polly.Options),
) (*polly.SynthesizeSpeechOutput, error) {
	f.calls++
	f.lastInput = params

	if f.err != nil {
		return nil, f.err
	}

	return &polly.SynthesizeSpeechOutput{
		AudioStream: io.NopCloser(bytes.NewReader(f.audio)),
	}, nil
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "synth-test.log")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testLogger.Close()
	})

	return testLogger
}

func TestSynthesize_Success(t *testing.T) {
	t.Parallel()

	fake := &fakePollyAPI{audio: []byte{0x01, 0x02, 0x03, 0x04}}
	client := synth.NewWithAPI(fake, newTestLogger(t))

	asset, err := client.Synthesize(context.Background(), "You have reached John Doe.", "Joanna")
	require.NoError(t, err)

	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, asset.Data)
	assert.Equal(t, core.EncodingRawPCM, asset.Encoding)
	assert.Equal(t, 8000, asset.SampleRate)
	assert.Equal(t, 1, asset.Channels)

	require.NotNil(t, fake.lastInput)
	assert.Equal(t, "You have reached John Doe.", aws.ToString(fake.lastInput.Text))
	assert.Equal(t, types.VoiceId("Joanna"), fake.lastInput.VoiceId)
	assert.Equal(t, types.OutputFormatPcm, fake.lastInput.OutputFormat)
	assert.Equal(t, "8000", aws.ToString(fake.lastInput.SampleRate))
}

func TestSynthesize_EmptyTextMakesNoCall(t *testing.T) {
	t.Parallel()

	fake := &fakePollyAPI{}
	client := synth.NewWithAPI(fake, newTestLogger(t))

	_, err := client.Synthesize(context.Background(), "", "Joanna")
	require.Error(t, err)
	assert.ErrorIs(t, err, synth.ErrEmptyText)
	assert.Zero(t, fake.calls, "no network call may happen for invalid input")
}

func TestSynthesize_EmptyAudio(t *testing.T) {
	t.Parallel()

	fake := &fakePollyAPI{audio: nil}
	client := synth.NewWithAPI(fake, newTestLogger(t))

	_, err := client.Synthesize(context.Background(), "hello", "Joanna")
	require.Error(t, err)
	assert.ErrorIs(t, err, synth.ErrEmptyAudio)
}

func TestSynthesize_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		code     string
		wantKind error
	}{
		{
			name:     "missing credentials",
			code:     "UnrecognizedClientException",
			wantKind: core.ErrAuthentication,
		},
		{
			name:     "expired credentials",
			code:     "ExpiredTokenException",
			wantKind: core.ErrAuthentication,
		},
		{
			name:     "unknown voice",
			code:     "ValidationException",
			wantKind: core.ErrInvalidVoice,
		},
		{
			name:     "throttled",
			code:     "ThrottlingException",
			wantKind: core.ErrQuotaExceeded,
		},
		{
			name:     "service failure",
			code:     "ServiceFailureException",
			wantKind: core.ErrServiceUnavailable,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakePollyAPI{
				err: &smithy.GenericAPIError{
					Code:    testCase.code,
					Message: "remote failure",
				},
			}
			client := synth.NewWithAPI(fake, newTestLogger(t))

			_, err := client.Synthesize(context.Background(), "hello", "NoSuchVoice")
			require.Error(t, err)
			assert.ErrorIs(t, err, testCase.wantKind)
		})
	}
}

func TestSynthesize_UnclassifiedErrorIsWrappedRaw(t *testing.T) {
	t.Parallel()

	remoteErr := errors.New("connection reset")
	fake := &fakePollyAPI{err: remoteErr}
	client := synth.NewWithAPI(fake, newTestLogger(t))

	_, err := client.Synthesize(context.Background(), "hello", "Joanna")
	require.Error(t, err)
	assert.ErrorIs(t, err, remoteErr)
	assert.NotErrorIs(t, err, core.ErrAuthentication)
}
