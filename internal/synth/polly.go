// Package synth implements the core.Synthesizer interface against Amazon
// Polly, the external text-to-speech service.
package synth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/book-expert/logger"

	"github.com/pbxkit/greetgen/internal/core"
)

// Polly emits headerless little-endian s16le PCM when asked for "pcm"; the
// sample rate is requested to match the PBX target so the transcoder only has
// to repackage, not resample.
const (
	synthesisSampleRate = 8000
	synthesisChannels   = 1
)

// ErrEmptyText indicates a synthesis request with no rendered text.
var ErrEmptyText = errors.New("synthesis text cannot be empty")

// ErrEmptyAudio indicates the service returned a successful response with no
// audio payload.
var ErrEmptyAudio = errors.New("synthesis returned empty audio stream")

// PollyAPI is the narrow slice of the Polly client this package uses.
// Tests substitute a deterministic fake; production code passes the real
// SDK client.
type PollyAPI interface {
	SynthesizeSpeech(
		ctx context.Context,
		params *polly.SynthesizeSpeechInput,
		optFns ...func(*polly.Options),
	) (*polly.SynthesizeSpeechOutput, error)
}

// Client implements core.Synthesizer over the Polly API.
type Client struct {
	api PollyAPI
	log *logger.Logger
}

// New creates a Client using the default AWS credential chain. Credential
// resolution itself is assumed to be pre-configured in the environment;
// invalid credentials surface as authentication errors at synthesis time.
func New(ctx context.Context, log *logger.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewWithAPI(polly.NewFromConfig(awsCfg), log), nil
}

// NewWithAPI creates a Client over a caller-supplied Polly API, allowing
// tests to inject a fake without network access.
func NewWithAPI(api PollyAPI, log *logger.Logger) *Client {
	return &Client{
		api: api,
		log: log,
	}
}

// Synthesize makes one synthesis call for the rendered greeting text and the
// chosen voice. The returned asset is in the service's native encoding (raw
// s16le PCM) and must be transcoded before the PBX can play it. No retries
// happen here; retry policy belongs to the caller.
func (c *Client) Synthesize(ctx context.Context, text, voice string) (core.AudioAsset, error) {
	if text == "" {
		return core.AudioAsset{}, ErrEmptyText
	}

	input := &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		VoiceId:      types.VoiceId(voice),
		OutputFormat: types.OutputFormatPcm,
		SampleRate:   aws.String(strconv.Itoa(synthesisSampleRate)),
	}

	response, err := c.api.SynthesizeSpeech(ctx, input)
	if err != nil {
		return core.AudioAsset{}, classifyError(err, voice)
	}

	defer func() {
		closeErr := response.AudioStream.Close()
		if closeErr != nil {
			c.log.Warn("Failed to close audio stream: %v", closeErr)
		}
	}()

	data, readErr := io.ReadAll(response.AudioStream)
	if readErr != nil {
		return core.AudioAsset{}, fmt.Errorf("failed to read audio stream: %w", readErr)
	}

	if len(data) == 0 {
		return core.AudioAsset{}, ErrEmptyAudio
	}

	return core.AudioAsset{
		Data:       data,
		Encoding:   core.EncodingRawPCM,
		SampleRate: synthesisSampleRate,
		Channels:   synthesisChannels,
	}, nil
}

// classifyError maps service failures onto the pipeline error taxonomy so
// the orchestrator can report a stable kind per failed entry.
func classifyError(err error, voice string) error {
	var apiErr smithy.APIError

	if !errors.As(err, &apiErr) {
		// Credential chain failures do not reach the service and are not
		// APIErrors; the SDK reports them while signing the request.
		if strings.Contains(err.Error(), "retrieve credentials") {
			return fmt.Errorf("%w: %w", core.ErrAuthentication, err)
		}

		return fmt.Errorf("synthesis request failed: %w", err)
	}

	switch apiErr.ErrorCode() {
	case "UnrecognizedClientException",
		"InvalidSignatureException",
		"AccessDeniedException",
		"ExpiredTokenException",
		"MissingAuthenticationToken":
		return fmt.Errorf("%w: %w", core.ErrAuthentication, err)
	case "ValidationException":
		// Polly reports an unknown VoiceId as a validation failure.
		return fmt.Errorf("%w %q: %w", core.ErrInvalidVoice, voice, err)
	case "ThrottlingException", "LimitExceededException", "TooManyRequestsException":
		return fmt.Errorf("%w: %w", core.ErrQuotaExceeded, err)
	case "ServiceUnavailableException", "ServiceFailureException", "InternalFailure":
		return fmt.Errorf("%w: %w", core.ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("synthesis request failed: %w", err)
	}
}
