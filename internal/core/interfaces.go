// Package core defines the data model and interfaces shared by the greeting
// generation pipeline.
package core

import "context"

// Encoding identifies the container/sample encoding of an AudioAsset.
type Encoding string

const (
	// EncodingRawPCM is headerless little-endian signed 16-bit PCM, the
	// format the synthesis service emits.
	EncodingRawPCM Encoding = "s16le"

	// EncodingWAV is a RIFF/WAV container, the format the PBX consumes.
	EncodingWAV Encoding = "wav"
)

// NameEntry is one unit of work: the person a greeting is generated for.
// Both fields are non-empty after whitespace trimming; entries are immutable
// once produced by a name source.
type NameEntry struct {
	FirstName string
	LastName  string
}

// AudioAsset is a byte sequence plus its format descriptor. Assets are never
// mutated in place: transcoding a synthesized asset produces a new one.
type AudioAsset struct {
	Data       []byte
	Encoding   Encoding
	SampleRate int
	Channels   int
}

// TargetFormat describes the sample format the transcoder must produce.
type TargetFormat struct {
	Codec      string
	SampleRate int
	Channels   int
}

// PBXTargetFormat is the only target this system transcodes to: PCM signed
// 16-bit, 8000 Hz, mono, as required by the PBX voicemail engine.
func PBXTargetFormat() TargetFormat {
	return TargetFormat{
		Codec:      "pcm_s16le",
		SampleRate: 8000,
		Channels:   1,
	}
}

// OutputTarget identifies where a transcoded asset was written.
type OutputTarget struct {
	Directory string
	Filename  string
}

// Synthesizer converts rendered greeting text into audio through an external
// text-to-speech service. Implementations make one outbound call per
// invocation and do not retry internally.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (AudioAsset, error)
}

// Transcoder converts a synthesized asset into the target sample format by
// invoking an external transcoding process.
type Transcoder interface {
	Transcode(ctx context.Context, asset AudioAsset, target TargetFormat) (AudioAsset, error)
}

// PromptStore is a blob store for generated greeting prompts, used by the
// queue worker to deliver results.
type PromptStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}
