// Package transcode implements the core.Transcoder interface by invoking an
// external ffmpeg process.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/book-expert/logger"

	"github.com/pbxkit/greetgen/internal/core"
)

const wavContainer = "wav"

// FFmpeg converts audio assets by piping bytes through an ffmpeg process.
// Input arrives on stdin and output is captured from stdout, so no
// intermediate files exist to clean up on either the success or failure path.
type FFmpeg struct {
	binaryPath string
	log        *logger.Logger
}

// New creates an FFmpeg transcoder using the given binary path (typically
// just "ffmpeg", resolved through PATH).
func New(binaryPath string, log *logger.Logger) *FFmpeg {
	return &FFmpeg{
		binaryPath: binaryPath,
		log:        log,
	}
}

// Transcode re-encodes the asset into the target format and returns a new
// asset; the input asset is never mutated. A missing binary is reported as
// transcoder-unavailable; a non-zero exit attaches ffmpeg's stderr verbatim
// for troubleshooting, without parsing it.
func (f *FFmpeg) Transcode(
	ctx context.Context,
	asset core.AudioAsset,
	target core.TargetFormat,
) (core.AudioAsset, error) {
	resolvedPath, lookErr := exec.LookPath(f.binaryPath)
	if lookErr != nil {
		return core.AudioAsset{}, fmt.Errorf(
			"%w: %s not found in PATH",
			core.ErrTranscoderUnavailable,
			f.binaryPath,
		)
	}

	args := buildArgs(asset, target)

	// #nosec G204 -- the binary path comes from validated configuration and
	// all arguments are numeric or fixed format names.
	cmd := exec.CommandContext(ctx, resolvedPath, args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdin = bytes.NewReader(asset.Data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		return core.AudioAsset{}, fmt.Errorf(
			"%w: %w - ffmpeg output: %s",
			core.ErrTranscodeFailed,
			runErr,
			stderr.String(),
		)
	}

	f.log.Info("Transcoded %d bytes to %s (%d bytes)",
		len(asset.Data), target.Codec, stdout.Len())

	return core.AudioAsset{
		Data:       stdout.Bytes(),
		Encoding:   core.EncodingWAV,
		SampleRate: target.SampleRate,
		Channels:   target.Channels,
	}, nil
}

// buildArgs assembles the ffmpeg invocation. Raw PCM input carries no header,
// so its sample format must be declared explicitly before the input flag.
func buildArgs(asset core.AudioAsset, target core.TargetFormat) []string {
	var args []string

	if asset.Encoding == core.EncodingRawPCM {
		args = append(args,
			"-f", string(core.EncodingRawPCM),
			"-ar", strconv.Itoa(asset.SampleRate),
			"-ac", strconv.Itoa(asset.Channels),
		)
	}

	args = append(args,
		"-i", "pipe:0",
		"-acodec", target.Codec,
		"-ar", strconv.Itoa(target.SampleRate),
		"-ac", strconv.Itoa(target.Channels),
		"-f", wavContainer,
		"pipe:1",
	)

	return args
}
