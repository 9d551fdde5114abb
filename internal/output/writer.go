// Package output writes transcoded prompt files into the configured output
// directory with deterministic names.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"
	"github.com/google/uuid"

	"github.com/pbxkit/greetgen/internal/core"
	"github.com/pbxkit/greetgen/internal/greeting"
)

// File and directory permissions.
const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// Writer publishes transcoded assets as playable prompt files. Writes are
// atomic: bytes land in a temporary name inside the target directory and are
// renamed into place, so a reader never observes a partially written prompt.
type Writer struct {
	log *logger.Logger
}

// New creates a Writer.
func New(log *logger.Logger) *Writer {
	return &Writer{log: log}
}

// Write stores the asset under the entry's derived filename in outputDir,
// creating the directory tree as needed. An existing file of the same name is
// overwritten without warning, which makes byte-identical reruns idempotent
// and means duplicate entries silently win by last write.
func (w *Writer) Write(
	asset core.AudioAsset,
	entry core.NameEntry,
	outputDir string,
) (core.OutputTarget, error) {
	dirErr := os.MkdirAll(outputDir, dirPermissions)
	if dirErr != nil {
		return core.OutputTarget{}, fmt.Errorf(
			"%w: %s: %w",
			core.ErrOutputDirectory,
			outputDir,
			dirErr,
		)
	}

	filename := greeting.Filename(entry)
	finalPath := filepath.Join(outputDir, filename)

	// The temporary file lives in the same directory so the rename is a
	// same-filesystem operation.
	tempPath := filepath.Join(outputDir, "."+uuid.NewString()+".tmp")

	writeErr := os.WriteFile(tempPath, asset.Data, filePermissions)
	if writeErr != nil {
		return core.OutputTarget{}, fmt.Errorf(
			"failed to write prompt file %s: %w",
			finalPath,
			writeErr,
		)
	}

	renameErr := os.Rename(tempPath, finalPath)
	if renameErr != nil {
		removeErr := os.Remove(tempPath)
		if removeErr != nil {
			w.log.Warn("Failed to remove temp file %s: %v", tempPath, removeErr)
		}

		return core.OutputTarget{}, fmt.Errorf(
			"failed to publish prompt file %s: %w",
			finalPath,
			renameErr,
		)
	}

	w.log.Info("Created %s (%d bytes)", finalPath, len(asset.Data))

	return core.OutputTarget{
		Directory: outputDir,
		Filename:  filename,
	}, nil
}
