// Package namesource enumerates name entries from either a single explicit
// pair or a comma-delimited input file.
package namesource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/book-expert/logger"

	"github.com/pbxkit/greetgen/internal/core"
)

// Column layout of the batch input file: header row, then first name in the
// first column and last name in the second.
const requiredColumns = 2

// Log formats for skipped rows.
const (
	logFmtSkippedShortRow     = "Skipping row %d: expected %d columns, got %d"
	logFmtSkippedEmptyField   = "Skipping row %d: empty first or last name"
	logFmtSkippedMalformedRow = "Skipping row %d: malformed line: %v"
)

// Single produces exactly one entry from an explicit first/last pair. Both
// values are trimmed; an empty value is a validation error surfaced before
// any synthesis call is made.
func Single(first, last string) (core.NameEntry, error) {
	entry := core.NameEntry{
		FirstName: strings.TrimSpace(first),
		LastName:  strings.TrimSpace(last),
	}

	if entry.FirstName == "" || entry.LastName == "" {
		return core.NameEntry{}, fmt.Errorf(
			"%w: first and last name must be non-empty",
			core.ErrValidation,
		)
	}

	return entry, nil
}

// FromCSV reads the batch input file and returns its entries in input order.
// The header row is skipped. Rows with too few columns, empty required
// fields, or malformed quoting are skipped with a logged warning; one bad row
// never aborts the batch. A missing file is a source-not-found error.
func FromCSV(path string, log *logger.Logger) ([]core.NameEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrSourceNotFound, path)
		}

		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}

	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			log.Warn("Failed to close input file %s: %v", path, closeErr)
		}
	}()

	entries, readErr := readEntries(file, log)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, readErr)
	}

	return entries, nil
}

// readEntries drives the CSV reader row by row so a single malformed row can
// be skipped without losing the rest of the file.
func readEntries(input io.Reader, log *logger.Logger) ([]core.NameEntry, error) {
	reader := csv.NewReader(input)
	// Rows are validated per-row below; ragged rows must not fail the read.
	reader.FieldsPerRecord = -1

	var entries []core.NameEntry

	headerSkipped := false

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Warn(logFmtSkippedMalformedRow, row, err)

				continue
			}

			return nil, fmt.Errorf("read failed at row %d: %w", row, err)
		}

		if !headerSkipped {
			headerSkipped = true

			continue
		}

		entry, ok := entryFromRecord(record, row, log)
		if ok {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// entryFromRecord validates one data row, logging and rejecting rows that
// cannot produce a usable entry.
func entryFromRecord(record []string, row int, log *logger.Logger) (core.NameEntry, bool) {
	if len(record) < requiredColumns {
		log.Warn(logFmtSkippedShortRow, row, requiredColumns, len(record))

		return core.NameEntry{}, false
	}

	first := strings.TrimSpace(record[0])
	last := strings.TrimSpace(record[1])

	if first == "" || last == "" {
		log.Warn(logFmtSkippedEmptyField, row)

		return core.NameEntry{}, false
	}

	return core.NameEntry{FirstName: first, LastName: last}, true
}
