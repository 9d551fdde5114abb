package core

import "errors"

// Error taxonomy for the generation pipeline. Every error leaving a pipeline
// component wraps exactly one of these sentinels so callers can classify with
// errors.Is without inspecting message text.
var (
	// ErrConfiguration indicates the mutually-exclusive input mode rule was
	// violated (both or neither of input file and name pair supplied).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrSourceNotFound indicates the batch input file does not exist.
	ErrSourceNotFound = errors.New("input source not found")

	// ErrValidation indicates a required name field is empty.
	ErrValidation = errors.New("invalid name entry")

	// ErrNoEntries indicates the input source yielded no usable entries.
	ErrNoEntries = errors.New("no entries to process")

	// ErrAuthentication indicates synthesis credentials are missing or invalid.
	ErrAuthentication = errors.New("synthesis authentication failed")

	// ErrInvalidVoice indicates the voice identifier is unknown to the
	// synthesis service.
	ErrInvalidVoice = errors.New("unknown voice identifier")

	// ErrServiceUnavailable indicates a transient synthesis-side failure.
	ErrServiceUnavailable = errors.New("synthesis service unavailable")

	// ErrQuotaExceeded indicates the synthesis service rejected the request
	// due to throttling or quota limits.
	ErrQuotaExceeded = errors.New("synthesis quota exceeded")

	// ErrTranscoderUnavailable indicates the external transcoder binary
	// could not be located or started.
	ErrTranscoderUnavailable = errors.New("transcoder unavailable")

	// ErrTranscodeFailed indicates the transcoder exited with a non-zero
	// status; its diagnostic output is attached to the wrapping error.
	ErrTranscodeFailed = errors.New("transcode failed")

	// ErrOutputDirectory indicates the output directory could not be created.
	ErrOutputDirectory = errors.New("output directory unavailable")
)
