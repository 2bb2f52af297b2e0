package pipeline

import "errors"

// Failure classes for per-job outcomes. A job's Err wraps exactly one of
// these, so callers can classify with errors.Is.
var (
	// ErrProbeFailed means the source duration could not be determined.
	ErrProbeFailed = errors.New("duration probe failed")

	// ErrTranscodeFailed means the external transcoder exited non-zero or
	// produced no output.
	ErrTranscodeFailed = errors.New("transcode failed")

	// ErrUploadFailed means the processed artifact could not be uploaded or
	// made public.
	ErrUploadFailed = errors.New("upload failed")

	// ErrPublishFailed means either publish phase returned an error or an
	// incomplete response.
	ErrPublishFailed = errors.New("publish failed")

	// ErrDownloadFailed means the source bytes could not be fetched.
	ErrDownloadFailed = errors.New("download failed")

	// ErrConfigMissing means a required setting was absent at the start of a
	// sweep. It aborts the sweep, never the process.
	ErrConfigMissing = errors.New("required configuration missing")
)
