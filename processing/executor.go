package processing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/yeti47/reelpress/logging"
)

// maxDiagnosticBytes bounds how much of ffmpeg's stderr ends up in errors
// and logs.
const maxDiagnosticBytes = 300

// Transcoder runs one transcode operation described by a FilterSpec.
type Transcoder interface {
	// Run executes the spec and writes the result to outputPath. It blocks
	// until the external process finishes and returns an error on non-zero
	// exit or missing output. It never retries.
	Run(ctx context.Context, spec FilterSpec, outputPath string) error
}

// FFmpegTranscoder implements Transcoder by invoking the ffmpeg binary.
type FFmpegTranscoder struct {
	logger  logging.Logger
	binary  string
	timeout time.Duration
}

// NewFFmpegTranscoder creates a new ffmpeg-based transcoder. binary is the
// ffmpeg executable to invoke; timeout bounds each invocation's wall-clock
// time.
func NewFFmpegTranscoder(logger logging.Logger, binary string, timeout time.Duration) *FFmpegTranscoder {
	if logger == nil {
		logger = logging.NopLogger
	}
	if binary == "" {
		binary = "ffmpeg"
	}

	return &FFmpegTranscoder{
		logger:  logger,
		binary:  binary,
		timeout: timeout,
	}
}

// Run executes the spec synchronously. Success requires a zero exit code and
// an existing output file; anything else is a transcode failure carrying a
// bounded prefix of ffmpeg's diagnostic output.
func (t *FFmpegTranscoder) Run(ctx context.Context, spec FilterSpec, outputPath string) error {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := spec.Args(outputPath)

	cmd := exec.CommandContext(ctx, t.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.logger.Debug("Running transcoder", "binary", t.binary, "output", outputPath)

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, truncateDiagnostic(stderr.Bytes()))
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg exited cleanly but produced no output at %s: %s",
			outputPath, truncateDiagnostic(stderr.Bytes()))
	}

	return nil
}

// truncateDiagnostic keeps a bounded prefix of process output for logging.
func truncateDiagnostic(out []byte) string {
	if len(out) > maxDiagnosticBytes {
		out = out[:maxDiagnosticBytes]
	}
	return string(out)
}
