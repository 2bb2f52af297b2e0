package processing

import (
	"fmt"
	"os"
	"strconv"

	"github.com/xfrr/goffmpeg/transcoder"
	"github.com/yeti47/reelpress/logging"
)

// Prober determines the duration of a video file.
type Prober interface {
	// Duration returns the total duration of the video in seconds. A probe
	// failure returns 0 and an error; callers treat that as an unprocessable
	// source, not a crash.
	Duration(inputPath string) (float64, error)
}

// FFprobeDurationProber implements Prober using goffmpeg's metadata probe.
type FFprobeDurationProber struct {
	logger logging.Logger
}

// NewFFprobeDurationProber creates a new goffmpeg-based duration prober.
func NewFFprobeDurationProber(logger logging.Logger) *FFprobeDurationProber {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &FFprobeDurationProber{logger: logger}
}

// Duration probes the input file's metadata. Initialization already runs
// ffprobe, so no second process is spawned for the duration.
func (p *FFprobeDurationProber) Duration(inputPath string) (float64, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return 0, fmt.Errorf("input file not accessible: %w", err)
	}

	trans := new(transcoder.Transcoder)
	if err := trans.Initialize(inputPath, os.DevNull); err != nil {
		return 0, fmt.Errorf("failed to probe video metadata: %w", err)
	}

	durationStr := trans.MediaFile().Metadata().Format.Duration
	if durationStr == "" {
		return 0, fmt.Errorf("empty duration in video metadata")
	}

	durationSeconds, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration '%s': %w", durationStr, err)
	}

	if durationSeconds <= 0 {
		return 0, fmt.Errorf("invalid or zero duration: %f seconds", durationSeconds)
	}

	p.logger.Debug("Probed video duration", "input", inputPath, "seconds", durationSeconds)

	return durationSeconds, nil
}
