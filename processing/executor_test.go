package processing

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yeti47/reelpress/logging"
)

func TestFFmpegTranscoder_Run_MissingBinary(t *testing.T) {
	trans := NewFFmpegTranscoder(logging.NopLogger, "definitely-not-an-ffmpeg-binary-12345", time.Minute)

	spec := FilterSpec{Input: "input.mp4"}
	outputPath := filepath.Join(t.TempDir(), "out.mp4")

	err := trans.Run(context.Background(), spec, outputPath)
	if err == nil {
		t.Fatal("expected an error for a missing binary")
	}
}

func TestFFmpegTranscoder_Run_MissingOutput(t *testing.T) {
	// "true" exits zero without writing any output; the executor must still
	// classify that as a failure.
	trans := NewFFmpegTranscoder(logging.NopLogger, "true", time.Minute)

	spec := FilterSpec{Input: "input.mp4"}
	outputPath := filepath.Join(t.TempDir(), "out.mp4")

	err := trans.Run(context.Background(), spec, outputPath)
	if err == nil {
		t.Fatal("expected an error when no output file was produced")
	}
	if !strings.Contains(err.Error(), "no output") {
		t.Errorf("expected a missing-output error, got: %v", err)
	}
}

func TestNewFFmpegTranscoder_Defaults(t *testing.T) {
	trans := NewFFmpegTranscoder(nil, "", 0)

	if trans.logger == nil {
		t.Error("expected logger to be set (NopLogger)")
	}
	if trans.binary != "ffmpeg" {
		t.Errorf("expected default binary ffmpeg, got %s", trans.binary)
	}
}

func TestTruncateDiagnostic(t *testing.T) {
	long := strings.Repeat("x", maxDiagnosticBytes*2)
	if got := truncateDiagnostic([]byte(long)); len(got) != maxDiagnosticBytes {
		t.Errorf("expected %d bytes, got %d", maxDiagnosticBytes, len(got))
	}

	short := "short diagnostic"
	if got := truncateDiagnostic([]byte(short)); got != short {
		t.Errorf("short output should be untouched, got %q", got)
	}
}
