package processing

import (
	"strconv"

	"github.com/yeti47/reelpress/media"
)

// FilterSpec describes one transcode operation: its inputs, an optional trim,
// a filter description and the output encoding parameters. A spec is built
// fresh per job and not modified after construction.
type FilterSpec struct {
	Input     string // primary input path
	Watermark string // optional second input (watermark image path)

	TrimStart  float64 // seek offset in seconds
	TrimLength float64 // output length in seconds; 0 means no trim

	VideoFilter string // simple filter chain (-vf); mutually exclusive with FilterGraph
	FilterGraph string // complex filter graph (-filter_complex)

	VideoCodec   string
	Preset       string
	CRF          int // 0 leaves the encoder default
	PixelFormat  string
	AudioCodec   string // "copy" passes audio through; empty omits audio options
	AudioBitRate string
	AudioRate    int
	FastStart    bool
}

// SegmentSpec builds the spec for the segment-extraction stage: trim the
// source to the selected window and re-encode without touching geometry.
func SegmentSpec(inputPath string, win media.Window) FilterSpec {
	return FilterSpec{
		Input:        inputPath,
		TrimStart:    win.Start,
		TrimLength:   win.Length(),
		VideoCodec:   "libx264",
		Preset:       "fast",
		CRF:          22,
		AudioCodec:   "aac",
		AudioBitRate: "128k",
		AudioRate:    48000,
		FastStart:    true,
	}
}

// Args renders the spec as an ffmpeg argument list writing to outputPath.
// The caller is responsible for choosing a fresh output path; -y only exists
// so a retried job can reuse its own job-local path.
func (s FilterSpec) Args(outputPath string) []string {
	args := []string{"-y"}

	if s.TrimStart > 0 {
		args = append(args, "-ss", formatSeconds(s.TrimStart))
	}
	args = append(args, "-i", s.Input)
	if s.Watermark != "" {
		args = append(args, "-i", s.Watermark)
	}
	if s.TrimLength > 0 {
		args = append(args, "-t", formatSeconds(s.TrimLength))
	}

	if s.FilterGraph != "" {
		args = append(args, "-filter_complex", s.FilterGraph)
	} else if s.VideoFilter != "" {
		args = append(args, "-vf", s.VideoFilter)
	}

	if s.VideoCodec != "" {
		args = append(args, "-c:v", s.VideoCodec)
	}
	if s.Preset != "" {
		args = append(args, "-preset", s.Preset)
	}
	if s.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(s.CRF))
	}
	if s.PixelFormat != "" {
		args = append(args, "-pix_fmt", s.PixelFormat)
	}

	if s.AudioCodec != "" {
		args = append(args, "-c:a", s.AudioCodec)
		if s.AudioCodec != "copy" {
			if s.AudioBitRate != "" {
				args = append(args, "-b:a", s.AudioBitRate)
			}
			if s.AudioRate > 0 {
				args = append(args, "-ar", strconv.Itoa(s.AudioRate))
			}
		}
	}

	if s.FastStart {
		args = append(args, "-movflags", "+faststart")
	}

	return append(args, outputPath)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
