package processing

import (
	"fmt"
	"math"
)

// Trajectory amplitudes and periods for the watermark motion. Each axis sums
// two out-of-phase sinusoids with distinct frequencies so the motion does not
// visibly repeat within the animation window.
const (
	xAmpA    = 120.0
	xPeriodA = 10.0
	xAmpB    = 80.0
	xPeriodB = 7.0

	yAmpA    = 90.0
	yPeriodA = 8.0
	yAmpB    = 40.0
	yPeriodB = 5.0
)

// OverlayBuilder computes the animated watermark trajectory and renders it,
// together with the portrait background chain, as an ffmpeg filter graph.
//
// The background is the source scaled and cropped to the live region, padded
// onto a portrait canvas with solid bars above and below. The watermark is
// scaled to a fixed width and composited over the top bar only; its offset
// functions keep it inside the bar for the whole animation window.
type OverlayBuilder struct {
	CanvasWidth    int
	CanvasHeight   int
	LiveHeight     int // height of the live-video region
	WatermarkPath  string
	WatermarkWidth int
	BounceCap      float64 // seconds of animation; the position freezes after this
}

// topPad returns the height of the bar above the live region.
func (b OverlayBuilder) topPad() int {
	return (b.CanvasHeight - b.LiveHeight) / 2
}

// XOffset returns the horizontal deviation of the watermark from its centered
// position at time t. Pure: identical t always yields the identical offset.
func (b OverlayBuilder) XOffset(t float64) float64 {
	return xAmpA*math.Sin(2*math.Pi*t/xPeriodA) + xAmpB*math.Cos(2*math.Pi*t/xPeriodB)
}

// YOffset returns the vertical deviation of the watermark from the center of
// the top bar at time t. Pure: identical t always yields the identical offset.
func (b OverlayBuilder) YOffset(t float64) float64 {
	return yAmpA*math.Sin(2*math.Pi*t/yPeriodA) + yAmpB*math.Cos(2*math.Pi*t/yPeriodB)
}

// XAt returns the absolute x position of a watermark of the given width at
// time t.
func (b OverlayBuilder) XAt(t, watermarkWidth float64) float64 {
	return (float64(b.CanvasWidth)-watermarkWidth)/2 + b.XOffset(t)
}

// YAt returns the absolute y position of a watermark of the given height at
// time t.
func (b OverlayBuilder) YAt(t, watermarkHeight float64) float64 {
	return (float64(b.topPad())-watermarkHeight)/2 + b.YOffset(t)
}

// FitsBand reports whether a watermark of the given height stays inside the
// top bar for every t, given the worst-case excursion of both axes.
func (b OverlayBuilder) FitsBand(watermarkHeight float64) bool {
	xMax := xAmpA + xAmpB
	yMax := yAmpA + yAmpB

	xCenter := (float64(b.CanvasWidth) - float64(b.WatermarkWidth)) / 2
	if xCenter-xMax < 0 || xCenter+xMax+float64(b.WatermarkWidth) > float64(b.CanvasWidth) {
		return false
	}

	yCenter := (float64(b.topPad()) - watermarkHeight) / 2
	return yCenter-yMax >= 0 && yCenter+yMax+watermarkHeight <= float64(b.topPad())
}

// xExpr renders the x trajectory as an ffmpeg overlay expression. W and w are
// the canvas and watermark widths inside the overlay filter, so the rendered
// formula matches XAt exactly.
func (b OverlayBuilder) xExpr() string {
	return fmt.Sprintf("(W-w)/2+%g*sin(2*PI*t/%g)+%g*cos(2*PI*t/%g)", xAmpA, xPeriodA, xAmpB, xPeriodB)
}

// yExpr renders the y trajectory as an ffmpeg overlay expression. h is the
// scaled watermark height inside the overlay filter.
func (b OverlayBuilder) yExpr() string {
	return fmt.Sprintf("(%d-h)/2+%g*sin(2*PI*t/%g)+%g*cos(2*PI*t/%g)", b.topPad(), yAmpA, yPeriodA, yAmpB, yPeriodB)
}

// Graph renders the complete filter graph: background scale/crop/pad, the
// watermark scale node and the overlay with the animated offsets, enabled
// for [0, BounceCap] only.
func (b OverlayBuilder) Graph() string {
	return fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,pad=%d:%d:0:%d:black[bg];"+
			"[1:v]scale=%d:-1[wm];"+
			"[bg][wm]overlay=x='%s':y='%s':enable='between(t,0,%g)'",
		b.CanvasWidth, b.LiveHeight, b.CanvasWidth, b.LiveHeight,
		b.CanvasWidth, b.CanvasHeight, b.topPad(),
		b.WatermarkWidth,
		b.xExpr(), b.yExpr(), b.BounceCap,
	)
}

// Spec builds the transcode spec for the overlay stage.
func (b OverlayBuilder) Spec(inputPath string) FilterSpec {
	return FilterSpec{
		Input:       inputPath,
		Watermark:   b.WatermarkPath,
		FilterGraph: b.Graph(),
		VideoCodec:  "libx264",
		Preset:      "veryfast",
		PixelFormat: "yuv420p",
		AudioCodec:  "copy",
		FastStart:   true,
	}
}
