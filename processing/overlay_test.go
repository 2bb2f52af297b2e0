package processing

import (
	"strings"
	"testing"
)

func defaultBuilder() OverlayBuilder {
	return OverlayBuilder{
		CanvasWidth:    1080,
		CanvasHeight:   1920,
		LiveHeight:     608,
		WatermarkPath:  "watermark.png",
		WatermarkWidth: 350,
		BounceCap:      30,
	}
}

func TestOverlayBuilder_Deterministic(t *testing.T) {
	b := defaultBuilder()

	// Identical t must produce bit-identical offsets.
	for _, tt := range []float64{0, 0.1, 1, 7.3, 15, 29.999, 30} {
		x1, x2 := b.XOffset(tt), b.XOffset(tt)
		if x1 != x2 {
			t.Errorf("XOffset(%v) not deterministic: %v != %v", tt, x1, x2)
		}
		y1, y2 := b.YOffset(tt), b.YOffset(tt)
		if y1 != y2 {
			t.Errorf("YOffset(%v) not deterministic: %v != %v", tt, y1, y2)
		}
	}
}

func TestOverlayBuilder_StaysInsideBand(t *testing.T) {
	b := defaultBuilder()

	// Height of a 16:9 watermark scaled to 350px width.
	const watermarkHeight = 197.0
	topPad := float64((b.CanvasHeight - b.LiveHeight) / 2)

	if !b.FitsBand(watermarkHeight) {
		t.Fatalf("watermark of height %v should fit the %vpx band", watermarkHeight, topPad)
	}

	// Sample the trajectory densely across the animation window.
	for step := 0; step <= 3000; step++ {
		tt := float64(step) * 0.01

		x := b.XAt(tt, float64(b.WatermarkWidth))
		if x < 0 || x+float64(b.WatermarkWidth) > float64(b.CanvasWidth) {
			t.Fatalf("t=%v: x position %v leaves the canvas", tt, x)
		}

		y := b.YAt(tt, watermarkHeight)
		if y < 0 || y+watermarkHeight > topPad {
			t.Fatalf("t=%v: y position %v leaves the top bar", tt, y)
		}
	}
}

func TestOverlayBuilder_FitsBand_TooTall(t *testing.T) {
	b := defaultBuilder()

	// A watermark taller than the band minus the excursion cannot fit.
	if b.FitsBand(500) {
		t.Error("a 500px watermark should not fit the top bar")
	}
}

func TestOverlayBuilder_Graph(t *testing.T) {
	b := defaultBuilder()
	graph := b.Graph()

	for _, want := range []string{
		"scale=1080:608:force_original_aspect_ratio=increase",
		"crop=1080:608",
		"pad=1080:1920:0:656:black",
		"[1:v]scale=350:-1[wm]",
		"overlay=x=",
		"enable='between(t,0,30)'",
	} {
		if !strings.Contains(graph, want) {
			t.Errorf("Graph() missing %q:\n%s", want, graph)
		}
	}

	// Both axes carry two sinusoids with distinct frequencies.
	if strings.Count(graph, "sin(") != 2 || strings.Count(graph, "cos(") != 2 {
		t.Errorf("Graph() should contain two sin and two cos terms:\n%s", graph)
	}

	// Building twice yields the identical graph.
	if graph != b.Graph() {
		t.Error("Graph() is not reproducible")
	}
}

func TestOverlayBuilder_Spec(t *testing.T) {
	b := defaultBuilder()
	spec := b.Spec("segment.mp4")

	if spec.Input != "segment.mp4" {
		t.Errorf("expected input segment.mp4, got %s", spec.Input)
	}
	if spec.Watermark != "watermark.png" {
		t.Errorf("expected watermark input, got %s", spec.Watermark)
	}
	if spec.FilterGraph == "" {
		t.Error("expected a filter graph")
	}
	if spec.AudioCodec != "copy" {
		t.Errorf("overlay stage should pass audio through, got %s", spec.AudioCodec)
	}
}
