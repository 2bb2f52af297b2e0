package media

// Window is a half-open time interval [Start, End) in seconds.
type Window struct {
	Start float64
	End   float64
}

// Length returns the window length in seconds.
func (w Window) Length() float64 {
	return w.End - w.Start
}

// IsEmpty reports whether the window contains no time at all.
func (w Window) IsEmpty() bool {
	return w.End <= w.Start
}

// skipFraction is the share of the total duration skipped on each side of a
// long video so the selected window avoids intros and outros.
const skipFraction = 0.1

// SelectWindow chooses the segment of a video to keep, given its total
// duration and the maximum output duration, both in seconds.
//
// Videos no longer than max are kept whole. For longer videos a symmetric
// skip margin of 10% of the duration is applied on each side; if the middle
// region still holds a full window, the window starts at the margin,
// otherwise a window of length max is centered inside the video. The result
// never exceeds max, never starts negative, and never extends past the end
// of the video. A zero duration yields the empty window [0, 0).
func SelectWindow(duration, max float64) Window {
	if duration <= 0 || max <= 0 {
		return Window{}
	}

	if duration <= max {
		return Window{Start: 0, End: duration}
	}

	margin := skipFraction * duration
	if duration-2*margin >= max {
		return Window{Start: margin, End: margin + max}
	}

	// Middle region too small after the margins; center the window instead.
	start := (duration - max) / 2
	if start < 0 {
		start = 0
	}
	return Window{Start: start, End: start + max}
}
