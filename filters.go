package splice

// Typed wrappers for commonly used filters. Each delegates to Filter or
// FilterMultiOutput, so anything missing here is still reachable by name.

// Trim keeps one continuous sub-range of the input. Range options pass
// through verbatim: start/end in seconds, start_pts/end_pts in timebase
// units, start_frame/end_frame, duration.
func (s Stream) Trim(opts Options) Stream {
	return s.Filter("trim", opts)
}

// SetPTS rewrites frame presentation timestamps with the given expression,
// for example "PTS-STARTPTS" after a trim.
func (s Stream) SetPTS(expr string) Stream {
	return s.Filter("setpts", nil, expr)
}

// Split duplicates the stream into identical output pads selected with At.
func (s Stream) Split() Stream {
	return s.FilterMultiOutput("split", nil)
}

// HFlip mirrors the video horizontally.
func (s Stream) HFlip() Stream {
	return s.Filter("hflip", nil)
}

// VFlip mirrors the video vertically.
func (s Stream) VFlip() Stream {
	return s.Filter("vflip", nil)
}

// Hue adjusts hue and saturation. Options: h (angle in degrees), s
// (saturation), H (angle in radians), b (brightness).
func (s Stream) Hue(opts Options) Stream {
	return s.Filter("hue", opts)
}

// ZoomPan applies the zoom and pan effect.
func (s Stream) ZoomPan(opts Options) Stream {
	return s.Filter("zoompan", opts)
}

// ColorChannelMixer remixes frames by combining color channels.
func (s Stream) ColorChannelMixer(opts Options) Stream {
	return s.Filter("colorchannelmixer", opts)
}

// Crop extracts a width-by-height window at (x, y).
func (s Stream) Crop(x, y, width, height any) Stream {
	return s.Filter("crop", nil, width, height, x, y)
}

// DrawBox draws a colored box at (x, y) with the given size. Thickness and
// further styling travel through opts under ffmpeg's own option names.
func (s Stream) DrawBox(x, y, width, height any, color string, opts Options) Stream {
	return s.Filter("drawbox", opts, x, y, width, height, color)
}

// DrawText overlays text on the video. The text is escaped for the drawtext
// expansion grammar; position, font, and styling options travel through
// opts. Passing text through opts instead bypasses the escaping.
func (s Stream) DrawText(text string, opts Options) Stream {
	merged := make(Options, len(opts)+1)
	for k, v := range opts {
		merged[k] = v
	}
	merged["text"] = EscapeText(text)
	return s.Filter("drawtext", merged)
}

// Concat joins segments of synchronized streams back to back. The stream
// count option n is always derived from the inputs, overriding any caller
// value.
func Concat(opts Options, streams ...Stream) Stream {
	merged := make(Options, len(opts)+1)
	for k, v := range opts {
		merged[k] = v
	}
	merged["n"] = len(streams)
	out, _ := NewFilter(streams, "concat", nil, merged)
	return out
}

// Overlay draws the overlay stream on top of the main stream. eof_action
// defaults to "repeat" so the overlay holds its last frame when it ends
// before the main stream.
func Overlay(main, overlay Stream, opts Options) Stream {
	merged := make(Options, len(opts)+1)
	for k, v := range opts {
		merged[k] = v
	}
	if _, ok := merged["eof_action"]; !ok {
		merged["eof_action"] = "repeat"
	}
	out, _ := NewFilter([]Stream{main, overlay}, "overlay", nil, merged, WithInputCount(2))
	return out
}

// Overlay draws another stream on top of this one; see the package-level
// Overlay.
func (s Stream) Overlay(overlay Stream, opts Options) Stream {
	return Overlay(s, overlay, opts)
}

// Concat joins this stream with the given ones; see the package-level
// Concat.
func (s Stream) Concat(opts Options, streams ...Stream) Stream {
	all := make([]Stream, 0, len(streams)+1)
	all = append(all, s)
	all = append(all, streams...)
	return Concat(opts, all...)
}
