package splice

import "fmt"

type filterConfig struct {
	arity    int
	multiOut bool
}

// FilterOption adjusts a filter declaration made through NewFilter.
type FilterOption func(*filterConfig)

// WithInputCount declares a fixed input count, validated at construction.
// Filters default to variadic.
func WithInputCount(n int) FilterOption {
	return func(c *filterConfig) { c.arity = n }
}

// WithMultiOutput declares that the filter exposes multiple output pads
// selectable with Stream.At, such as split.
func WithMultiOutput() FilterOption {
	return func(c *filterConfig) { c.multiOut = true }
}

// NewSource declares an external input and returns its default stream.
// Named options carry the input locator under "filename" plus any
// input-side flags; see Input for the common case.
func NewSource(name string, args []any, opts Options) Stream {
	node, err := newNode(KindSource, nil, name, args, opts, 0, false)
	if err != nil {
		return Stream{err: err}
	}
	return Stream{node: node}
}

// NewFilter declares a filter over the given input streams. Construction
// fails on carried input errors, input count mismatches, invalid output
// selections, and duplicate parents. The returned stream carries the same
// error, so fluent callers may ignore the second value.
func NewFilter(inputs []Stream, name string, args []any, opts Options, fo ...FilterOption) (Stream, error) {
	cfg := filterConfig{arity: Variadic}
	for _, opt := range fo {
		opt(&cfg)
	}
	node, err := newNode(KindFilter, inputs, name, args, opts, cfg.arity, cfg.multiOut)
	if err != nil {
		return Stream{err: err}, err
	}
	return Stream{node: node}, nil
}

// NewSink declares an external output consuming one final stream. Named
// options carry the destination under "filename" plus output-side flags.
func NewSink(input Stream, name string, args []any, opts Options) (Stream, error) {
	node, err := newNode(KindSink, []Stream{input}, name, args, opts, 0, false)
	if err != nil {
		return Stream{err: err}, err
	}
	return Stream{node: node}, nil
}

// NewGlobal declares a process-wide flag attached after a sink or another
// global. The flag renders as -name followed by its parameters at the end
// of the compiled arguments.
func NewGlobal(parent Stream, name string, args []any, opts Options) (Stream, error) {
	node, err := newNode(KindGlobal, []Stream{parent}, name, args, opts, 0, false)
	if err != nil {
		return Stream{err: err}, err
	}
	return Stream{node: node}, nil
}

// newNode runs every construction-time validation and is the single path
// behind the public constructors. Inputs are checked in order: carried
// errors, producer presence, input count, output selection, duplicates, and
// finally kind-specific attachment rules.
func newNode(kind Kind, inputs []Stream, name string, args []any, opts Options, arity int, multiOut bool) (*Node, error) {
	for _, in := range inputs {
		if in.err != nil {
			return nil, in.err
		}
		if in.node == nil {
			return nil, &AttachmentError{Node: name, Reason: "input stream has no producer"}
		}
	}
	if kind == KindFilter && arity != Variadic && arity != len(inputs) {
		return nil, &ArityError{Filter: name, Want: arity, Got: len(inputs)}
	}
	for _, in := range inputs {
		if err := validateSelection(in); err != nil {
			return nil, err
		}
	}
	seen := make(map[Digest]struct{}, len(inputs))
	for i, in := range inputs {
		d := in.digest()
		if _, dup := seen[d]; dup {
			return nil, &DuplicateParentError{Node: name, Input: i}
		}
		seen[d] = struct{}{}
	}
	switch kind {
	case KindGlobal:
		parent := inputs[0].node
		if parent.kind != KindSink && parent.kind != KindGlobal {
			return nil, &AttachmentError{
				Node:   name,
				Reason: fmt.Sprintf("global flag must follow an output, not %s %q", parent.kind, parent.name),
			}
		}
	case KindSink:
		parent := inputs[0].node
		if parent.kind == KindSink || parent.kind == KindGlobal {
			return nil, &AttachmentError{
				Node:   name,
				Reason: fmt.Sprintf("output cannot consume %s %q", parent.kind, parent.name),
			}
		}
	}
	return &Node{
		kind:     kind,
		name:     name,
		args:     cloneArgs(args),
		opts:     cloneOptions(opts),
		inputs:   cloneStreams(inputs),
		arity:    arity,
		multiOut: multiOut,
	}, nil
}

// validateSelection rejects output indexes the producer cannot expose.
// Sources are exempt from upper-bound checks because their stream count is
// a property of the underlying container, unknown until probe time.
func validateSelection(in Stream) error {
	if in.index < 0 {
		return &StreamIndexError{Node: in.node.name, Index: in.index}
	}
	if in.index == 0 {
		return nil
	}
	switch {
	case in.node.kind == KindSource:
		return nil
	case in.node.kind == KindFilter && in.node.multiOut:
		return nil
	}
	return &StreamIndexError{Node: in.node.name, Index: in.index}
}

func cloneArgs(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	copy(out, args)
	return out
}

func cloneOptions(opts Options) Options {
	if len(opts) == 0 {
		return nil
	}
	out := make(Options, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	return out
}

func cloneStreams(streams []Stream) []Stream {
	if len(streams) == 0 {
		return nil
	}
	out := make([]Stream, len(streams))
	copy(out, streams)
	return out
}

// Input declares an external input file and returns its stream. Extra
// options become input-side flags:
//
//	splice.Input("in.mp4", splice.Options{"ss": 10})
func Input(filename string, opts ...Options) Stream {
	merged := Options{"filename": filename}
	for _, o := range opts {
		for k, v := range o {
			merged[k] = v
		}
	}
	return NewSource("input", nil, merged)
}

// Filter applies a single-input filter by name, passing parameters through
// verbatim. Reach for it whenever the typed catalog lacks a filter.
func (s Stream) Filter(name string, opts Options, args ...any) Stream {
	out, _ := NewFilter([]Stream{s}, name, args, opts, WithInputCount(1))
	return out
}

// FilterMultiOutput applies a single-input filter whose output pads are
// selected with At.
func (s Stream) FilterMultiOutput(name string, opts Options, args ...any) Stream {
	out, _ := NewFilter([]Stream{s}, name, args, opts, WithInputCount(1), WithMultiOutput())
	return out
}

// Output terminates the stream in an external destination file. Extra
// options become output-side flags placed before the filename.
func (s Stream) Output(filename string, opts ...Options) Stream {
	merged := Options{"filename": filename}
	for _, o := range opts {
		for k, v := range o {
			merged[k] = v
		}
	}
	out, _ := NewSink(s, "output", nil, merged)
	return out
}

// OverwriteOutput appends the global overwrite flag (-y) after an output.
func (s Stream) OverwriteOutput() Stream {
	out, _ := NewGlobal(s, "y", nil, nil)
	return out
}

// GlobalArgs appends a custom global flag after an output, rendered as
// -name followed by its positional parameters.
func (s Stream) GlobalArgs(name string, args ...any) Stream {
	out, _ := NewGlobal(s, name, args, nil)
	return out
}
