package splice

import (
	"errors"
	"fmt"
)

// Sentinel errors for the graph layer. Constructors and the compiler wrap
// these in typed errors carrying the offending node details; match with
// errors.Is, or errors.As for the detail struct.
var (
	// ErrArity reports a filter built with the wrong number of inputs.
	ErrArity = errors.New("input count mismatch")

	// ErrDuplicateParent reports one stream attached twice to a node.
	ErrDuplicateParent = errors.New("duplicate parent stream")

	// ErrInvalidAttachment reports a node attached to the wrong kind of
	// parent, such as a global flag without a preceding sink.
	ErrInvalidAttachment = errors.New("invalid attachment")

	// ErrStreamIndex reports selection of an output a node does not expose.
	ErrStreamIndex = errors.New("invalid stream index")

	// ErrUnreachableSink reports a sink whose ancestry contains no source.
	ErrUnreachableSink = errors.New("unreachable sink")

	// ErrAmbiguousOutput reports a multi-output filter consumed both with
	// and without explicit output selection.
	ErrAmbiguousOutput = errors.New("ambiguous output selection")

	// ErrEscape reports a parameter value the filter grammar cannot carry.
	ErrEscape = errors.New("unescapable value")
)

// ArityError details a filter whose declared input count does not match the
// number of streams supplied at construction.
type ArityError struct {
	Filter string
	Want   int
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: filter %q takes %d inputs, got %d", ErrArity, e.Filter, e.Want, e.Got)
}

func (e *ArityError) Unwrap() error { return ErrArity }

// DuplicateParentError details the same stream supplied as two inputs of one
// node. Input is the position of the second occurrence.
type DuplicateParentError struct {
	Node  string
	Input int
}

func (e *DuplicateParentError) Error() string {
	return fmt.Sprintf("%s: input %d of %q repeats an earlier input", ErrDuplicateParent, e.Input, e.Node)
}

func (e *DuplicateParentError) Unwrap() error { return ErrDuplicateParent }

// AttachmentError details a node attached to a parent it cannot follow.
type AttachmentError struct {
	Node   string
	Reason string
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("%s: node %q: %s", ErrInvalidAttachment, e.Node, e.Reason)
}

func (e *AttachmentError) Unwrap() error { return ErrInvalidAttachment }

// StreamIndexError details selection of an output index the producing node
// does not expose.
type StreamIndexError struct {
	Node  string
	Index int
}

func (e *StreamIndexError) Error() string {
	return fmt.Sprintf("%s: node %q has no selectable output %d", ErrStreamIndex, e.Node, e.Index)
}

func (e *StreamIndexError) Unwrap() error { return ErrStreamIndex }

// UnreachableSinkError details a sink that cannot be traced back to any
// source and therefore cannot be compiled.
type UnreachableSinkError struct {
	Sink string
}

func (e *UnreachableSinkError) Error() string {
	return fmt.Sprintf("%s: %s has no path to any input", ErrUnreachableSink, e.Sink)
}

func (e *UnreachableSinkError) Unwrap() error { return ErrUnreachableSink }

// AmbiguousOutputError details a multi-output filter read both implicitly
// and through explicit output selection in the same graph.
type AmbiguousOutputError struct {
	Filter string
}

func (e *AmbiguousOutputError) Error() string {
	return fmt.Sprintf("%s: filter %q is consumed both implicitly and by output index", ErrAmbiguousOutput, e.Filter)
}

func (e *AmbiguousOutputError) Unwrap() error { return ErrAmbiguousOutput }

// EscapeError details a parameter value that cannot be represented inside a
// rendered filter expression.
type EscapeError struct {
	Value string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("%s: %q contains control characters", ErrEscape, e.Value)
}

func (e *EscapeError) Unwrap() error { return ErrEscape }
