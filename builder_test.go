package splice

import (
	"errors"
	"testing"
)

func TestFilterInputCountValidated(t *testing.T) {
	in := Input("in.mp4")
	_, err := NewFilter([]Stream{in}, "overlay", nil, nil, WithInputCount(2))
	if !errors.Is(err, ErrArity) {
		t.Fatalf("expected input count error, got %v", err)
	}
	var detail *ArityError
	if !errors.As(err, &detail) || detail.Want != 2 || detail.Got != 1 {
		t.Fatalf("unexpected detail %+v", detail)
	}
}

func TestDuplicateParentRejected(t *testing.T) {
	in := Input("in.mp4")
	_, err := NewFilter([]Stream{in, in}, "concat", nil, nil)
	if !errors.Is(err, ErrDuplicateParent) {
		t.Fatalf("expected duplicate parent error, got %v", err)
	}
}

func TestDuplicateParentByStructure(t *testing.T) {
	// Independently built but structurally identical streams are the same
	// parent.
	_, err := NewFilter([]Stream{Input("in.mp4"), Input("in.mp4")}, "concat", nil, nil)
	if !errors.Is(err, ErrDuplicateParent) {
		t.Fatalf("expected duplicate parent error, got %v", err)
	}
}

func TestDistinctPadsAreDistinctParents(t *testing.T) {
	split := Input("in.mp4").Split()
	if _, err := NewFilter([]Stream{split.At(0), split.At(1)}, "overlay", nil, nil, WithInputCount(2)); err != nil {
		t.Fatalf("distinct pads rejected: %v", err)
	}
}

func TestSelectionRequiresMultiOutput(t *testing.T) {
	err := Input("in.mp4").HFlip().At(1).VFlip().Err()
	if !errors.Is(err, ErrStreamIndex) {
		t.Fatalf("expected stream index error, got %v", err)
	}
}

func TestSelectionOnSourceAllowed(t *testing.T) {
	// Container stream counts are unknown until probe time, so any index
	// passes construction.
	if err := Input("in.mp4").At(3).Output("out.mp4").Err(); err != nil {
		t.Fatalf("source selection rejected: %v", err)
	}
}

func TestNegativeSelectionRejected(t *testing.T) {
	err := Input("in.mp4").At(-1).Output("out.mp4").Err()
	if !errors.Is(err, ErrStreamIndex) {
		t.Fatalf("expected stream index error, got %v", err)
	}
}

func TestGlobalRequiresSinkParent(t *testing.T) {
	_, err := NewGlobal(Input("in.mp4"), "y", nil, nil)
	if !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("expected attachment error, got %v", err)
	}
}

func TestGlobalsChain(t *testing.T) {
	out := Input("in.mp4").Output("out.mp4").OverwriteOutput().GlobalArgs("loglevel", "error")
	if err := out.Err(); err != nil {
		t.Fatalf("chained globals rejected: %v", err)
	}
}

func TestSinkRejectsSinkParent(t *testing.T) {
	first := Input("in.mp4").Output("a.mp4")
	_, err := NewSink(first, "output", nil, Options{"filename": "b.mp4"})
	if !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("expected attachment error, got %v", err)
	}
}

func TestCarriedErrorPropagates(t *testing.T) {
	bad := Input("in.mp4").HFlip().At(3).VFlip()
	chained := bad.SetPTS("PTS").Output("out.mp4").OverwriteOutput()
	if err := chained.Err(); !errors.Is(err, ErrStreamIndex) {
		t.Fatalf("carried error lost: %v", err)
	}
	if _, err := Args(chained); !errors.Is(err, ErrStreamIndex) {
		t.Fatalf("Args should surface the carried error, got %v", err)
	}
}

func TestZeroStreamRejected(t *testing.T) {
	var zero Stream
	if err := zero.HFlip().Err(); !errors.Is(err, ErrInvalidAttachment) {
		t.Fatalf("expected attachment error, got %v", err)
	}
}

func TestInputMergesOptionSets(t *testing.T) {
	in := Input("in.mp4", Options{"ss": 5}, Options{"ss": 10, "t": 30})
	node := in.Node()
	if v, _ := node.Option("ss"); v != 10 {
		t.Fatalf("later option sets should win, got %v", v)
	}
	if v, _ := node.Option("filename"); v != "in.mp4" {
		t.Fatalf("filename option missing, got %v", v)
	}
}
