package splice

import (
	"errors"
	"testing"
)

func TestResolveTopologicalOrder(t *testing.T) {
	out := Input("in.mp4").Trim(Options{"start_frame": 10}).Output("out.mp4")
	res, err := Resolve(out)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Order) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(res.Order))
	}
	if res.Order[0].Kind() != KindSource || res.Order[1].Name() != "trim" || res.Order[2].Kind() != KindSink {
		t.Fatalf("unexpected order: %v, %v, %v", res.Order[0], res.Order[1], res.Order[2])
	}
}

func TestResolveCollapsesIdenticalFragments(t *testing.T) {
	a := Input("in.mp4").Trim(Options{"start_frame": 10})
	b := Input("in.mp4").Trim(Options{"start_frame": 10})
	merged := Concat(nil, a.HFlip(), b.VFlip())
	res, err := Resolve(merged.Output("out.mp4"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	trims := 0
	for _, n := range res.Order {
		if n.Name() == "trim" {
			trims++
		}
	}
	if trims != 1 {
		t.Fatalf("expected the identical trims to collapse, found %d", trims)
	}
	if len(res.Sources) != 1 {
		t.Fatalf("expected 1 source, found %d", len(res.Sources))
	}
}

func TestResolveFusesLinearRuns(t *testing.T) {
	tail := Input("in.mp4").Trim(Options{"start_frame": 10}).SetPTS("PTS-STARTPTS")
	res, err := Resolve(tail.Output("out.mp4"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var trim, setpts *Node
	for _, n := range res.Order {
		switch n.Name() {
		case "trim":
			trim = n
		case "setpts":
			setpts = n
		}
	}
	if trim == nil || setpts == nil {
		t.Fatal("missing filter nodes in order")
	}
	if !res.Fused(trim) {
		t.Fatal("trim should fuse into setpts")
	}
	if res.Fused(setpts) {
		t.Fatal("setpts feeds the sink and cannot fuse")
	}
	if _, ok := res.Label(trim, 0); ok {
		t.Fatal("fused filter should not carry a label")
	}
	if label, ok := res.Label(setpts, 0); !ok || label != "v0" {
		t.Fatalf("setpts label = %q (present %v), want v0", label, ok)
	}
}

func TestResolveLabelNumberingFollowsTopoOrder(t *testing.T) {
	in := Input("in.mp4")
	joined := Concat(nil, in.Trim(Options{"end_frame": 20}), in.Trim(Options{"end_frame": 40}))
	res, err := Resolve(joined.Output("out.mp4"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := map[string]string{
		"trim(end_frame=20)": "v0",
		"trim(end_frame=40)": "v1",
		"concat(n=2)":        "v2",
	}
	for _, n := range res.Order {
		if n.Kind() != KindFilter {
			continue
		}
		label, ok := res.Label(n, 0)
		if !ok || label != want[n.String()] {
			t.Fatalf("label for %s = %q, want %q", n, label, want[n.String()])
		}
	}
}

func TestResolveSourceIndexes(t *testing.T) {
	a := Input("a.mp4")
	b := Input("b.mp4")
	res, err := Resolve(Overlay(a, b, nil).Output("out.mp4"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if idx, ok := res.SourceIndex(a.Node()); !ok || idx != 0 {
		t.Fatalf("first input index = %d (present %v)", idx, ok)
	}
	if idx, ok := res.SourceIndex(b.Node()); !ok || idx != 1 {
		t.Fatalf("second input index = %d (present %v)", idx, ok)
	}
}

func TestResolveRejectsMixedSelection(t *testing.T) {
	split := Input("in.mp4").Split()
	mixed := Overlay(split, split.At(1), nil)
	_, err := Resolve(mixed.Output("out.mp4"))
	if !errors.Is(err, ErrAmbiguousOutput) {
		t.Fatalf("expected ambiguous output error, got %v", err)
	}
}

func TestResolveAllowsConsistentImplicitReads(t *testing.T) {
	// A multi-output filter consumed only implicitly acts single-output.
	split := Input("in.mp4").Split()
	if _, err := Resolve(split.HFlip().Output("out.mp4")); err != nil {
		t.Fatalf("implicit-only consumption rejected: %v", err)
	}
}

func TestResolveRejectsSourcelessSink(t *testing.T) {
	color, err := NewFilter(nil, "color", nil, Options{"c": "red"})
	if err != nil {
		t.Fatalf("color filter: %v", err)
	}
	_, err = Resolve(color.Output("out.mp4"))
	if !errors.Is(err, ErrUnreachableSink) {
		t.Fatalf("expected unreachable sink error, got %v", err)
	}
}

func TestResolveMultipleSinksShareGraph(t *testing.T) {
	split := Input("in.mp4").Split()
	first := split.At(0).Output("a.mp4")
	second := split.At(1).Output("b.mp4")
	res, err := Resolve(first, second)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(res.Sinks))
	}
	if len(res.Sources) != 1 {
		t.Fatalf("expected shared source, got %d", len(res.Sources))
	}
}

func TestResolveRejectsNonTerminalStream(t *testing.T) {
	if _, err := Resolve(Input("in.mp4").HFlip()); err == nil {
		t.Fatal("expected error for a filter terminal")
	}
}

func TestResolveRequiresTerminals(t *testing.T) {
	if _, err := Resolve(); err == nil {
		t.Fatal("expected error for empty terminal list")
	}
}

func TestResolutionDigestIdentity(t *testing.T) {
	build := func() *Resolution {
		out := Input("in.mp4").HFlip().Output("out.mp4").OverwriteOutput()
		res, err := Resolve(out)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		return res
	}
	if build().Digest() != build().Digest() {
		t.Fatal("identical graphs must share a resolution digest")
	}

	other, err := Resolve(Input("in.mp4").VFlip().Output("out.mp4").OverwriteOutput())
	if err != nil {
		t.Fatalf("resolve variant: %v", err)
	}
	if build().Digest() == other.Digest() {
		t.Fatal("different graphs must not share a resolution digest")
	}
}
