package splice

import (
	"strings"
	"testing"
)

func TestDigestStructuralIdentity(t *testing.T) {
	a := Input("in.mp4").Trim(Options{"start_frame": 10}).Node()
	b := Input("in.mp4").Trim(Options{"start_frame": 10}).Node()
	if !a.Equal(b) {
		t.Fatalf("structurally identical nodes digest to %s and %s", a.Digest().Short(), b.Digest().Short())
	}
}

func TestDigestSensitivity(t *testing.T) {
	base := Input("in.mp4")
	trim := base.Trim(Options{"start_frame": 10}).Node()
	cases := []struct {
		name  string
		other *Node
	}{
		{"different option value", base.Trim(Options{"start_frame": 11}).Node()},
		{"different option key", base.Trim(Options{"end_frame": 10}).Node()},
		{"different filter name", base.Filter("crop", Options{"start_frame": 10}).Node()},
		{"different parent", Input("other.mp4").Trim(Options{"start_frame": 10}).Node()},
		{"string instead of int", base.Trim(Options{"start_frame": "10"}).Node()},
	}
	for _, tc := range cases {
		if trim.Equal(tc.other) {
			t.Errorf("%s: digests collide", tc.name)
		}
	}
}

func TestDigestParentOrderMatters(t *testing.T) {
	a := Input("a.mp4")
	b := Input("b.mp4")
	if Overlay(a, b, nil).Node().Equal(Overlay(b, a, nil).Node()) {
		t.Fatal("swapped parents should change identity")
	}
}

func TestDigestDistinguishesSelectedOutputs(t *testing.T) {
	split := Input("in.mp4").Split()
	first := split.At(0).HFlip().Node()
	second := split.At(1).HFlip().Node()
	if first.Equal(second) {
		t.Fatal("consumers of different pads should have different identity")
	}
}

func TestDigestDistinguishesExplicitSelection(t *testing.T) {
	split := Input("in.mp4").Split()
	implicit := split.HFlip().Node()
	explicit := split.At(0).HFlip().Node()
	if implicit.Equal(explicit) {
		t.Fatal("explicit pad selection compiles differently and must change identity")
	}
}

func TestDigestRendering(t *testing.T) {
	d := Input("in.mp4").Node().Digest()
	if len(d.String()) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(d.String()))
	}
	if len(d.Short()) != 12 || !strings.HasPrefix(d.String(), d.Short()) {
		t.Fatalf("short form %q does not prefix %q", d.Short(), d.String())
	}
}

func TestNodeStringSortsNamedParams(t *testing.T) {
	n := Input("in.mp4").Filter("scale", Options{"width": 120, "height": 80}).Node()
	if got := n.String(); got != "scale(height=80,width=120)" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestNodeStringPositionalFirst(t *testing.T) {
	n := Input("in.mp4").DrawBox(10, 20, 120, 80, "red", Options{"t": 5}).Node()
	if got := n.String(); got != "drawbox(10,20,120,80,red,t=5)" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestFormatValueForms(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"text", "text"},
		{10, "10"},
		{int64(-3), "-3"},
		{uint8(7), "7"},
		{1.25, "1.25"},
		{true, "1"},
		{false, "0"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := formatValue(tc.in); got != tc.want {
			t.Errorf("formatValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNodeAccessorsCopy(t *testing.T) {
	n := Input("in.mp4").DrawBox(0, 0, 10, 10, "red", nil).Node()
	args := n.Args()
	args[0] = 99
	if n.Args()[0] != 0 {
		t.Fatal("Args should return a copy")
	}
	inputs := n.Inputs()
	inputs[0] = Stream{}
	if n.Inputs()[0].Node() == nil {
		t.Fatal("Inputs should return a copy")
	}
}
