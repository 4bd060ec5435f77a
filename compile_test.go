package splice

import (
	"errors"
	"slices"
	"testing"
)

func mustArgs(t *testing.T, terminals ...Stream) []string {
	t.Helper()
	args, err := Args(terminals...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return args
}

func assertArgs(t *testing.T, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Fatalf("argument mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestArgsPassthrough(t *testing.T) {
	out := Input("dummy.mp4").Output("dummy2.mp4")
	assertArgs(t, mustArgs(t, out), []string{"-i", "dummy.mp4", "dummy2.mp4"})
}

func TestArgsComplexGraph(t *testing.T) {
	in := Input("in.mp4")
	part := func(start, end int) Stream {
		return in.Trim(Options{"start_frame": start, "end_frame": end}).SetPTS("PTS-STARTPTS")
	}
	joined := Concat(nil, part(10, 20), part(30, 40), part(50, 60))
	out := joined.Output("out.mp4").OverwriteOutput()
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-filter_complex",
		"[0]trim=end_frame=20:start_frame=10,setpts=PTS-STARTPTS[v0];" +
			"[0]trim=end_frame=40:start_frame=30,setpts=PTS-STARTPTS[v1];" +
			"[0]trim=end_frame=60:start_frame=50,setpts=PTS-STARTPTS[v2];" +
			"[v0][v1][v2]concat=n=3[v3]",
		"-map", "[v3]",
		"out.mp4",
		"-y",
	})
}

func TestArgsDeterministicAcrossConstruction(t *testing.T) {
	build := func(shared bool) Stream {
		in := Input("in.mp4")
		a := in.Trim(Options{"end_frame": 20})
		var b Stream
		if shared {
			b = in.Trim(Options{"end_frame": 40})
		} else {
			// fresh, structurally identical input object
			b = Input("in.mp4").Trim(Options{"end_frame": 40})
		}
		return Concat(nil, a, b).Output("out.mp4")
	}
	assertArgs(t, mustArgs(t, build(false)), mustArgs(t, build(true)))
}

func TestArgsParameterlessFilter(t *testing.T) {
	out := Input("in.mp4").HFlip().Output("out.mp4")
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-filter_complex", "[0]hflip[v0]",
		"-map", "[v0]",
		"out.mp4",
	})
}

func TestArgsInputOptions(t *testing.T) {
	in := Input("in.raw", Options{"format": "rawvideo", "ss": 5, "re": nil})
	assertArgs(t, mustArgs(t, in.Output("out.mp4")), []string{
		"-f", "rawvideo", "-re", "-ss", "5", "-i", "in.raw",
		"out.mp4",
	})
}

func TestArgsOutputOptions(t *testing.T) {
	out := Input("in.mp4").Output("out.mkv", Options{"format": "matroska", "c:v": "libx264", "crf": 23})
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-f", "matroska", "-c:v", "libx264", "-crf", "23",
		"out.mkv",
	})
}

func TestArgsExplicitSourceSelection(t *testing.T) {
	out := Input("in.mp4").At(1).Output("audio.m4a")
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-map", "0:1",
		"audio.m4a",
	})
}

func TestArgsExplicitSelectionIntoFilter(t *testing.T) {
	out := Input("in.mp4").At(2).HFlip().Output("out.mp4")
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-filter_complex", "[0:2]hflip[v0]",
		"-map", "[v0]",
		"out.mp4",
	})
}

func TestArgsSplitPads(t *testing.T) {
	split := Input("in.mp4").Split()
	joined := Concat(nil, split.At(0), split.At(1).HFlip())
	assertArgs(t, mustArgs(t, joined.Output("out.mp4")), []string{
		"-i", "in.mp4",
		"-filter_complex",
		"[0]split[v0][v1];[v1]hflip[v2];[v0][v2]concat=n=2[v3]",
		"-map", "[v3]",
		"out.mp4",
	})
}

func TestArgsOverlayDefaultEOFAction(t *testing.T) {
	main := Input("main.mp4")
	logo := Input("logo.png")
	out := main.Overlay(logo.HFlip(), Options{"x": 10, "y": 10}).Output("out.mp4")
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "main.mp4",
		"-i", "logo.png",
		"-filter_complex",
		"[1]hflip[v0];[0][v0]overlay=eof_action=repeat:x=10:y=10[v1]",
		"-map", "[v1]",
		"out.mp4",
	})
}

func TestArgsSharedInputAcrossSinks(t *testing.T) {
	in := Input("in.mp4")
	first := in.Trim(Options{"end_frame": 20}).Output("a.mp4")
	second := in.Output("b.mp4")
	assertArgs(t, mustArgs(t, first, second), []string{
		"-i", "in.mp4",
		"-filter_complex", "[0]trim=end_frame=20[v0]",
		"-map", "[v0]", "a.mp4",
		"b.mp4",
	})
}

func TestArgsZeroInputFilterBesideSource(t *testing.T) {
	backdrop, err := NewFilter(nil, "color", nil, Options{"c": "black", "s": "1280x720"})
	if err != nil {
		t.Fatalf("color filter: %v", err)
	}
	out := Overlay(backdrop, Input("in.mp4"), nil).Output("out.mp4")
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-filter_complex",
		"color=c=black:s=1280x720[v0];[v0][0]overlay=eof_action=repeat[v1]",
		"-map", "[v1]",
		"out.mp4",
	})
}

func TestArgsEscapesFilterValues(t *testing.T) {
	out := Input("in.mp4").
		Filter("subtitles", Options{"filename": "sub title.srt", "force_style": "FontName=Arial,Bold=1"}).
		Output("out.mp4")
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-filter_complex",
		`[0]subtitles=filename=sub title.srt:force_style=FontName\=Arial\,Bold\=1[v0]`,
		"-map", "[v0]",
		"out.mp4",
	})
}

func TestArgsDrawTextEscaping(t *testing.T) {
	out := Input("in.mp4").DrawText("it's 100%", Options{"x": 10}).Output("out.mp4")
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"-filter_complex",
		`[0]drawtext=text=it\\\'s 100\\%:x=10[v0]`,
		"-map", "[v0]",
		"out.mp4",
	})
}

func TestArgsRejectsControlCharacters(t *testing.T) {
	out := Input("in.mp4").Filter("drawtext", Options{"text": "line1\nline2"}).Output("out.mp4")
	if _, err := Args(out); !errors.Is(err, ErrEscape) {
		t.Fatalf("expected escape error, got %v", err)
	}
}

func TestArgsGlobalOrdering(t *testing.T) {
	out := Input("in.mp4").Output("out.mp4").GlobalArgs("loglevel", "error").OverwriteOutput()
	assertArgs(t, mustArgs(t, out), []string{
		"-i", "in.mp4",
		"out.mp4",
		"-loglevel", "error",
		"-y",
	})
}

func TestFilterChainEmptyWithoutFilters(t *testing.T) {
	res, err := Resolve(Input("in.mp4").Output("out.mp4"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	chain, err := res.FilterChain()
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if chain != "" {
		t.Fatalf("expected empty chain, got %q", chain)
	}
}
