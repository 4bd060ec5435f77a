package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"splice"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func buildArgs(t *testing.T, contents string) []string {
	t.Helper()
	m, err := Load(writeManifest(t, contents))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	terminals, err := m.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	args, err := splice.Args(terminals...)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return args
}

func TestLoadBuildCompile(t *testing.T) {
	args := buildArgs(t, `
name = "clip"
overwrite = true

[[inputs]]
id = "main"
path = "in.mp4"

[[filters]]
id = "cut"
name = "trim"
inputs = ["main"]

[filters.options]
start_frame = 10
end_frame = 20

[[filters]]
id = "reset"
name = "setpts"
inputs = ["cut"]
args = ["PTS-STARTPTS"]

[[outputs]]
input = "reset"
path = "out.mp4"
`)
	want := []string{
		"-i", "in.mp4",
		"-filter_complex", "[0]trim=end_frame=20:start_frame=10,setpts=PTS-STARTPTS[v0]",
		"-map", "[v0]",
		"out.mp4",
		"-y",
	}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestBuildPadReferences(t *testing.T) {
	args := buildArgs(t, `
[[inputs]]
id = "src"
path = "in.mp4"

[[filters]]
id = "sp"
name = "split"
inputs = ["src"]
multi_output = true

[[filters]]
id = "flip"
name = "hflip"
inputs = ["sp:1"]

[[filters]]
id = "join"
name = "concat"
inputs = ["sp:0", "flip"]

[filters.options]
n = 2

[[outputs]]
input = "join"
path = "out.mp4"
`)
	want := []string{
		"-i", "in.mp4",
		"-filter_complex", "[0]split[v0][v1];[v1]hflip[v2];[v0][v2]concat=n=2[v3]",
		"-map", "[v3]",
		"out.mp4",
	}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestBuildAutoTitle(t *testing.T) {
	args := buildArgs(t, `
[[inputs]]
id = "main"
path = "family_trip.mp4"

[[outputs]]
input = "main"
path = "family_trip.mkv"
auto_title = true
`)
	want := []string{"-i", "family_trip.mp4", "-metadata", "title=Family Trip", "family_trip.mkv"}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestBuildAutoTitleKeepsExplicitMetadata(t *testing.T) {
	args := buildArgs(t, `
[[inputs]]
id = "main"
path = "in.mp4"

[[outputs]]
input = "main"
path = "out.mkv"
auto_title = true

[outputs.options]
metadata = "title=Handpicked"
`)
	want := []string{"-i", "in.mp4", "-metadata", "title=Handpicked", "out.mkv"}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestBuildGlobalsOrdering(t *testing.T) {
	args := buildArgs(t, `
overwrite = true

[[inputs]]
id = "main"
path = "in.mp4"

[[outputs]]
input = "main"
path = "out.mp4"

[[globals]]
name = "loglevel"
args = ["error"]
`)
	want := []string{"-i", "in.mp4", "out.mp4", "-loglevel", "error", "-y"}
	if !slices.Equal(args, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", args, want)
	}
}

func TestBuildSurfacesGraphErrors(t *testing.T) {
	m, err := Load(writeManifest(t, `
[[inputs]]
id = "main"
path = "in.mp4"

[[filters]]
id = "over"
name = "overlay"
inputs = ["main"]
input_count = 2

[[outputs]]
input = "over"
path = "out.mp4"
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = m.Build()
	if !errors.Is(err, splice.ErrArity) {
		t.Fatalf("expected arity error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"over"`) {
		t.Fatalf("expected offending step in error, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeManifest(t, `
banana = true

[[inputs]]
id = "main"
path = "in.mp4"

[[outputs]]
input = "main"
path = "out.mp4"
`))
	if err == nil || !strings.Contains(err.Error(), "unknown") {
		t.Fatalf("expected unknown key rejection, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{
			name:     "duplicate id",
			contents: `
[[inputs]]
id = "main"
path = "in.mp4"

[[filters]]
id = "main"
name = "hflip"
inputs = ["main"]

[[outputs]]
input = "main"
path = "out.mp4"
`,
			want: "duplicate id",
		},
		{
			name:     "unknown reference",
			contents: `
[[inputs]]
id = "main"
path = "in.mp4"

[[outputs]]
input = "ghost"
path = "out.mp4"
`,
			want: "unknown",
		},
		{
			name:     "forward reference",
			contents: `
[[inputs]]
id = "main"
path = "in.mp4"

[[filters]]
id = "first"
name = "hflip"
inputs = ["second"]

[[filters]]
id = "second"
name = "vflip"
inputs = ["main"]

[[outputs]]
input = "second"
path = "out.mp4"
`,
			want: "unknown or later",
		},
		{
			name:     "bad pad index",
			contents: `
[[inputs]]
id = "main"
path = "in.mp4"

[[filters]]
id = "flip"
name = "hflip"
inputs = ["main:x"]

[[outputs]]
input = "flip"
path = "out.mp4"
`,
			want: "index",
		},
		{
			name:     "reserved option",
			contents: `
[[inputs]]
id = "main"
path = "in.mp4"

[inputs.options]
filename = "sneaky.mp4"

[[outputs]]
input = "main"
path = "out.mp4"
`,
			want: "reserved",
		},
		{
			name:     "id with spaces",
			contents: `
[[inputs]]
id = "my input"
path = "in.mp4"

[[outputs]]
input = "my input"
path = "out.mp4"
`,
			want: "only letters",
		},
		{
			name:     "global without name",
			contents: `
[[inputs]]
id = "main"
path = "in.mp4"

[[outputs]]
input = "main"
path = "out.mp4"

[[globals]]
args = ["error"]
`,
			want: "name required",
		},
		{
			name:     "no inputs",
			contents: `
[[outputs]]
input = "main"
path = "out.mp4"
`,
			want: "input required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tc.contents))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"family_trip.mkv", "Family Trip"},
		{"Some.Movie.2021.mkv", "Some Movie 2021"},
		{"clip", "Clip"},
		{"render-output_final.mp4", "Render Output Final"},
		{"___", ""},
	}
	for _, tc := range cases {
		if got := deriveTitle(tc.in); got != tc.want {
			t.Fatalf("deriveTitle(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
