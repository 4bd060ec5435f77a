package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"splice"
)

// Build turns the manifest into terminal streams ready for resolution.
// Outputs appear in declaration order; globals chain onto the final
// output in declaration order, with the overwrite flag last.
func (m *Manifest) Build() ([]splice.Stream, error) {
	streams := make(map[string]splice.Stream, len(m.Inputs)+len(m.Filters))

	for _, in := range m.Inputs {
		streams[in.ID] = splice.Input(in.Path, splice.Options(in.Options))
	}

	for i, step := range m.Filters {
		inputs := make([]splice.Stream, 0, len(step.Inputs))
		for _, ref := range step.Inputs {
			resolved, err := resolveRef(streams, ref)
			if err != nil {
				return nil, fmt.Errorf("filters[%d] %q: %w", i, step.ID, err)
			}
			inputs = append(inputs, resolved)
		}

		var fo []splice.FilterOption
		if step.InputCount > 0 {
			fo = append(fo, splice.WithInputCount(step.InputCount))
		}
		if step.MultiOutput {
			fo = append(fo, splice.WithMultiOutput())
		}

		stream, err := splice.NewFilter(inputs, step.Name, step.Args, splice.Options(step.Options), fo...)
		if err != nil {
			return nil, fmt.Errorf("filters[%d] %q: %w", i, step.ID, err)
		}
		streams[step.ID] = stream
	}

	terminals := make([]splice.Stream, 0, len(m.Outputs))
	for i, out := range m.Outputs {
		input, err := resolveRef(streams, out.Input)
		if err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", i, err)
		}

		opts := make(splice.Options, len(out.Options)+1)
		for k, v := range out.Options {
			opts[k] = v
		}
		if out.AutoTitle {
			if _, set := opts["metadata"]; !set {
				if title := deriveTitle(out.Path); title != "" {
					opts["metadata"] = "title=" + title
				}
			}
		}

		sink := input.Output(out.Path, opts)
		if err := sink.Err(); err != nil {
			return nil, fmt.Errorf("outputs[%d]: %w", i, err)
		}
		terminals = append(terminals, sink)
	}

	last := terminals[len(terminals)-1]
	for i, g := range m.Globals {
		last = last.GlobalArgs(g.Name, g.Args...)
		if err := last.Err(); err != nil {
			return nil, fmt.Errorf("globals[%d]: %w", i, err)
		}
	}
	if m.Overwrite {
		last = last.OverwriteOutput()
		if err := last.Err(); err != nil {
			return nil, fmt.Errorf("overwrite: %w", err)
		}
	}
	terminals[len(terminals)-1] = last

	return terminals, nil
}

func resolveRef(streams map[string]splice.Stream, ref string) (splice.Stream, error) {
	id, index, explicit, err := parseRef(ref)
	if err != nil {
		return splice.Stream{}, err
	}
	stream, ok := streams[id]
	if !ok {
		return splice.Stream{}, fmt.Errorf("reference %q: unknown step %q", ref, id)
	}
	if explicit {
		return stream.At(index), nil
	}
	return stream, nil
}

// deriveTitle builds a human-readable title from an output filename,
// collapsing separator runs and title-casing the remainder.
func deriveTitle(outputPath string) string {
	base := filepath.Base(outputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return ""
	}
	return cases.Title(language.Und).String(title)
}
