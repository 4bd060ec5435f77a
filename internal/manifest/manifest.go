package manifest

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
)

// Manifest describes one pipeline: inputs, filter steps, outputs, and
// trailing global flags.
type Manifest struct {
	Name      string   `toml:"name"`
	Overwrite bool     `toml:"overwrite"`
	Inputs    []Input  `toml:"inputs"`
	Filters   []Filter `toml:"filters"`
	Outputs   []Output `toml:"outputs"`
	Globals   []Global `toml:"globals"`
}

// Input declares an external media file.
type Input struct {
	ID      string         `toml:"id"`
	Path    string         `toml:"path"`
	Options map[string]any `toml:"options"`
}

// Filter declares one filter step over earlier steps.
type Filter struct {
	ID          string         `toml:"id"`
	Name        string         `toml:"name"`
	Inputs      []string       `toml:"inputs"`
	Args        []any          `toml:"args"`
	Options     map[string]any `toml:"options"`
	InputCount  int            `toml:"input_count"`
	MultiOutput bool           `toml:"multi_output"`
}

// Output declares a destination file fed by one step.
type Output struct {
	Input     string         `toml:"input"`
	Path      string         `toml:"path"`
	AutoTitle bool           `toml:"auto_title"`
	Options   map[string]any `toml:"options"`
}

// Global declares a trailing process-wide flag, rendered as -name
// followed by its arguments.
type Global struct {
	Name string `toml:"name"`
	Args []any  `toml:"args"`
}

// Load reads and validates a manifest file. Unknown keys are rejected
// so typos fail loudly instead of silently dropping a step.
func Load(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var m Manifest
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&m); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse manifest: unknown keys:\n%s", strict.String())
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks document structure: required fields, id uniqueness,
// and that every reference names an earlier step.
func (m *Manifest) Validate() error {
	if len(m.Inputs) == 0 {
		return errors.New("manifest: at least one input required")
	}
	if len(m.Outputs) == 0 {
		return errors.New("manifest: at least one output required")
	}

	declared := make(map[string]struct{}, len(m.Inputs)+len(m.Filters))
	for i, in := range m.Inputs {
		if err := checkID(in.ID); err != nil {
			return fmt.Errorf("inputs[%d]: %w", i, err)
		}
		if _, dup := declared[in.ID]; dup {
			return fmt.Errorf("inputs[%d]: duplicate id %q", i, in.ID)
		}
		if strings.TrimSpace(in.Path) == "" {
			return fmt.Errorf("inputs[%d] %q: path required", i, in.ID)
		}
		if _, reserved := in.Options["filename"]; reserved {
			return fmt.Errorf("inputs[%d] %q: option \"filename\" is reserved; use path", i, in.ID)
		}
		declared[in.ID] = struct{}{}
	}

	for i, step := range m.Filters {
		if err := checkID(step.ID); err != nil {
			return fmt.Errorf("filters[%d]: %w", i, err)
		}
		if _, dup := declared[step.ID]; dup {
			return fmt.Errorf("filters[%d]: duplicate id %q", i, step.ID)
		}
		if strings.TrimSpace(step.Name) == "" {
			return fmt.Errorf("filters[%d] %q: name required", i, step.ID)
		}
		for _, ref := range step.Inputs {
			if err := checkRef(declared, ref); err != nil {
				return fmt.Errorf("filters[%d] %q: %w", i, step.ID, err)
			}
		}
		declared[step.ID] = struct{}{}
	}

	for i, out := range m.Outputs {
		if strings.TrimSpace(out.Path) == "" {
			return fmt.Errorf("outputs[%d]: path required", i)
		}
		if strings.TrimSpace(out.Input) == "" {
			return fmt.Errorf("outputs[%d]: input required", i)
		}
		if err := checkRef(declared, out.Input); err != nil {
			return fmt.Errorf("outputs[%d]: %w", i, err)
		}
		if _, reserved := out.Options["filename"]; reserved {
			return fmt.Errorf("outputs[%d]: option \"filename\" is reserved; use path", i)
		}
	}

	for i, g := range m.Globals {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("globals[%d]: name required", i)
		}
	}

	return nil
}

func checkID(id string) error {
	if id == "" {
		return errors.New("id required")
	}
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			continue
		}
		return fmt.Errorf("id %q: only letters, digits, '_' and '-' are allowed", id)
	}
	return nil
}

func checkRef(declared map[string]struct{}, ref string) error {
	id, _, _, err := parseRef(ref)
	if err != nil {
		return err
	}
	if _, ok := declared[id]; !ok {
		return fmt.Errorf("reference %q: unknown or later step %q", ref, id)
	}
	return nil
}

// parseRef splits a step reference into its id and optional pad index.
func parseRef(ref string) (id string, index int, explicit bool, err error) {
	id, suffix, found := strings.Cut(ref, ":")
	if id == "" {
		return "", 0, false, fmt.Errorf("reference %q: id required", ref)
	}
	if !found {
		return id, 0, false, nil
	}
	index, convErr := strconv.Atoi(suffix)
	if convErr != nil || index < 0 {
		return "", 0, false, fmt.Errorf("reference %q: index must be a non-negative integer", ref)
	}
	return id, index, true, nil
}
