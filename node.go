package splice

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Kind identifies the role a node plays in a pipeline graph.
type Kind uint8

const (
	// KindSource is a leaf producer declaring an external input.
	KindSource Kind = iota + 1
	// KindFilter transforms one or more parent streams.
	KindFilter
	// KindSink is a terminal consumer declaring an external output.
	KindSink
	// KindGlobal carries a process-wide flag attached after a sink.
	KindGlobal
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindFilter:
		return "filter"
	case KindSink:
		return "sink"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Options holds a node's named parameters. Values stay opaque until compile
// time; the graph layer only requires that they format deterministically.
type Options map[string]any

// Variadic declares a filter that accepts any number of inputs.
const Variadic = -1

// Node is one immutable vertex of a pipeline graph. Nodes are created by the
// package constructors and never mutated afterwards: extending a pipeline
// allocates new downstream nodes while sharing ancestors, so held Stream
// values remain valid indefinitely.
type Node struct {
	kind     Kind
	name     string
	args     []any
	opts     Options
	inputs   []Stream
	arity    int
	multiOut bool

	digestOnce sync.Once
	digest     Digest
}

// Kind returns the node's role in the graph.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the operation or marker name, such as a filter name.
func (n *Node) Name() string { return n.name }

// Args returns the node's positional parameters in declaration order.
func (n *Node) Args() []any {
	out := make([]any, len(n.args))
	copy(out, n.args)
	return out
}

// Inputs returns the node's parent streams in declaration order.
func (n *Node) Inputs() []Stream {
	out := make([]Stream, len(n.inputs))
	copy(out, n.inputs)
	return out
}

// MultiOutput reports whether outputs of this node may be selected by index.
func (n *Node) MultiOutput() bool { return n.multiOut }

// Option returns the named parameter and whether it is set.
func (n *Node) Option(key string) (any, bool) {
	v, ok := n.opts[key]
	return v, ok
}

// Digest is a node's structural identity: a hash over its kind, name, and
// parameters combined with the identities of its parent streams in order.
type Digest [sha256.Size]byte

// String returns the digest as lowercase hex.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns a 12-character prefix suitable for display.
func (d Digest) Short() string { return d.String()[:12] }

// Digest returns the node's structural identity. The value is computed once
// and cached; nodes are immutable so later calls return the same bytes.
func (n *Node) Digest() Digest {
	n.digestOnce.Do(func() { n.digest = n.computeDigest() })
	return n.digest
}

func (n *Node) computeDigest() Digest {
	own := sha256.Sum256(n.canonicalProps())
	h := sha256.New()
	for _, in := range n.inputs {
		d := in.digest()
		h.Write(d[:])
	}
	h.Write(own[:])
	var out Digest
	h.Sum(out[:0])
	return out
}

// canonicalProps serializes the node's own properties in a stable byte form:
// positional parameters in declaration order, named parameters sorted by
// key. Values render as JSON so that 10 and "10" stay distinct.
func (n *Node) canonicalProps() []byte {
	var b bytes.Buffer
	b.WriteString(strconv.Itoa(int(n.kind)))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(n.name))
	b.WriteByte('|')
	for _, arg := range n.args {
		b.Write(canonicalValue(arg))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	for _, key := range sortedKeys(n.opts) {
		b.WriteString(strconv.Quote(key))
		b.WriteByte('=')
		b.Write(canonicalValue(n.opts[key]))
		b.WriteByte(',')
	}
	return b.Bytes()
}

func canonicalValue(v any) []byte {
	if data, err := json.Marshal(v); err == nil {
		return data
	}
	return []byte(strconv.Quote(fmt.Sprint(v)))
}

// Equal reports structural equality. Two nodes compare equal when their
// kinds, names, parameters, and full ancestries match, regardless of whether
// they were built from shared objects.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Digest() == other.Digest()
}

// String renders the node as name(p1,p2,key=value): positional parameters in
// declaration order followed by named parameters sorted by key.
func (n *Node) String() string {
	parts := make([]string, 0, len(n.args)+len(n.opts))
	for _, arg := range n.args {
		parts = append(parts, formatValue(arg))
	}
	for _, key := range sortedKeys(n.opts) {
		parts = append(parts, key+"="+formatValue(n.opts[key]))
	}
	return n.name + "(" + strings.Join(parts, ",") + ")"
}

func sortedKeys(opts Options) []string {
	keys := make([]string, 0, len(opts))
	for key := range opts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// formatValue renders a parameter value as it should appear in compiled
// arguments. Strings pass through verbatim; booleans become the 1/0 form
// ffmpeg option parsing accepts; numbers use their shortest exact form.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
