package splice

import (
	"fmt"
	"strconv"
	"strings"
)

// Args compiles the pipeline reachable from the given terminal streams into
// an ffmpeg argument vector, without the binary name. Structurally
// identical graphs compile to identical vectors regardless of how or in
// what order they were constructed.
func Args(terminals ...Stream) ([]string, error) {
	res, err := Resolve(terminals...)
	if err != nil {
		return nil, err
	}
	return res.Args()
}

// Args renders the resolved graph: input declarations in discovery order,
// one -filter_complex expression when the graph contains filters, output
// declarations with -map references where a stream must be named, then
// global flags in attachment order.
func (r *Resolution) Args() ([]string, error) {
	args := make([]string, 0, 16)
	for _, src := range r.Sources {
		sa, err := sourceArgs(src)
		if err != nil {
			return nil, err
		}
		args = append(args, sa...)
	}
	chain, err := r.FilterChain()
	if err != nil {
		return nil, err
	}
	if chain != "" {
		args = append(args, "-filter_complex", chain)
	}
	for _, sink := range r.Sinks {
		oa, err := r.sinkArgs(sink)
		if err != nil {
			return nil, err
		}
		args = append(args, oa...)
	}
	for _, g := range r.Globals {
		args = append(args, globalArgs(g)...)
	}
	return args, nil
}

// FilterChain renders the graph's filter expression: semicolon-joined
// segments in topological order, each a comma-joined run of fused filters
// between bracketed stream references. Empty when the graph has no filters.
func (r *Resolution) FilterChain() (string, error) {
	segments := make([]string, 0, len(r.Order))
	for _, n := range r.Order {
		if n.kind != KindFilter {
			continue
		}
		if _, fused := r.fusedInto[n]; fused {
			continue
		}
		seg, err := r.segment(n)
		if err != nil {
			return "", err
		}
		segments = append(segments, seg)
	}
	return strings.Join(segments, ";"), nil
}

// segment renders the fused chain ending at tail: the head's input
// references, the comma-joined filter expressions, and the tail's labels.
func (r *Resolution) segment(tail *Node) (string, error) {
	chain := []*Node{}
	for n := tail; n != nil; n = r.fusedFrom[n] {
		chain = append(chain, n)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	head := chain[0]

	var b strings.Builder
	for _, in := range head.inputs {
		ref, err := r.inputRef(in)
		if err != nil {
			return "", err
		}
		b.WriteString("[")
		b.WriteString(ref)
		b.WriteString("]")
	}
	for i, n := range chain {
		if i > 0 {
			b.WriteString(",")
		}
		expr, err := filterExpr(n)
		if err != nil {
			return "", err
		}
		b.WriteString(expr)
	}
	for _, idx := range r.consumedIndexes(tail) {
		b.WriteString("[")
		b.WriteString(r.labels[outputKey{tail, idx}])
		b.WriteString("]")
	}
	return b.String(), nil
}

// inputRef renders the body of a bracketed stream reference: the input
// index (with a stream index under explicit selection) for sources, the
// assigned label for filters.
func (r *Resolution) inputRef(in Stream) (string, error) {
	parent := r.node(in.node)
	switch parent.kind {
	case KindSource:
		idx, ok := r.sourceIndex[parent]
		if !ok {
			return "", fmt.Errorf("source %s not resolved", parent)
		}
		if in.explicit {
			return strconv.Itoa(idx) + ":" + strconv.Itoa(in.index), nil
		}
		return strconv.Itoa(idx), nil
	case KindFilter:
		label, ok := r.labels[outputKey{parent, in.index}]
		if !ok {
			return "", fmt.Errorf("no label assigned for output %d of %s", in.index, parent)
		}
		return label, nil
	default:
		return "", fmt.Errorf("cannot reference %s %s as a filter input", parent.kind, parent)
	}
}

// filterExpr renders one filter as name=p1:p2:key=value, positional
// parameters first, named parameters sorted by key. The = is omitted when
// the filter has no parameters.
func filterExpr(n *Node) (string, error) {
	params := make([]string, 0, len(n.args)+len(n.opts))
	for _, arg := range n.args {
		v, err := escapeValue(arg)
		if err != nil {
			return "", fmt.Errorf("filter %s: %w", n.name, err)
		}
		params = append(params, v)
	}
	for _, key := range sortedKeys(n.opts) {
		v, err := escapeValue(n.opts[key])
		if err != nil {
			return "", fmt.Errorf("filter %s: option %s: %w", n.name, key, err)
		}
		params = append(params, key+"="+v)
	}
	if len(params) == 0 {
		return n.name, nil
	}
	return n.name + "=" + strings.Join(params, ":"), nil
}

// sourceArgs renders one input declaration: -f for a forced format, other
// input flags sorted by name, then -i with the locator. A nil option value
// renders as a bare flag.
func sourceArgs(n *Node) ([]string, error) {
	locator, ok := n.opts["filename"]
	if !ok {
		return nil, fmt.Errorf("input %s: missing filename", n)
	}
	args := make([]string, 0, 4+2*len(n.opts))
	if format, ok := n.opts["format"]; ok {
		args = append(args, "-f", formatValue(format))
	}
	for _, key := range sortedKeys(n.opts) {
		if key == "filename" || key == "format" {
			continue
		}
		args = append(args, "-"+key)
		if v := n.opts[key]; v != nil {
			args = append(args, formatValue(v))
		}
	}
	return append(args, "-i", formatValue(locator)), nil
}

// sinkArgs renders one output declaration. A -map reference appears only
// when the consumed stream must be named: always for filter parents, and
// for source parents only under explicit stream selection, so a plain
// passthrough stays implicit. Output flags render sorted, before the
// destination.
func (r *Resolution) sinkArgs(n *Node) ([]string, error) {
	locator, ok := n.opts["filename"]
	if !ok {
		return nil, fmt.Errorf("output %s: missing filename", n)
	}
	args := make([]string, 0, 6+2*len(n.opts))
	in := n.inputs[0]
	parent := r.node(in.node)
	switch parent.kind {
	case KindFilter:
		label, ok := r.labels[outputKey{parent, in.index}]
		if !ok {
			return nil, fmt.Errorf("no label assigned for output %d of %s", in.index, parent)
		}
		args = append(args, "-map", "["+label+"]")
	case KindSource:
		if in.explicit {
			idx := r.sourceIndex[parent]
			args = append(args, "-map", strconv.Itoa(idx)+":"+strconv.Itoa(in.index))
		}
	}
	if format, ok := n.opts["format"]; ok {
		args = append(args, "-f", formatValue(format))
	}
	for _, key := range sortedKeys(n.opts) {
		if key == "filename" || key == "format" {
			continue
		}
		args = append(args, "-"+key)
		if v := n.opts[key]; v != nil {
			args = append(args, formatValue(v))
		}
	}
	return append(args, formatValue(locator)), nil
}

// globalArgs renders a global node as -name, its positional parameters,
// then named flags sorted by name.
func globalArgs(n *Node) []string {
	args := make([]string, 0, 1+len(n.args)+2*len(n.opts))
	args = append(args, "-"+n.name)
	for _, a := range n.args {
		args = append(args, formatValue(a))
	}
	for _, key := range sortedKeys(n.opts) {
		args = append(args, "-"+key)
		if v := n.opts[key]; v != nil {
			args = append(args, formatValue(v))
		}
	}
	return args
}
