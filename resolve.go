package splice

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
)

// edge records one consumption of a producer's output.
type edge struct {
	consumer *Node
	index    int
	explicit bool
}

type outputKey struct {
	node  *Node
	index int
}

// Resolution is the outcome of walking a graph from its terminal streams: a
// stable topological order, input numbering for sources, chain fusion
// decisions, and a label for every stream boundary the rendered filter
// expression must name. A Resolution is read-only once built and safe for
// concurrent use.
type Resolution struct {
	// Order holds every distinct node reachable from the terminals in
	// depth-first post-order: parents always precede consumers.
	Order []*Node
	// Sources holds source nodes in discovery order; position is the
	// node's input index.
	Sources []*Node
	// Sinks holds sink nodes in discovery order.
	Sinks []*Node
	// Globals holds global nodes in discovery order, which follows their
	// attachment order.
	Globals []*Node

	sourceIndex map[*Node]int
	consumers   map[*Node][]edge
	labels      map[outputKey]string
	fusedInto   map[*Node]*Node
	fusedFrom   map[*Node]*Node
	canonical   map[Digest]*Node
}

// Resolve walks the graph reachable from the given terminal streams,
// collapses structurally identical nodes, and assigns stream labels.
// Terminals must be sinks or globals, in the order their outputs should
// appear in the compiled arguments.
func Resolve(terminals ...Stream) (*Resolution, error) {
	if len(terminals) == 0 {
		return nil, fmt.Errorf("resolve: no terminal streams")
	}
	r := &Resolution{
		sourceIndex: make(map[*Node]int),
		consumers:   make(map[*Node][]edge),
		labels:      make(map[outputKey]string),
		fusedInto:   make(map[*Node]*Node),
		fusedFrom:   make(map[*Node]*Node),
		canonical:   make(map[Digest]*Node),
	}
	for _, t := range terminals {
		if t.err != nil {
			return nil, t.err
		}
		if t.node == nil {
			return nil, fmt.Errorf("resolve: terminal stream has no producer")
		}
		if k := t.node.kind; k != KindSink && k != KindGlobal {
			return nil, fmt.Errorf("resolve: terminal must be an output, not %s %s", k, t.node)
		}
		r.visit(t.node)
	}
	for _, sink := range r.Sinks {
		if !r.reachesSource(sink) {
			return nil, &UnreachableSinkError{Sink: sink.String()}
		}
	}
	if err := r.checkAmbiguity(); err != nil {
		return nil, err
	}
	r.planFusion()
	r.assignLabels()
	return r, nil
}

// visit adds the subgraph rooted at n in depth-first post-order. A node
// whose digest was already discovered collapses onto the first-discovered
// representative, so shared fragments resolve once no matter how many
// object copies reference them.
func (r *Resolution) visit(n *Node) *Node {
	if existing, ok := r.canonical[n.Digest()]; ok {
		return existing
	}
	r.canonical[n.Digest()] = n
	for _, in := range n.inputs {
		parent := r.visit(in.node)
		r.consumers[parent] = append(r.consumers[parent], edge{consumer: n, index: in.index, explicit: in.explicit})
	}
	r.Order = append(r.Order, n)
	switch n.kind {
	case KindSource:
		r.sourceIndex[n] = len(r.Sources)
		r.Sources = append(r.Sources, n)
	case KindSink:
		r.Sinks = append(r.Sinks, n)
	case KindGlobal:
		r.Globals = append(r.Globals, n)
	}
	return n
}

// reachesSource reports whether n's ancestry contains at least one source.
// Zero-input filters such as color are legal graph leaves, but a sink fed
// only by them has nothing to declare as an input.
func (r *Resolution) reachesSource(n *Node) bool {
	stack := []*Node{n}
	seen := make(map[*Node]struct{})
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.kind == KindSource {
			return true
		}
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}
		for _, in := range cur.inputs {
			stack = append(stack, r.node(in.node))
		}
	}
	return false
}

// checkAmbiguity rejects graphs that consume a multi-output filter both
// implicitly and through explicit selection. The implicit read is only
// well-defined while the node acts single-output; mixing the two leaves the
// intended pad unclear.
func (r *Resolution) checkAmbiguity() error {
	for _, n := range r.Order {
		if n.kind != KindFilter || !n.multiOut {
			continue
		}
		var implicit, explicit bool
		for _, e := range r.consumers[n] {
			if e.explicit {
				explicit = true
			} else {
				implicit = true
			}
		}
		if implicit && explicit {
			return &AmbiguousOutputError{Filter: n.name}
		}
	}
	return nil
}

// planFusion decides which filters render inside their consumer's segment.
// A filter fuses forward when its single consumption is implicit and the
// consumer is a single-input filter; the pair renders as one comma-joined
// chain.
func (r *Resolution) planFusion() {
	for _, n := range r.Order {
		if n.kind != KindFilter {
			continue
		}
		edges := r.consumers[n]
		if len(edges) != 1 {
			continue
		}
		e := edges[0]
		if e.explicit || e.consumer.kind != KindFilter || len(e.consumer.inputs) != 1 {
			continue
		}
		r.fusedInto[n] = e.consumer
		r.fusedFrom[e.consumer] = n
	}
}

// assignLabels names every stream boundary the rendered chain must carry:
// each segment tail gets one label per distinct consumed output index, in
// ascending index order, numbered v0, v1, ... across tails in topological
// order.
func (r *Resolution) assignLabels() {
	next := 0
	for _, n := range r.Order {
		if n.kind != KindFilter {
			continue
		}
		if _, fused := r.fusedInto[n]; fused {
			continue
		}
		for _, idx := range r.consumedIndexes(n) {
			r.labels[outputKey{n, idx}] = "v" + strconv.Itoa(next)
			next++
		}
	}
}

// consumedIndexes returns the distinct output indexes read from n in
// ascending order.
func (r *Resolution) consumedIndexes(n *Node) []int {
	seen := make(map[int]struct{})
	idxs := make([]int, 0, len(r.consumers[n]))
	for _, e := range r.consumers[n] {
		if _, ok := seen[e.index]; ok {
			continue
		}
		seen[e.index] = struct{}{}
		idxs = append(idxs, e.index)
	}
	sort.Ints(idxs)
	return idxs
}

// node maps any node onto its canonical representative in this resolution.
func (r *Resolution) node(n *Node) *Node {
	if c, ok := r.canonical[n.Digest()]; ok {
		return c
	}
	return n
}

// Digest returns the structural identity of the whole resolved graph,
// covering every sink and global in attachment order. Two resolutions
// with equal digests compile to the same arguments.
func (r *Resolution) Digest() Digest {
	h := sha256.New()
	for _, sink := range r.Sinks {
		d := sink.Digest()
		h.Write(d[:])
	}
	for _, global := range r.Globals {
		d := global.Digest()
		h.Write(d[:])
	}
	var out Digest
	h.Sum(out[:0])
	return out
}

// SourceIndex returns the input position assigned to a source node.
func (r *Resolution) SourceIndex(n *Node) (int, bool) {
	idx, ok := r.sourceIndex[r.node(n)]
	return idx, ok
}

// Label returns the label assigned to one output of a filter node, when the
// rendered chain names that output.
func (r *Resolution) Label(n *Node, index int) (string, bool) {
	label, ok := r.labels[outputKey{r.node(n), index}]
	return label, ok
}

// Fused reports whether the filter renders inside its consumer's segment
// instead of emitting labels of its own.
func (r *Resolution) Fused(n *Node) bool {
	_, ok := r.fusedInto[r.node(n)]
	return ok
}
