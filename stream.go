package splice

import (
	"crypto/sha256"
	"encoding/binary"
)

// Stream references one output of a node. Streams are small values: copy
// them freely and share them across pipelines. The zero Stream is invalid
// and rejected when attached to a consumer.
type Stream struct {
	node     *Node
	index    int
	explicit bool
	err      error
}

// Node returns the producing node, or nil for an invalid stream.
func (s Stream) Node() *Node { return s.node }

// Index returns the selected output index. It is zero unless the stream was
// produced by At.
func (s Stream) Index() int { return s.index }

// Explicit reports whether the output index was selected with At. Explicit
// selection changes how the stream is referenced in compiled arguments, so
// it is part of the stream's identity.
func (s Stream) Explicit() bool { return s.explicit }

// Err returns the first construction error carried by this chain. Fluent
// helpers propagate errors forward instead of panicking, so a pipeline can
// be written as one expression; Resolve and Args surface the carried error,
// or call Err directly after building.
func (s Stream) Err() error { return s.err }

// At selects a specific output of the producing node: a container stream
// index on a source, or an output pad on a multi-output filter. The
// selection is validated when the stream is attached to a consumer.
func (s Stream) At(index int) Stream {
	if s.err != nil {
		return s
	}
	return Stream{node: s.node, index: index, explicit: true}
}

// digest derives the stream's identity from its producer plus the selected
// output. Distinct outputs of one node are distinct parents, and explicit
// selection is distinct from the implicit default because the two compile
// differently.
func (s Stream) digest() Digest {
	d := s.node.Digest()
	h := sha256.New()
	h.Write(d[:])
	marker := byte(0)
	if s.explicit {
		marker = 1
	}
	h.Write([]byte{marker})
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(s.index))
	h.Write(idx[:])
	var out Digest
	h.Sum(out[:0])
	return out
}
