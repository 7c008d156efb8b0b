// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package smt

import (
	"context"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ProofKind distinguishes the inclusion proof from the two non-inclusion
// variants of spec §4.9.
type ProofKind int

const (
	ProofInclusion ProofKind = iota
	ProofNonInclusionEmptyPath
	ProofNonInclusionLeafMismatch
)

// Proof is the wire-level proof structure of spec §4.9: a key's claimed
// membership (or non-membership) evidence against a root, with optional
// bitmask compression of canonical-zero siblings.
//
// Siblings are stored in verification order (index 0 = the leaf's
// immediate parent sibling), the reverse of traversal order.
type Proof struct {
	Kind        ProofKind
	KeyHash     []byte
	Value       []byte
	Depth       int // effective verification depth; >= configured D when an extension chain was traversed
	AlgorithmID string

	Siblings   [][]byte // present entries only when Compressed; all Depth entries otherwise
	Bitmask    *bitset.BitSet
	Compressed bool

	// ConflictKeyHash/ConflictValue carry the colliding leaf's data for a
	// LeafMismatch non-inclusion proof.
	ConflictKeyHash []byte
	ConflictValue   []byte
}

type pathOutcome struct {
	// traversal-order siblings (top-down, index 0 = root's sibling)
	siblings [][]byte
	kind     ProofKind
	value    []byte // inclusion
	conflict *Node  // LeafMismatch
}

// collectPath walks root exactly as Get does, recording the sibling at
// every level, and classifies the result for proof construction.
func (t *Tree) collectPath(ctx context.Context, store NodeStore, root, keyHash []byte) (*pathOutcome, error) {
	maxBits := 8 * t.hasher.Size()
	current := root
	var siblings [][]byte

	for level := 0; level < maxBits; level++ {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		if level < t.depth && t.zero.Equal(t.depth-level, current) {
			return &pathOutcome{siblings: siblings, kind: ProofNonInclusionEmptyPath}, nil
		}
		if level == t.depth && t.zero.Equal(0, current) {
			return &pathOutcome{siblings: siblings, kind: ProofNonInclusionEmptyPath}, nil
		}
		node, ok, err := getNodeChecked(ctx, store, current, t.hasher)
		if err != nil {
			return nil, err
		}
		if !ok {
			if level <= t.depth {
				return &pathOutcome{siblings: siblings, kind: ProofNonInclusionEmptyPath}, nil
			}
			return nil, ErrEmptySlotDeep
		}
		switch node.Kind {
		case KindInternal:
			var sibling []byte
			if bitAtByte(keyHash, level) {
				sibling, current = node.Left, node.Right
			} else {
				sibling, current = node.Right, node.Left
			}
			siblings = append(siblings, sibling)
		case KindLeaf:
			if bytesEqual(node.KeyHash, keyHash) {
				return &pathOutcome{siblings: siblings, kind: ProofInclusion, value: node.Value}, nil
			}
			return &pathOutcome{siblings: siblings, kind: ProofNonInclusionLeafMismatch, conflict: node}, nil
		case KindEmpty:
			return &pathOutcome{siblings: siblings, kind: ProofNonInclusionEmptyPath}, nil
		default:
			return nil, fmt.Errorf("%w: unknown node kind", ErrCorruptNode)
		}
	}
	return nil, fmt.Errorf("%w: extension chain exceeded key-hash width", ErrCorruptNode)
}

func reverseSiblings(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

// zeroForTraversalLevel returns the canonical zero-sibling value at
// traversal-order level j: a table entry above configured depth D, and
// the flat leaf-zero Z[0] within an extension chain below it.
func (t *Tree) zeroForTraversalLevel(j int) []byte {
	if j < t.depth {
		return t.zero.At(t.depth - 1 - j)
	}
	return t.zero.At(0)
}

// ProveInclusion builds an inclusion proof for keyHash under root, or
// (nil, nil) if the key is absent (spec §6.3 "optional<Proof>").
func (t *Tree) ProveInclusion(ctx context.Context, store NodeStore, root, keyHash []byte, compress bool) (*Proof, error) {
	outcome, err := t.collectPath(ctx, store, root, keyHash)
	if err != nil {
		return nil, err
	}
	if outcome.kind != ProofInclusion {
		return nil, nil
	}
	p := &Proof{
		Kind:        ProofInclusion,
		KeyHash:     cloneBytes(keyHash),
		Value:       cloneBytes(outcome.value),
		Depth:       len(outcome.siblings),
		AlgorithmID: t.hasher.Name(),
		Siblings:    reverseSiblings(outcome.siblings),
	}
	if compress {
		p = t.Compress(p)
	}
	return p, nil
}

// ProveNonInclusion builds a non-inclusion proof, or (nil, nil) if the
// key is in fact present.
func (t *Tree) ProveNonInclusion(ctx context.Context, store NodeStore, root, keyHash []byte, compress bool) (*Proof, error) {
	outcome, err := t.collectPath(ctx, store, root, keyHash)
	if err != nil {
		return nil, err
	}
	switch outcome.kind {
	case ProofNonInclusionEmptyPath:
		// Pad the levels below the empty subtree with canonical zeros so
		// verification can start from Z[0] at full configured depth.
		siblings := outcome.siblings
		for j := len(siblings); j < t.depth; j++ {
			siblings = append(siblings, t.zeroForTraversalLevel(j))
		}
		p := &Proof{
			Kind:        ProofNonInclusionEmptyPath,
			KeyHash:     cloneBytes(keyHash),
			Depth:       len(siblings),
			AlgorithmID: t.hasher.Name(),
			Siblings:    reverseSiblings(siblings),
		}
		if compress {
			p = t.Compress(p)
		}
		return p, nil
	case ProofNonInclusionLeafMismatch:
		p := &Proof{
			Kind:            ProofNonInclusionLeafMismatch,
			KeyHash:         cloneBytes(keyHash),
			Depth:           len(outcome.siblings),
			AlgorithmID:     t.hasher.Name(),
			Siblings:        reverseSiblings(outcome.siblings),
			ConflictKeyHash: cloneBytes(outcome.conflict.KeyHash),
			ConflictValue:   cloneBytes(outcome.conflict.Value),
		}
		if compress {
			p = t.Compress(p)
		}
		return p, nil
	default:
		return nil, nil
	}
}

// Compress drops canonical-zero siblings from an expanded proof,
// recording their positions in a bitmask (spec §4.9 "Compression").
// Compressing an already-compressed proof returns it unchanged.
func (t *Tree) Compress(p *Proof) *Proof {
	if p == nil || p.Compressed {
		return p
	}
	bm := bitset.New(uint(p.Depth))
	var kept [][]byte
	for v := 0; v < p.Depth; v++ {
		j := p.Depth - 1 - v
		if !bytesEqual(p.Siblings[v], t.zeroForTraversalLevel(j)) {
			bm.Set(uint(v))
			kept = append(kept, p.Siblings[v])
		}
	}
	out := *p
	out.Siblings = kept
	out.Bitmask = bm
	out.Compressed = true
	return &out
}

// Decompress restores the canonical-zero siblings a compressed proof
// omitted, back into full verification-order form.
func (t *Tree) Decompress(p *Proof) *Proof {
	if p == nil || !p.Compressed {
		return p
	}
	full := make([][]byte, p.Depth)
	next := 0
	for v := 0; v < p.Depth; v++ {
		if p.Bitmask != nil && p.Bitmask.Test(uint(v)) {
			full[v] = p.Siblings[next]
			next++
		} else {
			j := p.Depth - 1 - v
			full[v] = t.zeroForTraversalLevel(j)
		}
	}
	out := *p
	out.Siblings = full
	out.Bitmask = nil
	out.Compressed = false
	return &out
}

// siblingAt returns the verification-level v sibling of p, synthesizing
// the canonical zero when compressed and the bitmask flags it absent.
func (t *Tree) siblingAt(p *Proof, v int) []byte {
	if !p.Compressed {
		return p.Siblings[v]
	}
	if p.Bitmask != nil && p.Bitmask.Test(uint(v)) {
		idx := 0
		for i := 0; i < v; i++ {
			if p.Bitmask.Test(uint(i)) {
				idx++
			}
		}
		return p.Siblings[idx]
	}
	j := p.Depth - 1 - v
	return t.zeroForTraversalLevel(j)
}

func (t *Tree) walkUp(p *Proof, leafHash []byte) []byte {
	current := leafHash
	for v := 0; v < p.Depth; v++ {
		traversalLevel := p.Depth - 1 - v
		sibling := t.siblingAt(p, v)
		var left, right []byte
		if bitAtByte(p.KeyHash, traversalLevel) {
			left, right = sibling, current
		} else {
			left, right = current, sibling
		}
		current = hashInternalBytes(t.hasher, left, right)
	}
	return current
}

// VerifyInclusion checks proof against root (spec §4.9 "Verification").
func (t *Tree) VerifyInclusion(root []byte, p *Proof) bool {
	if p == nil || p.Kind != ProofInclusion || p.AlgorithmID != t.hasher.Name() {
		return false
	}
	if p.Depth < t.depth {
		return false
	}
	leafHash := hashLeafBytes(t.hasher, p.KeyHash, p.Value)
	return bytesEqual(t.walkUp(p, leafHash), root)
}

// VerifyNonInclusion checks a non-inclusion proof against root.
func (t *Tree) VerifyNonInclusion(root []byte, p *Proof) bool {
	if p == nil || p.AlgorithmID != t.hasher.Name() || p.Depth < t.depth {
		return false
	}
	switch p.Kind {
	case ProofNonInclusionEmptyPath:
		return bytesEqual(t.walkUp(p, t.zero.At(0)), root)
	case ProofNonInclusionLeafMismatch:
		if len(p.ConflictKeyHash) != len(p.KeyHash) {
			return false
		}
		if firstDivergence(p.ConflictKeyHash, p.KeyHash, 0, t.depth) < 0 {
			// Conflict agrees with the target on every configured bit:
			// the two should have resolved via an extension chain, so
			// this cannot be a valid non-inclusion claim.
			return false
		}
		conflictHash := hashLeafBytes(t.hasher, p.ConflictKeyHash, p.ConflictValue)
		return bytesEqual(t.walkUp(p, conflictHash), root)
	default:
		return false
	}
}
