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

// Tree is the configured algorithm surface of spec §6.3: a hasher, a
// configured depth D, and the zero-hash table derived from them. It
// carries no storage and no root — every operation takes both
// explicitly, consistent with the single-writer/multi-reader model of
// spec §5.
type Tree struct {
	hasher Hasher
	depth  int
	zero   *ZeroHashes
}

// New constructs a Tree for hasher h at the given depth. depth defaults
// to 8*h.Size() (spec §6.3's "new(hash, depth=8*output_size(hash))")
// when passed 0.
func New(h Hasher, depth int) (*Tree, error) {
	maxBits := 8 * h.Size()
	if depth == 0 {
		depth = maxBits
	}
	if depth < 1 || depth > maxBits {
		return nil, fmt.Errorf("%w: depth must be in [1, %d], got %d", ErrInvalidInput, maxBits, depth)
	}
	return &Tree{hasher: h, depth: depth, zero: NewZeroHashes(h, depth)}, nil
}

// NewFromMetadata reconstructs a Tree from previously deserialized
// Metadata, failing if the supplied hasher does not match the metadata's
// recorded algorithm identity (spec §6.3 "fail if names mismatch").
func NewFromMetadata(h Hasher, md *Metadata) (*Tree, error) {
	if h.Name() != md.AlgorithmID || h.Size() != md.ZeroHashes.hasher.Size() {
		return nil, fmt.Errorf("%w: hasher %q/%d does not match metadata algorithm %q", ErrInvalidInput, h.Name(), h.Size(), md.AlgorithmID)
	}
	if err := md.ZeroHashes.Verify(h); err != nil {
		return nil, err
	}
	return &Tree{hasher: h, depth: md.Depth, zero: NewZeroHashes(h, md.Depth)}, nil
}

// Depth returns the configured depth D.
func (t *Tree) Depth() int { return t.depth }

// Hasher returns the configured hash abstraction.
func (t *Tree) Hasher() Hasher { return t.hasher }

// EmptyRoot returns Z[D], the root of a tree with no entries (spec P1).
func (t *Tree) EmptyRoot() []byte { return t.zero.At(t.depth) }

// HashKey computes key_hash = H(key) (spec §6.3).
func (t *Tree) HashKey(key []byte) []byte { return t.hasher.Sum(key) }

// GetBitPath returns the MSB-first bit sequence of a key's hash, taking
// nBits bits (spec §6.3, §4.2). nBits defaults to the configured depth
// when 0.
func (t *Tree) GetBitPath(key []byte, nBits int) *bitset.BitSet {
	if nBits == 0 {
		nBits = t.depth
	}
	return BitPath(t.HashKey(key), nBits)
}

// CreateEmptyNode returns the conceptual empty-subtree node at level.
func (t *Tree) CreateEmptyNode(level int) *Node { return NewEmptyNode(t.zero, level) }

// CreateLeafNode builds a leaf node for (key, value).
func (t *Tree) CreateLeafNode(key, value []byte, keepOriginal bool) *Node {
	return NewLeafNode(t.hasher, t.HashKey(key), value, key, keepOriginal)
}

// CreateInternalNode combines two child hashes into an internal node.
func (t *Tree) CreateInternalNode(left, right []byte) *Node {
	return NewInternalNode(t.hasher, left, right)
}

func (t *Tree) validateKeyValue(key, value []byte, valueRequired bool) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: key must be non-empty", ErrInvalidInput)
	}
	if valueRequired && len(value) == 0 {
		return fmt.Errorf("%w: value must be non-empty", ErrInvalidInput)
	}
	return nil
}

// Get resolves key under root (spec §4.8, §6.3).
func (t *Tree) Get(ctx context.Context, store NodeStore, key, root []byte) ([]byte, bool, error) {
	if err := t.validateKeyValue(key, nil, false); err != nil {
		return nil, false, err
	}
	return t.getByHash(ctx, store, root, t.HashKey(key))
}

// Update inserts or overwrites (key, value) under root (spec §6.3).
func (t *Tree) Update(ctx context.Context, store NodeStore, key, value, root []byte) (*UpdateResult, error) {
	if err := t.validateKeyValue(key, value, true); err != nil {
		return nil, err
	}
	keyHash := t.HashKey(key)
	leaf := NewLeafNode(t.hasher, keyHash, value, key, false)
	return t.applyOne(ctx, store, root, keyHash, leaf)
}

// Delete removes key under root, a no-op (same root, no new nodes) if
// absent (spec §6.3, §4.7 "no error if the key is absent").
func (t *Tree) Delete(ctx context.Context, store NodeStore, key, root []byte) (*UpdateResult, error) {
	if err := t.validateKeyValue(key, nil, false); err != nil {
		return nil, err
	}
	return t.applyOne(ctx, store, root, t.HashKey(key), nil)
}

// InclusionProof builds an inclusion proof for key (spec §6.3).
func (t *Tree) InclusionProof(ctx context.Context, store NodeStore, key, root []byte, compress bool) (*Proof, error) {
	if err := t.validateKeyValue(key, nil, false); err != nil {
		return nil, err
	}
	return t.ProveInclusion(ctx, store, root, t.HashKey(key), compress)
}

// NonInclusionProof builds a non-inclusion proof for key (spec §6.3).
func (t *Tree) NonInclusionProof(ctx context.Context, store NodeStore, key, root []byte, compress bool) (*Proof, error) {
	if err := t.validateKeyValue(key, nil, false); err != nil {
		return nil, err
	}
	return t.ProveNonInclusion(ctx, store, root, t.HashKey(key), compress)
}
