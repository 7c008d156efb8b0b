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
)

// UpdateResult is the outcome of a single write operation (spec §3): the
// new root hash and the ordered list of node blobs the caller must
// persist. applyOne itself never writes to store; the caller is
// responsible for persisting Nodes before resolving the new root against
// it. BatchApply is the one exception: it writes each entry's Nodes to
// store immediately, since a later entry in the same batch must resolve
// nodes an earlier entry just produced.
type UpdateResult struct {
	NewRoot []byte
	Nodes   []NodeBlob
}

// errKeyAbsent signals, internally only, that a delete targeted a key not
// present in the tree. It never escapes applyOne: the caller sees an
// unchanged root and no new nodes, per spec §4.7 "no error if the key is
// absent".
var errKeyAbsent = fmt.Errorf("smt: internal: key absent")

func getNodeChecked(ctx context.Context, store NodeStore, hash []byte, hasher Hasher) (*Node, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, ErrCancelled
	}
	blob, found, err := store.Get(ctx, hash)
	if err != nil {
		return nil, false, &StorageError{Op: "get", Err: err}
	}
	if !found {
		return nil, false, nil
	}
	node, err := DecodeNode(blob.SerializedNode, hasher)
	if err != nil {
		return nil, false, err
	}
	return node, true, nil
}

func blobFor(n *Node) NodeBlob {
	return NodeBlob{Hash: n.Hash(), SerializedNode: n.Encode()}
}

// applyOne runs the two-phase write algorithm of spec §4.7 for a single
// key: insert/update when slot is a leaf node, delete when slot is nil
// (meaning "place Z[0]").
func (t *Tree) applyOne(ctx context.Context, store NodeStore, root []byte, keyHash []byte, slot *Node) (*UpdateResult, error) {
	if len(root) != t.hasher.Size() {
		return nil, fmt.Errorf("%w: root must be %d bytes, got %d", ErrInvalidInput, t.hasher.Size(), len(root))
	}
	isDelete := slot == nil
	var slotValue []byte
	var emit []NodeBlob
	if isDelete {
		slotValue = t.zero.At(0)
	} else {
		slotValue = slot.Hash()
		// The new leaf itself must be persisted: every branch below only
		// ever propagates its hash upward, never its encoding.
		emit = append(emit, blobFor(slot))
	}
	maxBits := 8 * t.hasher.Size()
	depth := t.depth

	siblings := make([][]byte, depth)
	var slotHash []byte

	current := root
	resolved := false

	for i := 0; i < depth && !resolved; i++ {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		if t.zero.Equal(depth-i, current) {
			if isDelete {
				return &UpdateResult{NewRoot: root}, nil
			}
			fillZeroSiblings(siblings, i, depth, t.zero)
			slotHash = slotValue
			resolved = true
			break
		}
		node, found, err := getNodeChecked(ctx, store, current, t.hasher)
		if err != nil {
			return nil, err
		}
		if !found {
			if isDelete {
				return &UpdateResult{NewRoot: root}, nil
			}
			fillZeroSiblings(siblings, i, depth, t.zero)
			slotHash = slotValue
			resolved = true
			break
		}
		switch node.Kind {
		case KindInternal:
			if bitAtByte(keyHash, i) {
				siblings[i] = node.Left
				current = node.Right
			} else {
				siblings[i] = node.Right
				current = node.Left
			}
			continue
		case KindLeaf:
			if bytesEqual(node.KeyHash, keyHash) {
				fillZeroSiblings(siblings, i, depth, t.zero)
				slotHash = slotValue
				resolved = true
				break
			}
			if isDelete {
				return &UpdateResult{NewRoot: root}, nil
			}
			k := firstDivergence(node.KeyHash, keyHash, i, maxBits)
			if k < 0 {
				return nil, ErrDuplicateKey
			}
			if k < depth {
				for j := i; j < depth; j++ {
					if j == k {
						siblings[j] = node.Hash()
					} else {
						siblings[j] = t.zero.At(depth - 1 - j)
					}
				}
				slotHash = slotValue
			} else {
				chainRoot := t.buildExtensionChain(slot, node, keyHash, node.KeyHash, k, depth, &emit)
				fillZeroSiblings(siblings, i, depth, t.zero)
				slotHash = chainRoot
			}
			resolved = true
		case KindEmpty:
			if isDelete {
				return &UpdateResult{NewRoot: root}, nil
			}
			fillZeroSiblings(siblings, i, depth, t.zero)
			slotHash = slotValue
			resolved = true
		default:
			return nil, fmt.Errorf("%w: unknown node kind", ErrCorruptNode)
		}
	}

	if !resolved && t.zero.Equal(0, current) {
		// Every configured level was internal and the slot at depth D
		// itself is still the canonical empty leaf (never persisted as a
		// blob, per NewEmptyNode's doc comment): an ordinary insert into
		// an empty sibling, not an extension chain.
		if isDelete {
			return &UpdateResult{NewRoot: root}, nil
		}
		slotHash = slotValue
		resolved = true
	}

	if !resolved {
		// Every configured level was internal and the slot at depth D is
		// not the canonical empty leaf: descend into what must already be
		// an extension chain (or this is a contradiction in a
		// well-formed tree).
		res, err := t.writeInExtension(ctx, store, keyHash, slot, isDelete, current, depth, maxBits, &emit)
		if err == errKeyAbsent {
			return &UpdateResult{NewRoot: root}, nil
		}
		if err != nil {
			return nil, err
		}
		slotHash = res.hash
	}

	newRoot := slotHash
	for level := depth - 1; level >= 0; level-- {
		var left, right []byte
		if bitAtByte(keyHash, level) {
			left, right = siblings[level], newRoot
		} else {
			left, right = newRoot, siblings[level]
		}
		n := NewInternalNode(t.hasher, left, right)
		emit = append(emit, blobFor(n))
		newRoot = n.Hash()
	}

	return &UpdateResult{NewRoot: newRoot, Nodes: emit}, nil
}

func fillZeroSiblings(siblings [][]byte, from, depth int, z *ZeroHashes) {
	for j := from; j < depth; j++ {
		siblings[j] = z.At(depth - 1 - j)
	}
}

// buildExtensionChain builds the straight-line internal-node chain that
// separates two leaves whose key-hashes share the first D bits (spec
// §4.7 "Extension chain"). k is the first bit index (k >= D) at which the
// two full key-hashes diverge. Returns the hash of the level-D node, the
// chain's top.
func (t *Tree) buildExtensionChain(newLeaf, existingLeaf *Node, newKeyHash, existingKeyHash []byte, k, depth int, emit *[]NodeBlob) []byte {
	_ = existingKeyHash
	var left, right []byte
	if bitAtByte(newKeyHash, k) {
		left, right = existingLeaf.Hash(), newLeaf.Hash()
	} else {
		left, right = newLeaf.Hash(), existingLeaf.Hash()
	}
	node := NewInternalNode(t.hasher, left, right)
	*emit = append(*emit, blobFor(node))
	current := node.Hash()

	z0 := t.zero.At(0)
	for level := k - 1; level >= depth; level-- {
		var l, r []byte
		if bitAtByte(newKeyHash, level) {
			l, r = z0, current
		} else {
			l, r = current, z0
		}
		n := NewInternalNode(t.hasher, l, r)
		*emit = append(*emit, blobFor(n))
		current = n.Hash()
	}
	return current
}

// extResult is the outcome of writeInExtension: hash is the value to use
// in place of the subtree rooted at the call's entry point; bareLeaf
// marks hash as an un-wrapped leaf digest that a delete-triggered
// collapse may continue hoisting past the caller.
type extResult struct {
	hash     []byte
	bareLeaf bool
}

// writeInExtension descends below configured depth D along newKeyHash's
// bits with no zero-hash shortcuts (spec §4.7, "three sub-cases"):
// update inside extension, collision inside extension, and (defensively)
// an impossible empty slot. On delete, it collapses chain segments that
// become a single surviving leaf back to a bare leaf hash so that the
// enclosing Phase B ascent reproduces the exact pre-insert root (needed
// for P4, insert-then-delete identity).
func (t *Tree) writeInExtension(ctx context.Context, store NodeStore, newKeyHash []byte, slot *Node, isDelete bool, currentHash []byte, level, maxBits int, emit *[]NodeBlob) (extResult, error) {
	if ctx.Err() != nil {
		return extResult{}, ErrCancelled
	}
	node, found, err := getNodeChecked(ctx, store, currentHash, t.hasher)
	if err != nil {
		return extResult{}, err
	}
	if !found {
		if isDelete {
			return extResult{}, errKeyAbsent
		}
		// A genuinely missing node below D is not a canonical empty
		// subtree (there is no zero-hash table entry past D): this is
		// the "empty slot inside extension" case, which a well-formed
		// tree never produces.
		return extResult{}, ErrEmptySlotDeep
	}

	switch node.Kind {
	case KindLeaf:
		if bytesEqual(node.KeyHash, newKeyHash) {
			if isDelete {
				return extResult{hash: t.zero.At(0), bareLeaf: false}, nil
			}
			return extResult{hash: slot.Hash(), bareLeaf: true}, nil
		}
		if isDelete {
			return extResult{}, errKeyAbsent
		}
		k := firstDivergence(node.KeyHash, newKeyHash, level, maxBits)
		if k < 0 {
			return extResult{}, ErrDuplicateKey
		}
		chainRoot := t.buildExtensionChain(slot, node, newKeyHash, node.KeyHash, k, level, emit)
		return extResult{hash: chainRoot, bareLeaf: false}, nil

	case KindInternal:
		var childHash, siblingHash []byte
		goRight := bitAtByte(newKeyHash, level)
		if goRight {
			childHash, siblingHash = node.Right, node.Left
		} else {
			childHash, siblingHash = node.Left, node.Right
		}
		childRes, err := t.writeInExtension(ctx, store, newKeyHash, slot, isDelete, childHash, level+1, maxBits, emit)
		if err != nil {
			return extResult{}, err
		}

		if isDelete {
			z0 := t.zero.At(0)
			if bytesEqual(childRes.hash, z0) {
				sibNode, sibFound, err := getNodeChecked(ctx, store, siblingHash, t.hasher)
				if err != nil {
					return extResult{}, err
				}
				if sibFound && sibNode.Kind == KindLeaf {
					return extResult{hash: siblingHash, bareLeaf: true}, nil
				}
			} else if bytesEqual(siblingHash, z0) && childRes.bareLeaf {
				return extResult{hash: childRes.hash, bareLeaf: true}, nil
			}
		}

		var left, right []byte
		if goRight {
			left, right = siblingHash, childRes.hash
		} else {
			left, right = childRes.hash, siblingHash
		}
		n := NewInternalNode(t.hasher, left, right)
		*emit = append(*emit, blobFor(n))
		return extResult{hash: n.Hash(), bareLeaf: false}, nil

	default:
		return extResult{}, fmt.Errorf("%w: unexpected node kind below configured depth", ErrCorruptNode)
	}
}
