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

// Get resolves key_hash against root (spec §4.8): a canonical zero-hash
// table entry short-circuits any still-empty subtree above depth D;
// below D, traversal is unrestricted since no table entry exists there.
// A missing storage entry is tolerated and treated as an empty subtree
// (spec §4.7 "Failure semantics"), never as an error.
func (t *Tree) getByHash(ctx context.Context, store NodeStore, root, keyHash []byte) (value []byte, found bool, err error) {
	if len(root) != t.hasher.Size() {
		return nil, false, fmt.Errorf("%w: root must be %d bytes, got %d", ErrInvalidInput, t.hasher.Size(), len(root))
	}
	maxBits := 8 * t.hasher.Size()
	current := root

	for level := 0; level < t.depth; level++ {
		if ctx.Err() != nil {
			return nil, false, ErrCancelled
		}
		if t.zero.Equal(t.depth-level, current) {
			return nil, false, nil
		}
		node, ok, err := getNodeChecked(ctx, store, current, t.hasher)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
		switch node.Kind {
		case KindInternal:
			if bitAtByte(keyHash, level) {
				current = node.Right
			} else {
				current = node.Left
			}
		case KindLeaf:
			if bytesEqual(node.KeyHash, keyHash) {
				return cloneBytes(node.Value), true, nil
			}
			return nil, false, nil
		case KindEmpty:
			return nil, false, nil
		default:
			return nil, false, fmt.Errorf("%w: unknown node kind", ErrCorruptNode)
		}
	}

	// Below depth D: unrestricted traversal along an extension chain, no
	// zero-hash shortcuts available, except at the very first step (level
	// == t.depth) where the canonical empty leaf Z[0] is still a possible,
	// never-persisted value for an ordinary key absent at that slot.
	for level := t.depth; level < maxBits; level++ {
		if ctx.Err() != nil {
			return nil, false, ErrCancelled
		}
		if level == t.depth && t.zero.Equal(0, current) {
			return nil, false, nil
		}
		node, ok, err := getNodeChecked(ctx, store, current, t.hasher)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			if level == t.depth {
				return nil, false, nil
			}
			return nil, false, ErrEmptySlotDeep
		}
		switch node.Kind {
		case KindInternal:
			if bitAtByte(keyHash, level) {
				current = node.Right
			} else {
				current = node.Left
			}
		case KindLeaf:
			if bytesEqual(node.KeyHash, keyHash) {
				return cloneBytes(node.Value), true, nil
			}
			return nil, false, nil
		default:
			return nil, false, fmt.Errorf("%w: unexpected node kind below configured depth", ErrCorruptNode)
		}
	}
	return nil, false, fmt.Errorf("%w: extension chain exceeded key-hash width", ErrCorruptNode)
}
