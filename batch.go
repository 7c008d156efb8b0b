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
	"bytes"
	"context"
	"fmt"
	"sort"
)

// BatchEntry is one write within a BatchApply call: Delete is true to
// remove Key, otherwise Value is installed.
type BatchEntry struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// BatchApply applies entries to root, serialized internally by
// key-hash sort order (spec §4.7, §5): for ties sharing a key, the
// entry with the highest key-hash sort rank wins (P6); resulting root is
// independent of input ordering for a conflict-free batch (P5).
func (t *Tree) BatchApply(ctx context.Context, store NodeStore, entries []BatchEntry, root []byte) (*UpdateResult, error) {
	if len(entries) == 0 {
		return &UpdateResult{NewRoot: cloneBytes(root)}, nil
	}

	type keyed struct {
		keyHash []byte
		entry   BatchEntry
		rank    int
	}
	keyedEntries := make([]keyed, len(entries))
	for i, e := range entries {
		if err := t.validateKeyValue(e.Key, e.Value, !e.Delete); err != nil {
			return nil, err
		}
		keyedEntries[i] = keyed{keyHash: t.HashKey(e.Key), entry: e, rank: i}
	}

	sort.SliceStable(keyedEntries, func(i, j int) bool {
		c := bytes.Compare(keyedEntries[i].keyHash, keyedEntries[j].keyHash)
		if c != 0 {
			return c < 0
		}
		return keyedEntries[i].rank < keyedEntries[j].rank
	})

	// Last-write-wins per distinct key-hash: keep only the
	// highest-rank entry within each run of equal key-hashes.
	deduped := keyedEntries[:0:0]
	for i := 0; i < len(keyedEntries); {
		j := i
		best := keyedEntries[i]
		for j < len(keyedEntries) && bytesEqual(keyedEntries[j].keyHash, keyedEntries[i].keyHash) {
			if keyedEntries[j].rank > best.rank {
				best = keyedEntries[j]
			}
			j++
		}
		deduped = append(deduped, best)
		i = j
	}

	current := root
	var allNodes []NodeBlob
	for _, k := range deduped {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		var res *UpdateResult
		var err error
		if k.entry.Delete {
			res, err = t.applyOne(ctx, store, current, k.keyHash, nil)
		} else {
			leaf := NewLeafNode(t.hasher, k.keyHash, k.entry.Value, k.entry.Key, false)
			res, err = t.applyOne(ctx, store, current, k.keyHash, leaf)
		}
		if err != nil {
			return nil, fmt.Errorf("batch entry for key-hash %x: %w", k.keyHash, err)
		}
		current = res.NewRoot
		allNodes = append(allNodes, res.Nodes...)
		if err := store.WriteBatch(ctx, res.Nodes); err != nil {
			return nil, &StorageError{Op: "write_batch", Err: err}
		}
	}

	return &UpdateResult{NewRoot: current, Nodes: allNodes}, nil
}
