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
	"testing"
)

// TestBatchLastWriteWins is P6: a batch with multiple entries sharing a
// key resolves as if only the highest-rank entry had applied.
func TestBatchLastWriteWins(t *testing.T) {
	tr, err := New(SHA256(), 16)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	store := newMemStore()

	entries := []BatchEntry{
		{Key: []byte("dup"), Value: []byte("first")},
		{Key: []byte("other"), Value: []byte("x")},
		{Key: []byte("dup"), Value: []byte("second")},
		{Key: []byte("dup"), Value: []byte("third")},
	}
	res, err := tr.BatchApply(ctx, store, entries, tr.EmptyRoot())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, res.Nodes); err != nil {
		t.Fatal(err)
	}
	v, found, err := tr.Get(ctx, store, []byte("dup"), res.NewRoot)
	if err != nil || !found || string(v) != "third" {
		t.Fatalf("Get(dup) = (%q, %v, %v), want (\"third\", true, nil)", v, found, err)
	}
}

func TestBatchDeleteThenInsertSameKeyLastWins(t *testing.T) {
	tr, err := New(SHA256(), 16)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	store := newMemStore()

	seed, err := tr.Update(ctx, store, []byte("k"), []byte("seed"), tr.EmptyRoot())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, seed.Nodes); err != nil {
		t.Fatal(err)
	}

	entries := []BatchEntry{
		{Key: []byte("k"), Delete: true},
		{Key: []byte("k"), Value: []byte("revived")},
	}
	res, err := tr.BatchApply(ctx, store, entries, seed.NewRoot)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, res.Nodes); err != nil {
		t.Fatal(err)
	}
	v, found, err := tr.Get(ctx, store, []byte("k"), res.NewRoot)
	if err != nil || !found || string(v) != "revived" {
		t.Fatalf("Get(k) = (%q, %v, %v), want (\"revived\", true, nil)", v, found, err)
	}
}

func TestBatchEmptyEntriesIsNoOp(t *testing.T) {
	tr, err := New(SHA256(), 16)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	store := newMemStore()

	res, err := tr.BatchApply(ctx, store, nil, tr.EmptyRoot())
	if err != nil {
		t.Fatal(err)
	}
	if !bytesEqual(res.NewRoot, tr.EmptyRoot()) {
		t.Fatalf("empty batch changed the root: %x", res.NewRoot)
	}
	if len(res.Nodes) != 0 {
		t.Fatalf("empty batch emitted nodes: %d", len(res.Nodes))
	}
}
