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

// findDepthBoundaryPair searches for two keys whose SHA-256 hashes agree on
// bits 0..depth-2 (the first depth-1 bits of byte 0) and diverge at exactly
// bit depth-1 — the last configured bit before Phase B's full-depth rebuild
// always wraps the slot in one more Internal node. depth must be <= 8 so
// the whole window sits inside byte 0.
func findDepthBoundaryPair(t *testing.T, tr *Tree, depth int) (k1, k2 []byte) {
	t.Helper()
	mask := byte(0xFF << (8 - (depth - 1))) // top depth-1 bits of byte 0
	var zeroLSB, oneLSB []byte
	for i := 0; i < 500_000 && (zeroLSB == nil || oneLSB == nil); i++ {
		key := []byte{byte(i), byte(i >> 8), byte(i >> 16), 0x5E}
		kh := tr.HashKey(key)
		if kh[0]&mask != 0 {
			continue
		}
		bit := (kh[0] >> (8 - depth)) & 1
		if bit == 0 && zeroLSB == nil {
			zeroLSB = key
		} else if bit == 1 && oneLSB == nil {
			oneLSB = key
		}
	}
	if zeroLSB == nil || oneLSB == nil {
		t.Skip("could not locate a depth-1 boundary pair within search budget")
	}
	return zeroLSB, oneLSB
}

// TestDepthBoundaryInsertIntoEmptySibling is the regression case for the
// depth-D boundary: two key-hashes agreeing on every bit through depth-2
// and diverging only at bit depth-1. Phase B's full-depth rebuild means the
// second leaf's insertion point is the canonical empty leaf Z[0] sitting
// directly below the last configured-depth Internal node, not an extension
// chain — write, read, and proof must all treat it as an ordinary empty
// slot rather than ErrEmptySlotDeep.
func TestDepthBoundaryInsertIntoEmptySibling(t *testing.T) {
	tr, err := New(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	store := newMemStore()

	key1, key2 := findDepthBoundaryPair(t, tr, 8)

	res1, err := tr.Update(ctx, store, key1, []byte("v1"), tr.EmptyRoot())
	if err != nil {
		t.Fatalf("insert key1: %v", err)
	}
	if err := store.WriteBatch(ctx, res1.Nodes); err != nil {
		t.Fatal(err)
	}

	// key2 is not yet present: Get must report absent, not ErrEmptySlotDeep.
	if _, found, err := tr.Get(ctx, store, key2, res1.NewRoot); err != nil || found {
		t.Fatalf("Get(key2) before insert = (found=%v, err=%v), want (false, nil)", found, err)
	}

	p, err := tr.NonInclusionProof(ctx, store, key2, res1.NewRoot, false)
	if err != nil {
		t.Fatalf("ProveNonInclusion(key2): %v", err)
	}
	if p == nil || p.Kind != ProofNonInclusionEmptyPath {
		t.Fatalf("ProveNonInclusion(key2) = %+v, want a ProofNonInclusionEmptyPath", p)
	}
	if !tr.VerifyNonInclusion(res1.NewRoot, p) {
		t.Fatal("empty-path proof for key2 failed to verify")
	}

	// Inserting key2 must land as an ordinary insert into the empty
	// sibling slot, not misroute through the extension-chain path.
	res2, err := tr.Update(ctx, store, key2, []byte("v2"), res1.NewRoot)
	if err != nil {
		t.Fatalf("insert key2: %v", err)
	}
	if err := store.WriteBatch(ctx, res2.Nodes); err != nil {
		t.Fatal(err)
	}

	v1, found, err := tr.Get(ctx, store, key1, res2.NewRoot)
	if err != nil || !found || string(v1) != "v1" {
		t.Fatalf("Get(key1) after both inserts = (%q, %v, %v), want (\"v1\", true, nil)", v1, found, err)
	}
	v2, found, err := tr.Get(ctx, store, key2, res2.NewRoot)
	if err != nil || !found || string(v2) != "v2" {
		t.Fatalf("Get(key2) after both inserts = (%q, %v, %v), want (\"v2\", true, nil)", v2, found, err)
	}

	p1, err := tr.InclusionProof(ctx, store, key1, res2.NewRoot, false)
	if err != nil || p1 == nil || !tr.VerifyInclusion(res2.NewRoot, p1) {
		t.Fatalf("inclusion proof for key1 failed to verify: %v", err)
	}
	p2, err := tr.InclusionProof(ctx, store, key2, res2.NewRoot, false)
	if err != nil || p2 == nil || !tr.VerifyInclusion(res2.NewRoot, p2) {
		t.Fatalf("inclusion proof for key2 failed to verify: %v", err)
	}

	// Deleting key2 must reproduce the exact pre-insert root (P4).
	delRes, err := tr.Delete(ctx, store, key2, res2.NewRoot)
	if err != nil {
		t.Fatalf("delete key2: %v", err)
	}
	if !bytesEqual(delRes.NewRoot, res1.NewRoot) {
		t.Fatalf("root after delete = %x, want pre-insert root %x", delRes.NewRoot, res1.NewRoot)
	}
}
