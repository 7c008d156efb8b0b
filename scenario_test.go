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
	"encoding/hex"
	"testing"
)

// TestScenarioEmptyTreeRootBytes is S1: with D=8, Z[0] must equal the
// literal SHA-256 digest of a single 0x00 byte.
func TestScenarioEmptyTreeRootBytes(t *testing.T) {
	tr, err := New(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	z0 := tr.zero.At(0)
	want, _ := hex.DecodeString("6e340b9cffb37a989ca544e6bb780a2c78901d3fb33738768511a30617afa01d")
	if !bytesEqual(z0, want) {
		t.Fatalf("Z[0] = %x, want %x", z0, want)
	}
}

type memStore struct {
	nodes map[string]NodeBlob
}

func newMemStore() *memStore { return &memStore{nodes: make(map[string]NodeBlob)} }

func (s *memStore) Get(ctx context.Context, hash []byte) (*NodeBlob, bool, error) {
	b, ok := s.nodes[string(hash)]
	if !ok {
		return nil, false, nil
	}
	return &b, true, nil
}

func (s *memStore) WriteBatch(ctx context.Context, blobs []NodeBlob) error {
	for _, b := range blobs {
		s.nodes[string(b.Hash)] = b
	}
	return nil
}

// TestScenarioSingleInsertThenGet is S2.
func TestScenarioSingleInsertThenGet(t *testing.T) {
	tr, err := New(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	store := newMemStore()
	ctx := context.Background()

	res, err := tr.Update(ctx, store, []byte("test"), []byte("value"), tr.EmptyRoot())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, res.Nodes); err != nil {
		t.Fatal(err)
	}

	v, found, err := tr.Get(ctx, store, []byte("test"), res.NewRoot)
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(v) != "value" {
		t.Fatalf("Get(test) = (%q, %v), want (\"value\", true)", v, found)
	}

	_, found, err = tr.Get(ctx, store, []byte("other"), res.NewRoot)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("Get(other) unexpectedly found")
	}
}

// TestScenarioInsertThenDeleteReturnsEmpty is S3.
func TestScenarioInsertThenDeleteReturnsEmpty(t *testing.T) {
	tr, err := New(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	store := newMemStore()
	ctx := context.Background()

	res, err := tr.Update(ctx, store, []byte("temporary"), []byte("will_be_deleted"), tr.EmptyRoot())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, res.Nodes); err != nil {
		t.Fatal(err)
	}

	delRes, err := tr.Delete(ctx, store, []byte("temporary"), res.NewRoot)
	if err != nil {
		t.Fatal(err)
	}
	if !bytesEqual(delRes.NewRoot, tr.EmptyRoot()) {
		t.Fatalf("root after delete = %x, want empty root %x", delRes.NewRoot, tr.EmptyRoot())
	}
}

// TestScenarioBatchOrderIndependence is S4.
func TestScenarioBatchOrderIndependence(t *testing.T) {
	tr, err := New(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	base := []BatchEntry{
		{Key: []byte("alice"), Value: []byte("100")},
		{Key: []byte("bob"), Value: []byte("200")},
		{Key: []byte("charlie"), Value: []byte("300")},
	}
	perms := [][]BatchEntry{
		{base[0], base[1], base[2]},
		{base[2], base[0], base[1]},
		{base[1], base[2], base[0]},
	}

	var roots [][]byte
	for _, p := range perms {
		store := newMemStore()
		res, err := tr.BatchApply(ctx, store, p, tr.EmptyRoot())
		if err != nil {
			t.Fatal(err)
		}
		roots = append(roots, res.NewRoot)
	}
	for i := 1; i < len(roots); i++ {
		if !bytesEqual(roots[0], roots[i]) {
			t.Fatalf("permutation %d produced a different root: %x != %x", i, roots[i], roots[0])
		}
	}
}

// TestScenarioExtensionChainCollision is S5: two keys whose SHA-256
// outputs both begin with 0xA1 and diverge at bit 8 (D=8).
func TestScenarioExtensionChainCollision(t *testing.T) {
	tr, err := New(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	store := newMemStore()

	k1, k2 := findPrefixCollision(t, tr, 0xA1)

	res, err := tr.Update(ctx, store, k1, []byte("v1"), tr.EmptyRoot())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, res.Nodes); err != nil {
		t.Fatal(err)
	}
	res2, err := tr.Update(ctx, store, k2, []byte("v2"), res.NewRoot)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, res2.Nodes); err != nil {
		t.Fatal(err)
	}

	v1, found, err := tr.Get(ctx, store, k1, res2.NewRoot)
	if err != nil || !found || string(v1) != "v1" {
		t.Fatalf("Get(k1) = (%q, %v, %v)", v1, found, err)
	}
	v2, found, err := tr.Get(ctx, store, k2, res2.NewRoot)
	if err != nil || !found || string(v2) != "v2" {
		t.Fatalf("Get(k2) = (%q, %v, %v)", v2, found, err)
	}

	p1, err := tr.InclusionProof(ctx, store, k1, res2.NewRoot, false)
	if err != nil || p1 == nil || !tr.VerifyInclusion(res2.NewRoot, p1) {
		t.Fatalf("inclusion proof for k1 failed to verify: %v", err)
	}
	p2, err := tr.InclusionProof(ctx, store, k2, res2.NewRoot, false)
	if err != nil || p2 == nil || !tr.VerifyInclusion(res2.NewRoot, p2) {
		t.Fatalf("inclusion proof for k2 failed to verify: %v", err)
	}
}

// TestScenarioProofTamperRejection is S6.
func TestScenarioProofTamperRejection(t *testing.T) {
	tr, err := New(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	store := newMemStore()

	res, err := tr.Update(ctx, store, []byte("k"), []byte("v"), tr.EmptyRoot())
	if err != nil {
		t.Fatal(err)
	}
	if err := store.WriteBatch(ctx, res.Nodes); err != nil {
		t.Fatal(err)
	}

	p, err := tr.InclusionProof(ctx, store, []byte("k"), res.NewRoot, false)
	if err != nil || p == nil {
		t.Fatalf("expected a proof, got %v, %v", p, err)
	}
	if !tr.VerifyInclusion(res.NewRoot, p) {
		t.Fatal("untampered proof failed to verify")
	}
	if len(p.Siblings) == 0 {
		t.Fatal("expected at least one sibling")
	}
	p.Siblings[0] = flipFirstBit(p.Siblings[0])
	if tr.VerifyInclusion(res.NewRoot, p) {
		t.Fatal("tampered proof unexpectedly verified")
	}
}

func flipFirstBit(b []byte) []byte {
	out := cloneBytes(b)
	out[0] ^= 0x01
	return out
}

// findPrefixCollision searches for two distinct keys whose SHA-256 hash
// both start with prefixByte in the first 8 bits and diverge at bit 8 (the
// first bit past the configured depth), the exact construction S5
// requires.
func findPrefixCollision(t *testing.T, tr *Tree, prefixByte byte) (k1, k2 []byte) {
	t.Helper()
	var found [][]byte
	for i := 0; i < 200_000 && len(found) < 2; i++ {
		key := []byte{byte(i), byte(i >> 8), byte(i >> 16), 0xFF}
		kh := tr.HashKey(key)
		if kh[0] == prefixByte {
			found = append(found, key)
		}
	}
	if len(found) < 2 {
		t.Skip("could not locate a natural prefix collision within search budget")
	}
	return found[0], found[1]
}
