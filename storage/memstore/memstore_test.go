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

package memstore

import (
	"context"
	"testing"

	"github.com/smt-go/smt"
)

func TestMemstoreGetMissing(t *testing.T) {
	s := New()
	_, found, err := s.Get(context.Background(), []byte("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestMemstoreWriteThenGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	blob := smt.NodeBlob{Hash: []byte("h"), SerializedNode: []byte("payload")}
	if err := s.WriteBatch(ctx, []smt.NodeBlob{blob}); err != nil {
		t.Fatal(err)
	}
	got, found, err := s.Get(ctx, []byte("h"))
	if err != nil || !found {
		t.Fatalf("Get() = (%v, %v, %v)", got, found, err)
	}
	if string(got.SerializedNode) != "payload" {
		t.Fatalf("got %q, want %q", got.SerializedNode, "payload")
	}
	exists, err := s.NodeExists(ctx, []byte("h"))
	if err != nil || !exists {
		t.Fatalf("NodeExists() = (%v, %v)", exists, err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestMemstoreRespectsCancellation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Get(ctx, []byte("h")); err == nil {
		t.Fatal("expected error from a cancelled context")
	}
}
