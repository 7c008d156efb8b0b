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

// Package memstore implements smt.NodeStore over a plain in-process map
// of node hash to smt.NodeBlob, guarded for concurrent readers.
package memstore

import (
	"context"
	"sync"

	"github.com/smt-go/smt"
)

// Store is a sync.RWMutex-guarded map[string]smt.NodeBlob, safe for the
// single-writer/multi-reader contract of spec §5.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]smt.NodeBlob
}

// New returns an empty Store.
func New() *Store {
	return &Store{nodes: make(map[string]smt.NodeBlob)}
}

// Get implements smt.NodeStore.
func (s *Store) Get(ctx context.Context, hash []byte) (*smt.NodeBlob, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.nodes[string(hash)]
	if !ok {
		return nil, false, nil
	}
	out := blob
	return &out, true, nil
}

// WriteBatch implements smt.NodeStore: every blob becomes visible to Get
// atomically with respect to other WriteBatch calls.
func (s *Store) WriteBatch(ctx context.Context, blobs []smt.NodeBlob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range blobs {
		s.nodes[string(b.Hash)] = b
	}
	return nil
}

// NodeExists implements smt.NodeExister.
func (s *Store) NodeExists(ctx context.Context, hash []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[string(hash)]
	return ok, nil
}

// Len reports the number of distinct node hashes currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
