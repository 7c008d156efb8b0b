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

// Package badgerstore implements smt.NodeStore on top of a *badger.DB,
// wiring github.com/dgraph-io/badger/v2 — a dependency the retrieved pack
// already carries for exactly this role (octopus-network/trie-go persists
// trie nodes through badger via ChainSafe/chaindb). WriteBatch commits
// every blob inside a single badger transaction, satisfying the
// all-or-nothing recommendation of spec §4.6.
package badgerstore

import (
	"context"

	"github.com/dgraph-io/badger/v2"
	"github.com/smt-go/smt"
)

// Store adapts a *badger.DB to smt.NodeStore. Node hashes are used
// verbatim as badger keys; values are the node's canonical encoding.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database at dir with logging
// disabled so the store stays quiet by default.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Get implements smt.NodeStore.
func (s *Store) Get(ctx context.Context, hash []byte) (*smt.NodeBlob, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hash)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &smt.NodeBlob{Hash: cloneBytes(hash), SerializedNode: value}, true, nil
}

// WriteBatch implements smt.NodeStore: all blobs commit inside one badger
// transaction, so a reader never observes a partial batch.
func (s *Store) WriteBatch(ctx context.Context, blobs []smt.NodeBlob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, b := range blobs {
			if err := txn.SetEntry(badger.NewEntry(b.Hash, b.SerializedNode)); err != nil {
				return err
			}
		}
		return nil
	})
}

// NodeExists implements smt.NodeExister without copying the value out.
func (s *Store) NodeExists(ctx context.Context, hash []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(hash)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
