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

	"golang.org/x/sync/errgroup"
)

// ProveManyInclusion generates one inclusion proof per key under a single
// root, fanning reads out across bounded concurrency (spec §5's "hash
// abstraction must be safe to invoke from parallel readers"; this is the
// read-only companion to BatchApply's write-side batching, spec §6.3's
// inclusion_proof generalized over a set). concurrency <= 0 means
// unbounded.
//
// Results preserve input order; a key with no proof (absent) yields a nil
// entry at its index, matching ProveInclusion's single-key (nil, nil)
// convention.
func (t *Tree) ProveManyInclusion(ctx context.Context, store NodeStore, root []byte, keyHashes [][]byte, compress bool, concurrency int) ([]*Proof, error) {
	out := make([]*Proof, len(keyHashes))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, kh := range keyHashes {
		i, kh := i, kh
		g.Go(func() error {
			p, err := t.ProveInclusion(gctx, store, root, kh, compress)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
