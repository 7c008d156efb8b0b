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

// Command fuzzbatch drives the same random batch of insert entries
// (random keys and values) through smt.BatchApply in two independently shuffled
// permutations and asserts the resulting roots are byte-equal (order
// independence via stable sort before apply).
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/smt-go/smt"
	"github.com/smt-go/smt/storage/memstore"
)

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

func shuffled(entries []smt.BatchEntry) []smt.BatchEntry {
	out := make([]smt.BatchEntry, len(entries))
	copy(out, entries)
	for i := len(out) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			panic(err)
		}
		j := int(jBig.Int64())
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func main() {
	tree, err := smt.New(smt.SHA256(), 0)
	if err != nil {
		panic(err)
	}

	for attempt := 0; ; attempt++ {
		fmt.Println("attempt #", attempt)

		entries := make([]smt.BatchEntry, 2000)
		for i := range entries {
			entries[i] = smt.BatchEntry{Key: randomBytes(32), Value: randomBytes(32)}
		}

		storeA := memstore.New()
		ctx := context.Background()
		resA, err := tree.BatchApply(ctx, storeA, entries, tree.EmptyRoot())
		if err != nil {
			panic(err)
		}

		storeB := memstore.New()
		resB, err := tree.BatchApply(ctx, storeB, shuffled(entries), tree.EmptyRoot())
		if err != nil {
			panic(err)
		}

		if string(resA.NewRoot) != string(resB.NewRoot) {
			panic("differing roots across batch permutations")
		}
	}
}
