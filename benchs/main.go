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

// Command benchs builds a tree of n existing leaves, then measures
// inserting and persisting a further batch of leaves one at a time
// against smt.Update/smt.Get.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/smt-go/smt"
	"github.com/smt-go/smt/storage/memstore"
)

func main() {
	benchmarkInsertInExisting()
}

func benchmarkInsertInExisting() {
	f, _ := os.Create("cpu.prof")
	g, _ := os.Create("mem.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()
	defer func() { _ = pprof.WriteHeapProfile(g) }()

	// Number of existing leaves in tree.
	n := 100000
	// Leaves to be inserted afterwards.
	toInsert := 10000
	total := n + toInsert

	keys := make([][]byte, n)
	toInsertKeys := make([][]byte, toInsert)
	value := []byte("value")

	tree, err := smt.New(smt.SHA256(), 0)
	if err != nil {
		panic(err)
	}
	ctx := context.Background()

	for round := 0; round < 4; round++ {
		for i := 0; i < total; i++ {
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				panic(err)
			}
			if i < n {
				keys[i] = key
			} else {
				toInsertKeys[i-n] = key
			}
		}
		fmt.Printf("Generated key set %d\n", round)

		for i := 0; i < 5; i++ {
			store := memstore.New()
			root := tree.EmptyRoot()
			for _, k := range keys {
				res, err := tree.Update(ctx, store, k, value, root)
				if err != nil {
					panic(err)
				}
				if err := store.WriteBatch(ctx, res.Nodes); err != nil {
					panic(err)
				}
				root = res.NewRoot
			}

			start := time.Now()
			for _, k := range toInsertKeys {
				res, err := tree.Update(ctx, store, k, value, root)
				if err != nil {
					panic(err)
				}
				if err := store.WriteBatch(ctx, res.Nodes); err != nil {
					panic(err)
				}
				root = res.NewRoot
			}
			elapsed := time.Since(start)
			fmt.Printf("Took %v to insert and persist %d leaves\n", elapsed, toInsert)

			if _, found, err := tree.Get(ctx, store, toInsertKeys[0], root); err != nil || !found {
				panic("expected inserted key to be found")
			}
		}
	}
}
