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

import "context"

// NodeBlob is a storage record: a node's hash, its canonical encoding, and
// an optional informational path. The path is never consulted by any
// correctness-critical step (spec §3, §9); adapters may use it for
// indexing.
type NodeBlob struct {
	Hash []byte
	// Path is informational only; nil when the caller has none to offer.
	Path           *Path
	SerializedNode []byte
}

// Path records the bit-path that led to a node, kept around purely for
// adapter-level indexing (spec §9 Open Questions).
type Path struct {
	Bits  []bool
	Depth int
}

// NodeStore is the minimal capability set the core consumes (spec §4.6,
// §6.1). The core never caches across operations and reads only what it
// needs; it requires reads to reflect the most recently committed write
// from any caller.
type NodeStore interface {
	// Get returns the most recently written blob for hash, or (nil,
	// false) if none exists.
	Get(ctx context.Context, hash []byte) (*NodeBlob, bool, error)
	// WriteBatch makes every blob readable by any subsequent Get. Callers
	// should treat a batch as atomic where the backend allows it, but the
	// core does not depend on that for correctness with a single writer.
	WriteBatch(ctx context.Context, blobs []NodeBlob) error
}

// NodeExister is an optional optimization a NodeStore may additionally
// implement (spec §6.1's node_exists).
type NodeExister interface {
	NodeExists(ctx context.Context, hash []byte) (bool, error)
}
