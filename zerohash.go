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

// ZeroHashes is the precomputed table Z[0..D] of canonical empty-subtree
// digests (spec §3, §4.3). Z[0] is the hash of an empty leaf; Z[L] is the
// hash of an internal node whose two children are both Z[L-1]. The table
// depends only on (Hasher, Depth) and is byte-identical across
// implementations given the same pair (invariant I2).
type ZeroHashes struct {
	hasher Hasher
	depth  int
	table  [][]byte // table[L] = Z[L], L in [0, depth]
}

// NewZeroHashes builds Z[0..depth] for the given hasher.
func NewZeroHashes(h Hasher, depth int) *ZeroHashes {
	table := make([][]byte, depth+1)
	table[0] = h.Sum([]byte{domainLeaf})
	for l := 1; l <= depth; l++ {
		table[l] = hashInternalBytes(h, table[l-1], table[l-1])
	}
	return &ZeroHashes{hasher: h, depth: depth, table: table}
}

// At returns a defensive copy of Z[level].
func (z *ZeroHashes) At(level int) []byte {
	out := make([]byte, len(z.table[level]))
	copy(out, z.table[level])
	return out
}

// Equal reports whether the byte slice matches Z[level] without copying.
func (z *ZeroHashes) Equal(level int, hash []byte) bool {
	return bytesEqual(z.table[level], hash)
}

// Depth returns the configured depth the table was built for.
func (z *ZeroHashes) Depth() int { return z.depth }

// Verify recomputes the table from scratch with hasher h and checks it is
// byte-identical to z, catching corruption after deserialization.
func (z *ZeroHashes) Verify(h Hasher) error {
	recomputed := NewZeroHashes(h, z.depth)
	for l := 0; l <= z.depth; l++ {
		if !bytesEqual(recomputed.table[l], z.table[l]) {
			return &IntegrityError{Expected: recomputed.table[l], Actual: z.table[l]}
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
