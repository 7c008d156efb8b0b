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
	"crypto/sha256"
	"crypto/sha512"
)

// Hasher is the fixed-output cryptographic digest the tree commits with.
// Two hashers are "the same" iff their Name and Size agree (spec §4.1);
// implementations must be safe for concurrent use by parallel readers.
type Hasher interface {
	// Name is a stable identifier embedded in Metadata and used to detect
	// a hasher/metadata mismatch on load.
	Name() string
	// Size is the fixed output length in bytes.
	Size() int
	// Sum computes the digest of data. Pure and synchronous: no error
	// return, no retry semantics.
	Sum(data []byte) []byte
}

type sha256Hasher struct{}

// SHA256 is the default Hasher: H(x) = sha256(x).
func SHA256() Hasher { return sha256Hasher{} }

func (sha256Hasher) Name() string { return "sha256" }
func (sha256Hasher) Size() int    { return sha256.Size }
func (sha256Hasher) Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

type sha512Hasher struct{}

// SHA512 is provided so implementations can exercise a hash with an
// output size other than 32 bytes, per spec §3's "1 ≤ D ≤ 8·|H|".
func SHA512() Hasher { return sha512Hasher{} }

func (sha512Hasher) Name() string { return "sha512" }
func (sha512Hasher) Size() int    { return sha512.Size }
func (sha512Hasher) Sum(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:]
}

// sameHasher reports whether two hashers are "the same" per spec §4.1:
// identical name and output size.
func sameHasher(a, b Hasher) bool {
	return a.Name() == b.Name() && a.Size() == b.Size()
}

// Domain separators (spec §3). These are the only two process-wide
// constants the core defines.
const (
	domainLeaf     byte = 0x00
	domainInternal byte = 0x01
)
