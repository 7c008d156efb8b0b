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

import "github.com/bits-and-blooms/bitset"

// BitPath returns the MSB-first bit sequence of length nBits drawn from
// buf (spec §4.2): bit i = (buf[i/8] >> (7 - i%8)) & 1. Callers never
// request more than 8*len(buf) bits.
func BitPath(buf []byte, nBits int) *bitset.BitSet {
	bp := bitset.New(uint(nBits))
	for i := 0; i < nBits; i++ {
		byteIdx := i / 8
		shift := uint(7 - i%8)
		if (buf[byteIdx]>>shift)&1 == 1 {
			bp.Set(uint(i))
		}
	}
	return bp
}

// bitAt is a convenience wrapper so call sites read naturally as
// "bit(i)" rather than "bp.Test(uint(i))" at every use.
func bitAt(bp *bitset.BitSet, i int) bool {
	return bp.Test(uint(i))
}

// bitAtByte reads bit i (MSB-first) directly out of a raw key-hash byte
// slice, for the write and read engines, which walk key-hash bits one at
// a time without materializing a BitSet per call.
func bitAtByte(buf []byte, i int) bool {
	byteIdx := i / 8
	shift := uint(7 - i%8)
	return (buf[byteIdx]>>shift)&1 == 1
}

// firstDivergence returns the lowest bit index in [from, maxBits) at
// which a and b differ, MSB-first, or -1 if they agree throughout that
// range. Used by the write engine's extension-chain construction (§4.7)
// to find the bit k >= D where two key-hashes first differ.
func firstDivergence(a, b []byte, from, maxBits int) int {
	for i := from; i < maxBits; i++ {
		byteIdx := i / 8
		shift := uint(7 - i%8)
		ba := (a[byteIdx] >> shift) & 1
		bb := (b[byteIdx] >> shift) & 1
		if ba != bb {
			return i
		}
	}
	return -1
}
