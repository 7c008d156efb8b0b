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
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

const (
	proofTagInclusion         byte = 0x00
	proofTagNonInclusionEmpty byte = 0x01
	proofTagNonInclusionLeaf  byte = 0x02
)

// Encode produces the canonical, length-prefixed little-endian wire
// encoding of a proof (spec §4.9, §6.2), identical in style to node and
// metadata encoding.
func (p *Proof) Encode() []byte {
	var tag byte
	switch p.Kind {
	case ProofInclusion:
		tag = proofTagInclusion
	case ProofNonInclusionEmptyPath:
		tag = proofTagNonInclusionEmpty
	case ProofNonInclusionLeafMismatch:
		tag = proofTagNonInclusionLeaf
	}

	idBytes := []byte(p.AlgorithmID)
	buf := []byte{tag}
	var compressedByte byte
	if p.Compressed {
		compressedByte = 1
	}
	buf = append(buf, compressedByte)
	buf = appendU32(buf, uint32(p.Depth))
	buf = appendU32(buf, uint32(len(idBytes)))
	buf = append(buf, idBytes...)
	buf = appendU32(buf, uint32(len(p.KeyHash)))
	buf = append(buf, p.KeyHash...)
	buf = appendU32(buf, uint32(len(p.Value)))
	buf = append(buf, p.Value...)
	buf = appendU32(buf, uint32(len(p.ConflictKeyHash)))
	buf = append(buf, p.ConflictKeyHash...)
	buf = appendU32(buf, uint32(len(p.ConflictValue)))
	buf = append(buf, p.ConflictValue...)

	buf = appendU32(buf, uint32(len(p.Siblings)))
	for _, s := range p.Siblings {
		buf = appendU32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}

	maskBytes := (p.Depth + 7) / 8
	buf = appendU32(buf, uint32(maskBytes))
	if p.Bitmask != nil {
		buf = append(buf, bitmaskToBytes(p.Bitmask, p.Depth)...)
	} else {
		buf = append(buf, make([]byte, maskBytes)...)
	}
	return buf
}

// DecodeProof parses a proof previously produced by Encode.
func DecodeProof(buf []byte) (*Proof, error) {
	if len(buf) < 2 {
		return nil, &CorruptNodeError{Reason: "proof: truncated header"}
	}
	tag := buf[0]
	compressed := buf[1] == 1
	rest := buf[2:]

	depth, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof depth: " + err.Error()}
	}
	idLen, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof: " + err.Error()}
	}
	idBytes, rest, err := readN(rest, int(idLen))
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof algorithm_id: " + err.Error()}
	}
	keyHashLen, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof: " + err.Error()}
	}
	keyHash, rest, err := readN(rest, int(keyHashLen))
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof key_hash: " + err.Error()}
	}
	valueLen, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof: " + err.Error()}
	}
	value, rest, err := readN(rest, int(valueLen))
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof value: " + err.Error()}
	}
	conflictKeyLen, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof: " + err.Error()}
	}
	conflictKey, rest, err := readN(rest, int(conflictKeyLen))
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof conflict_key_hash: " + err.Error()}
	}
	conflictValueLen, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof: " + err.Error()}
	}
	conflictValue, rest, err := readN(rest, int(conflictValueLen))
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof conflict_value: " + err.Error()}
	}

	sibCount, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof: " + err.Error()}
	}
	siblings := make([][]byte, sibCount)
	for i := range siblings {
		var sLen uint32
		sLen, rest, err = readU32(rest)
		if err != nil {
			return nil, &CorruptNodeError{Reason: fmt.Sprintf("proof sibling[%d]: %s", i, err.Error())}
		}
		siblings[i], rest, err = readN(rest, int(sLen))
		if err != nil {
			return nil, &CorruptNodeError{Reason: fmt.Sprintf("proof sibling[%d]: %s", i, err.Error())}
		}
	}

	maskLen, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof: " + err.Error()}
	}
	maskBytes, rest, err := readN(rest, int(maskLen))
	if err != nil {
		return nil, &CorruptNodeError{Reason: "proof bitmask: " + err.Error()}
	}
	if len(rest) != 0 {
		return nil, &CorruptNodeError{Reason: "proof: trailing bytes"}
	}

	var kind ProofKind
	switch tag {
	case proofTagInclusion:
		kind = ProofInclusion
	case proofTagNonInclusionEmpty:
		kind = ProofNonInclusionEmptyPath
	case proofTagNonInclusionLeaf:
		kind = ProofNonInclusionLeafMismatch
	default:
		return nil, &CorruptNodeError{Reason: fmt.Sprintf("proof: unknown tag 0x%02x", tag)}
	}

	p := &Proof{
		Kind:        kind,
		KeyHash:     keyHash,
		Value:       value,
		Depth:       int(depth),
		AlgorithmID: string(idBytes),
		Siblings:    siblings,
		Compressed:  compressed,
	}
	if len(conflictKey) > 0 {
		p.ConflictKeyHash = conflictKey
	}
	if len(conflictValue) > 0 {
		p.ConflictValue = conflictValue
	}
	if compressed {
		p.Bitmask = bitmaskFromBytes(maskBytes, int(depth))
	}
	return p, nil
}

func bitmaskToBytes(bm *bitset.BitSet, depth int) []byte {
	out := make([]byte, (depth+7)/8)
	for v := 0; v < depth; v++ {
		if bm.Test(uint(v)) {
			out[v/8] |= 1 << uint(7-v%8)
		}
	}
	return out
}

func bitmaskFromBytes(buf []byte, depth int) *bitset.BitSet {
	bm := bitset.New(uint(depth))
	for v := 0; v < depth; v++ {
		if (buf[v/8]>>uint(7-v%8))&1 == 1 {
			bm.Set(uint(v))
		}
	}
	return bm
}
