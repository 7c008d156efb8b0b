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
	"encoding/binary"
	"fmt"
)

// Node tags for the canonical, length-prefixed, little-endian codec of
// spec §4.4.
const (
	tagEmpty    byte = 0x00
	tagLeaf     byte = 0x01
	tagInternal byte = 0x02
)

// NodeKind distinguishes the three node variants of spec §3/§4.4. There is
// no inheritance: every node carries its kind and a uniform Hash()
// accessor (spec §9 "Design Notes").
type NodeKind int

const (
	KindEmpty NodeKind = iota
	KindLeaf
	KindInternal
)

// Node is the tagged-variant node model. Exactly one of the kind-specific
// fields is meaningful, selected by Kind.
type Node struct {
	Kind NodeKind

	// Empty
	Level int

	// Leaf
	KeyHash     []byte
	Value       []byte
	OriginalKey []byte // optional, see spec §9 Open Questions

	// Internal
	Left  []byte
	Right []byte

	hash []byte
}

// Hash returns the node's canonical, domain-separated digest. It is
// computed over the node's logical fields, never over its encoded form
// (spec §4.4).
func (n *Node) Hash() []byte {
	return n.hash
}

// NewEmptyNode constructs the conceptual empty-subtree node at level L.
// It is never required to be persisted; adapters may choose to.
func NewEmptyNode(z *ZeroHashes, level int) *Node {
	return &Node{Kind: KindEmpty, Level: level, hash: z.At(level)}
}

// NewLeafNode builds a leaf with node_hash = H(LEAF || key_hash || value).
// keepOriginal controls whether the original key is retained for proof
// carrying (spec §9 Open Questions: serialized but not relied upon by
// verification).
func NewLeafNode(h Hasher, keyHash, value []byte, originalKey []byte, keepOriginal bool) *Node {
	n := &Node{Kind: KindLeaf, KeyHash: cloneBytes(keyHash), Value: cloneBytes(value)}
	if keepOriginal {
		n.OriginalKey = cloneBytes(originalKey)
	}
	n.hash = hashLeafBytes(h, n.KeyHash, n.Value)
	return n
}

// NewInternalNode builds an internal node with
// node_hash = H(INTERNAL || left || right).
func NewInternalNode(h Hasher, left, right []byte) *Node {
	n := &Node{Kind: KindInternal, Left: cloneBytes(left), Right: cloneBytes(right)}
	n.hash = hashInternalBytes(h, n.Left, n.Right)
	return n
}

func hashLeafBytes(h Hasher, keyHash, value []byte) []byte {
	buf := make([]byte, 0, 1+len(keyHash)+len(value))
	buf = append(buf, domainLeaf)
	buf = append(buf, keyHash...)
	buf = append(buf, value...)
	return h.Sum(buf)
}

func hashInternalBytes(h Hasher, left, right []byte) []byte {
	buf := make([]byte, 0, 1+len(left)+len(right))
	buf = append(buf, domainInternal)
	buf = append(buf, left...)
	buf = append(buf, right...)
	return h.Sum(buf)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Encode produces the canonical wire encoding of the node (spec §4.4).
func (n *Node) Encode() []byte {
	switch n.Kind {
	case KindEmpty:
		buf := make([]byte, 0, 1+4+len(n.hash))
		buf = append(buf, tagEmpty)
		buf = appendU32(buf, uint32(n.Level))
		buf = append(buf, n.hash...)
		return buf
	case KindLeaf:
		buf := make([]byte, 0, 1+4+len(n.KeyHash)+4+len(n.Value)+len(n.hash)+4+len(n.OriginalKey))
		buf = append(buf, tagLeaf)
		buf = appendU32(buf, uint32(len(n.KeyHash)))
		buf = append(buf, n.KeyHash...)
		buf = appendU32(buf, uint32(len(n.Value)))
		buf = append(buf, n.Value...)
		buf = append(buf, n.hash...)
		buf = appendU32(buf, uint32(len(n.OriginalKey)))
		buf = append(buf, n.OriginalKey...)
		return buf
	case KindInternal:
		buf := make([]byte, 0, 1+4+len(n.Left)+4+len(n.Right)+len(n.hash))
		buf = append(buf, tagInternal)
		buf = appendU32(buf, uint32(len(n.Left)))
		buf = append(buf, n.Left...)
		buf = appendU32(buf, uint32(len(n.Right)))
		buf = append(buf, n.Right...)
		buf = append(buf, n.hash...)
		return buf
	default:
		panic(fmt.Sprintf("smt: unknown node kind %d", n.Kind))
	}
}

// DecodeNode decodes a node blob previously produced by Encode, validating
// internal length consistency and, for leaf and internal nodes, that the
// declared node_hash matches one recomputed from the decoded fields (spec
// §7 "a recomputed internal hash does not match a decoded node's declared
// hash" -> IntegrityError). An empty node's hash is a zero-hash table
// entry and cannot be recomputed without that table, so it is trusted
// as-is here; ZeroHashes.Verify is the corresponding check for that case.
func DecodeNode(blob []byte, h Hasher) (*Node, error) {
	hashSize := h.Size()
	if len(blob) < 1 {
		return nil, &CorruptNodeError{Reason: "empty blob"}
	}
	tag := blob[0]
	rest := blob[1:]
	switch tag {
	case tagEmpty:
		level, rest, err := readU32(rest)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "empty node: " + err.Error()}
		}
		if len(rest) != hashSize {
			return nil, &CorruptNodeError{Reason: "empty node: hash length mismatch"}
		}
		return &Node{Kind: KindEmpty, Level: int(level), hash: cloneBytes(rest)}, nil
	case tagLeaf:
		keyHashLen, rest, err := readU32(rest)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "leaf: " + err.Error()}
		}
		keyHash, rest, err := readN(rest, int(keyHashLen))
		if err != nil {
			return nil, &CorruptNodeError{Reason: "leaf key_hash: " + err.Error()}
		}
		valueLen, rest, err := readU32(rest)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "leaf: " + err.Error()}
		}
		value, rest, err := readN(rest, int(valueLen))
		if err != nil {
			return nil, &CorruptNodeError{Reason: "leaf value: " + err.Error()}
		}
		nodeHash, rest, err := readN(rest, hashSize)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "leaf node_hash: " + err.Error()}
		}
		origKeyLen, rest, err := readU32(rest)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "leaf: " + err.Error()}
		}
		origKey, rest, err := readN(rest, int(origKeyLen))
		if err != nil {
			return nil, &CorruptNodeError{Reason: "leaf original_key: " + err.Error()}
		}
		if len(rest) != 0 {
			return nil, &CorruptNodeError{Reason: "leaf: trailing bytes"}
		}
		if recomputed := hashLeafBytes(h, keyHash, value); !bytesEqual(recomputed, nodeHash) {
			return nil, &IntegrityError{Expected: recomputed, Actual: nodeHash}
		}
		n := &Node{Kind: KindLeaf, KeyHash: keyHash, Value: value, hash: nodeHash}
		if len(origKey) > 0 {
			n.OriginalKey = origKey
		}
		return n, nil
	case tagInternal:
		leftLen, rest, err := readU32(rest)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "internal: " + err.Error()}
		}
		left, rest, err := readN(rest, int(leftLen))
		if err != nil {
			return nil, &CorruptNodeError{Reason: "internal left: " + err.Error()}
		}
		rightLen, rest, err := readU32(rest)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "internal: " + err.Error()}
		}
		right, rest, err := readN(rest, int(rightLen))
		if err != nil {
			return nil, &CorruptNodeError{Reason: "internal right: " + err.Error()}
		}
		nodeHash, rest, err := readN(rest, hashSize)
		if err != nil {
			return nil, &CorruptNodeError{Reason: "internal node_hash: " + err.Error()}
		}
		if len(rest) != 0 {
			return nil, &CorruptNodeError{Reason: "internal: trailing bytes"}
		}
		if recomputed := hashInternalBytes(h, left, right); !bytesEqual(recomputed, nodeHash) {
			return nil, &IntegrityError{Expected: recomputed, Actual: nodeHash}
		}
		return &Node{Kind: KindInternal, Left: left, Right: right, hash: nodeHash}, nil
	default:
		return nil, &CorruptNodeError{Reason: fmt.Sprintf("unknown tag 0x%02x", tag)}
	}
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func readU32(buf []byte) (uint32, []byte, error) {
	if len(buf) < 4 {
		return 0, nil, fmt.Errorf("truncated u32")
	}
	return binary.LittleEndian.Uint32(buf[:4]), buf[4:], nil
}

func readN(buf []byte, n int) ([]byte, []byte, error) {
	if n < 0 || len(buf) < n {
		return nil, nil, fmt.Errorf("truncated field of length %d", n)
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, buf[n:], nil
}
