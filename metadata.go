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
)

const (
	// SerializationFormatVersion is the only wire format this
	// implementation understands. Deserialize fails on any other value.
	SerializationFormatVersion uint32 = 1
	// CoreVersion identifies the algorithm revision (spec §4.5).
	CoreVersion uint32 = 1
)

// Metadata is the deterministic binary description of a tree instance
// (spec §4.5): algorithm identifier, depth, versions, and the zero-hash
// table needed to reconstruct Z[0..D] without recomputation.
type Metadata struct {
	SerializationFormatVersion uint32
	CoreVersion                uint32
	Depth                      int
	AlgorithmID                string
	ZeroHashes                 *ZeroHashes
}

// NewMetadata builds metadata for hasher h at the given depth, enforcing
// the constructor invariants of spec §4.5: depth >= 1; algorithm id
// non-empty; the zero-hash table's depth and algorithm agree with those
// declared here.
func NewMetadata(h Hasher, depth int) (*Metadata, error) {
	if depth < 1 {
		return nil, fmt.Errorf("%w: depth must be >= 1, got %d", ErrInvalidInput, depth)
	}
	if h.Name() == "" {
		return nil, fmt.Errorf("%w: algorithm id must be non-empty", ErrInvalidInput)
	}
	return &Metadata{
		SerializationFormatVersion: SerializationFormatVersion,
		CoreVersion:                CoreVersion,
		Depth:                      depth,
		AlgorithmID:                h.Name(),
		ZeroHashes:                 NewZeroHashes(h, depth),
	}, nil
}

// Encode produces the binary layout of spec §4.5.
func (m *Metadata) Encode() []byte {
	idBytes := []byte(m.AlgorithmID)
	buf := make([]byte, 0, 4+4+4+4+len(idBytes)+64)
	buf = appendU32(buf, m.SerializationFormatVersion)
	buf = appendU32(buf, m.CoreVersion)
	buf = appendU32(buf, uint32(m.Depth))
	buf = appendU32(buf, uint32(len(idBytes)))
	buf = append(buf, idBytes...)
	buf = append(buf, encodeZeroHashTable(m.ZeroHashes)...)
	return buf
}

// DecodeMetadata parses the layout written by Encode, failing on any
// unknown serialization_format_version (ErrVersion) or malformed field
// (ErrCorruptNode).
func DecodeMetadata(buf []byte) (*Metadata, error) {
	formatVersion, rest, err := readU32(buf)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "metadata: " + err.Error()}
	}
	if formatVersion != SerializationFormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersion, formatVersion, SerializationFormatVersion)
	}
	coreVersion, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "metadata: " + err.Error()}
	}
	depth, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "metadata: " + err.Error()}
	}
	idLen, rest, err := readU32(rest)
	if err != nil {
		return nil, &CorruptNodeError{Reason: "metadata: " + err.Error()}
	}
	idBytes, rest, err := readN(rest, int(idLen))
	if err != nil {
		return nil, &CorruptNodeError{Reason: "metadata algorithm_id: " + err.Error()}
	}
	zh, rest, err := decodeZeroHashTable(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, &CorruptNodeError{Reason: "metadata: trailing bytes"}
	}
	if zh.Depth() != int(depth) {
		return nil, fmt.Errorf("%w: zero-hash table depth %d != declared depth %d", ErrInvalidInput, zh.Depth(), depth)
	}
	algorithmID := string(idBytes)
	if zh.hasher.Name() != algorithmID {
		return nil, fmt.Errorf("%w: zero-hash table algorithm %q != declared %q", ErrInvalidInput, zh.hasher.Name(), algorithmID)
	}
	return &Metadata{
		SerializationFormatVersion: formatVersion,
		CoreVersion:                coreVersion,
		Depth:                      int(depth),
		AlgorithmID:                algorithmID,
		ZeroHashes:                 zh,
	}, nil
}

// encodeZeroHashTable writes the §4.3 layout:
//
//	depth:u32 LE | hash_size:u32 LE | algorithm_id_len:u32 LE | algorithm_id | Z[0..depth]
func encodeZeroHashTable(z *ZeroHashes) []byte {
	idBytes := []byte(z.hasher.Name())
	hashSize := z.hasher.Size()
	buf := make([]byte, 0, 4+4+4+len(idBytes)+(z.depth+1)*hashSize)
	buf = appendU32(buf, uint32(z.depth))
	buf = appendU32(buf, uint32(hashSize))
	buf = appendU32(buf, uint32(len(idBytes)))
	buf = append(buf, idBytes...)
	for l := 0; l <= z.depth; l++ {
		buf = append(buf, z.table[l]...)
	}
	return buf
}

func decodeZeroHashTable(buf []byte) (*ZeroHashes, []byte, error) {
	depth, rest, err := readU32(buf)
	if err != nil {
		return nil, nil, &CorruptNodeError{Reason: "zero-hash table: " + err.Error()}
	}
	hashSize, rest, err := readU32(rest)
	if err != nil {
		return nil, nil, &CorruptNodeError{Reason: "zero-hash table: " + err.Error()}
	}
	idLen, rest, err := readU32(rest)
	if err != nil {
		return nil, nil, &CorruptNodeError{Reason: "zero-hash table: " + err.Error()}
	}
	idBytes, rest, err := readN(rest, int(idLen))
	if err != nil {
		return nil, nil, &CorruptNodeError{Reason: "zero-hash table algorithm_id: " + err.Error()}
	}
	table := make([][]byte, depth+1)
	for l := 0; l <= int(depth); l++ {
		var h []byte
		h, rest, err = readN(rest, int(hashSize))
		if err != nil {
			return nil, nil, &CorruptNodeError{Reason: fmt.Sprintf("zero-hash table Z[%d]: %s", l, err.Error())}
		}
		table[l] = h
	}
	return &ZeroHashes{
		hasher: namedHasher{name: string(idBytes), size: int(hashSize)},
		depth:  int(depth),
		table:  table,
	}, rest, nil
}

// namedHasher is a placeholder Hasher used only to remember the (name,
// size) pair recovered from a deserialized zero-hash table; it cannot
// compute digests. Callers must supply a real Hasher (via Tree
// construction) that NewFromMetadata checks against this for equality.
type namedHasher struct {
	name string
	size int
}

func (n namedHasher) Name() string          { return n.name }
func (n namedHasher) Size() int             { return n.size }
func (n namedHasher) Sum(data []byte) []byte { panic("smt: namedHasher cannot compute digests") }
