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

import "testing"

func TestMetadataEncodeDecodeRoundTrip(t *testing.T) {
	md, err := NewMetadata(SHA256(), 16)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeMetadata(md.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Depth != md.Depth || decoded.AlgorithmID != md.AlgorithmID {
		t.Fatalf("metadata round-trip mismatch: %+v != %+v", decoded, md)
	}
	if err := decoded.ZeroHashes.Verify(SHA256()); err != nil {
		t.Fatalf("decoded zero-hash table failed verification: %v", err)
	}
}

func TestMetadataRejectsUnknownVersion(t *testing.T) {
	md, err := NewMetadata(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	buf := md.Encode()
	buf[0] = 0xFF // corrupt serialization_format_version's low byte
	if _, err := DecodeMetadata(buf); err == nil {
		t.Fatal("expected ErrVersion for unrecognized format version")
	}
}

func TestNewMetadataRejectsInvalidDepth(t *testing.T) {
	if _, err := NewMetadata(SHA256(), 0); err == nil {
		t.Fatal("expected error for depth 0")
	}
}

func TestTreeFromMetadataRejectsHasherMismatch(t *testing.T) {
	md, err := NewMetadata(SHA256(), 8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromMetadata(SHA512(), md); err == nil {
		t.Fatal("expected error constructing a tree from mismatched hasher/metadata")
	}
}
