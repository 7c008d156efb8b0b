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
	"errors"
	"fmt"
)

// Sentinel errors returned by the core. Callers should use errors.Is to
// match; wrapped variants (CorruptNodeError, IntegrityError) carry extra
// context but still satisfy errors.Is against their bare counterpart.
var (
	ErrInvalidInput  = errors.New("smt: invalid input")
	ErrCorruptNode   = errors.New("smt: corrupt node encoding")
	ErrVersion       = errors.New("smt: unsupported serialization format version")
	ErrIntegrity     = errors.New("smt: integrity check failed")
	ErrDuplicateKey  = errors.New("smt: duplicate key hash during extension build")
	ErrCancelled     = errors.New("smt: operation cancelled")
	ErrEmptySlotDeep = errors.New("smt: empty slot found below configured depth")
)

// CorruptNodeError wraps ErrCorruptNode with the offending hash and a
// human-readable reason.
type CorruptNodeError struct {
	Hash   []byte
	Reason string
}

func (e *CorruptNodeError) Error() string {
	return fmt.Sprintf("smt: corrupt node %x: %s", e.Hash, e.Reason)
}

func (e *CorruptNodeError) Unwrap() error { return ErrCorruptNode }

// IntegrityError wraps ErrIntegrity with the hash whose recomputation
// disagreed with its declared value.
type IntegrityError struct {
	Expected []byte
	Actual   []byte
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("smt: integrity failure: expected %x, got %x", e.Expected, e.Actual)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// StorageError wraps any error surfaced by a NodeStore, preserving it
// unchanged for the caller while identifying its origin.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("smt: storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
