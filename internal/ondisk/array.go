// Copyright 2021 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ondisk

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const wordSize = 8

// ErrOutOfRange is matched by every *OutOfRangeError.
var ErrOutOfRange = errors.New("slot out of range")

// OutOfRangeError reports an access outside [0, Len).
type OutOfRangeError struct {
	Slot int64
	Len  int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("slot (%d) out of range (len %d)", e.Slot, e.Len)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Uint64Array is a fixed-length view of a byte region as little-endian
// uint64s, slot i at byte offset 8*i.  Trailing bytes that don't make
// up a whole word are ignored.
type Uint64Array struct {
	buf []byte
	len int64 // length in number of elements
}

func NewUint64Array(buf []byte) *Uint64Array {
	n := len(buf) / wordSize
	return &Uint64Array{
		buf: buf[:n*wordSize],
		len: int64(n),
	}
}

// Len returns the number of slots.
func (a *Uint64Array) Len() int {
	return int(a.len)
}

func (a *Uint64Array) Set(i int64, value uint64) error {
	if i < 0 || i >= a.len {
		return &OutOfRangeError{Slot: i, Len: a.len}
	}
	binary.LittleEndian.PutUint64(a.buf[i*wordSize:i*wordSize+wordSize], value)
	return nil
}

func (a *Uint64Array) Get(i int64) (uint64, error) {
	if i < 0 || i >= a.len {
		return 0, &OutOfRangeError{Slot: i, Len: a.len}
	}
	return a.Word(int(i)), nil
}

// Word returns slot i without an explicit range check (the slice
// expression still panics on a bad index).  It lets the array serve as
// a search.Words.
func (a *Uint64Array) Word(i int) uint64 {
	off := i * wordSize
	return binary.LittleEndian.Uint64(a.buf[off : off+wordSize])
}

// Bytes returns the underlying bytes, 8*Len() long.
func (a *Uint64Array) Bytes() []byte {
	return a.buf
}
