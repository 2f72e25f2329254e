// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package record packs observations into fixed-width 64-bit words.
//
// A packed record looks like:
//
//	 63        48 47        32 31        16 15         0
//	+------------+------------+------------+------------+
//	| checksum   | flags      | position   | value      |
//	+------------+------------+------------+------------+
//
// The checksum is crc16.Checksum(value, position), computed at encode
// time.  Decoding never fails: any 64-bit word decodes to some Record,
// and corrupt words are recognized by Record.Valid.
package record

import (
	"fmt"

	"github.com/bpowers/bitrec/crc16"
)

const (
	// Size is the length in bytes of a packed record.
	Size = 8

	valueShift    = 0
	positionShift = 16
	flagsShift    = 32
	checksumShift = 48
	fieldMask     = 0xFFFF
)

// FlagEvenPosition marks records whose position is even.
const FlagEvenPosition uint16 = 0x0008

// Record is a decoded 64-bit record.
type Record struct {
	Value    uint16
	Position uint16
	Flags    uint16
	Checksum uint16
}

// Encode packs value, position and flags together with their checksum.
func Encode(value, position, flags uint16) uint64 {
	return Record{
		Value:    value,
		Position: position,
		Flags:    flags,
		Checksum: crc16.Checksum(value, position),
	}.Pack()
}

// Decode unpacks a 64-bit word.
func Decode(word uint64) Record {
	return Record{
		Value:    uint16((word >> valueShift) & fieldMask),
		Position: uint16((word >> positionShift) & fieldMask),
		Flags:    uint16((word >> flagsShift) & fieldMask),
		Checksum: uint16((word >> checksumShift) & fieldMask),
	}
}

// Pack returns the fields of r as a 64-bit word, using the stored
// checksum as-is.
func (r Record) Pack() uint64 {
	return uint64(r.Value)<<valueShift |
		uint64(r.Position)<<positionShift |
		uint64(r.Flags)<<flagsShift |
		uint64(r.Checksum)<<checksumShift
}

// Valid reports whether the stored checksum matches value and position.
func (r Record) Valid() bool {
	return crc16.Validate(r.Value, r.Position, r.Checksum)
}

// HasFlags reports whether every bit in mask is set.
func (r Record) HasFlags(mask uint16) bool {
	return r.Flags&mask == mask
}

func (r Record) String() string {
	return fmt.Sprintf("Value: %d, Position: %d, Flags: 0x%04x, Checksum: 0x%04x", r.Value, r.Position, r.Flags, r.Checksum)
}

// EvenPositionFlags derives a record's flags from its position: even
// positions get FlagEvenPosition, odd positions no flags.
func EvenPositionFlags(position uint16) uint16 {
	if position%2 == 0 {
		return FlagEvenPosition
	}
	return 0
}
