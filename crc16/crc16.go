// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package crc16 computes the 16-bit integrity field stored in every record.
//
// The checksum is a reflected CRC-16/CCITT (polynomial 0x8408, initial value
// 0xFFFF, final complement) run over a single 16-bit message formed as
// value XOR position.  Folding both fields into one message keeps the
// checksum compatible with existing data files, but it means any two
// (value, position) pairs with the same XOR share a checksum: swapping the
// two fields, or flipping the same bit in both, goes undetected.  Any single
// bit flip in either field is always detected.
package crc16

const (
	initial = 0xFFFF
	poly    = 0x8408
)

// Checksum returns the CRC-16 of value and position.
func Checksum(value, position uint16) uint16 {
	crc := uint16(initial)
	data := value ^ position
	for i := 0; i < 16; i++ {
		if (crc^data)&1 != 0 {
			crc = (crc >> 1) ^ poly
		} else {
			crc >>= 1
		}
		data >>= 1
	}
	return ^crc
}

// Validate reports whether checksum is the CRC-16 of value and position.
func Validate(value, position, checksum uint16) bool {
	return Checksum(value, position) == checksum
}
