// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package bitrec stores fixed-width records in a memory mapped array.
//
// Each record is a (value, position, flags) triple of unsigned 16-bit
// integers packed with a CRC-16 checksum into a single little-endian
// 64-bit word.  Slot i of the array lives at byte offset i*8 of the
// backing file, with no header.
//
// A Store is populated once in increasing slot order, sealed, and then
// queried with range and flag criteria built by the query package:
//
//	s, err := bitrec.Create("memory_mapped.dat", 1<<27)
//	...
//	n, err := s.Load(ctx, dataset.NewReader(f, record.EvenPositionFlags))
//	...
//	err = s.Seal()
//	m, ok := s.FindFirst(query.New(
//		query.ValueRange(100, 200),
//		query.PositionRange(5000, 10000),
//		query.Flags(record.FlagEvenPosition),
//		query.RequireChecksum(),
//	))
package bitrec
