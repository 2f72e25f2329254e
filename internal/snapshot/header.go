// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magicSnapshotHeader = 0xB17EC0DE
	formatVersion       = 1
	headerSize          = 64
)

// Header describes the payload that follows it.
type Header struct {
	magic         uint32
	formatVersion uint32
	Codec         Codec
	Capacity      uint64 // number of 8-byte words in the payload
	Digest        uint64 // farmhash of the uncompressed payload
}

func newHeader(codec Codec, capacity, digest uint64) *Header {
	return &Header{
		magic:         magicSnapshotHeader,
		formatVersion: formatVersion,
		Codec:         codec,
		Capacity:      capacity,
		Digest:        digest,
	}
}

// PayloadLen is the uncompressed payload length in bytes.
func (h *Header) PayloadLen() uint64 {
	return h.Capacity * 8
}

func (h *Header) MarshalTo(buf []byte) error {
	if len(buf) < headerSize {
		return fmt.Errorf("buf too short: %d < %d", len(buf), headerSize)
	}
	buf = buf[:headerSize]
	clear(buf)
	binary.LittleEndian.PutUint32(buf[0:4], h.magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.formatVersion)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Codec))
	binary.LittleEndian.PutUint64(buf[16:24], h.Capacity)
	binary.LittleEndian.PutUint64(buf[24:32], h.Digest)
	return nil
}

func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var buf [headerSize]byte
	if err := h.MarshalTo(buf[:]); err != nil {
		return 0, err
	}
	n, err := w.Write(buf[:])
	if err != nil {
		return int64(n), fmt.Errorf("write: %w", err)
	}
	return int64(n), nil
}

func (h *Header) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < headerSize {
		return fmt.Errorf("headerBytes too short: %d < %d", len(headerBytes), headerSize)
	}
	headerBytes = headerBytes[:headerSize]

	h.magic = binary.LittleEndian.Uint32(headerBytes[0:4])
	if h.magic != magicSnapshotHeader {
		return fmt.Errorf("bad magic number on snapshot (%x) -- not a bitrec snapshot or corrupted", h.magic)
	}
	h.formatVersion = binary.LittleEndian.Uint32(headerBytes[4:8])
	if h.formatVersion != formatVersion {
		return fmt.Errorf("this version of bitrec can only read v%d snapshots; found v%d", formatVersion, h.formatVersion)
	}
	h.Codec = Codec(binary.LittleEndian.Uint32(headerBytes[8:12]))
	if !h.Codec.valid() {
		return fmt.Errorf("unknown snapshot codec %d", uint32(h.Codec))
	}
	h.Capacity = binary.LittleEndian.Uint64(headerBytes[16:24])
	if h.Capacity > MaxCapacity {
		return fmt.Errorf("%w: header claims %d words", ErrTooLarge, h.Capacity)
	}
	h.Digest = binary.LittleEndian.Uint64(headerBytes[24:32])
	return nil
}
