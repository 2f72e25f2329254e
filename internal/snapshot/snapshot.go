// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package snapshot serializes a store's words as a compressed stream.
//
// A snapshot is a 64-byte header followed by the compressed payload:
//
//	 0         4         8         12        16
//	+---------+---------+---------+---------+
//	| magic   | version | codec   | (pad)   |
//	+---------+---------+---------+---------+
//	| capacity (words)  | payload farmhash  |
//	+-------------------+-------------------+
//	| zero padding to 64 bytes              |
//	+---------------------------------------+
//	| compressed payload ...                |
//
// The digest is checked when the payload is decoded, so a truncated or
// corrupted snapshot is rejected instead of silently producing a store.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgryski/go-farm"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var (
	// ErrDigestMismatch means a decoded payload doesn't hash to the digest
	// recorded in its header.
	ErrDigestMismatch = errors.New("snapshot digest mismatch")
	// ErrTooLarge means a header claims more words than any snapshot may
	// hold.
	ErrTooLarge = errors.New("snapshot capacity too large")
)

// MaxCapacity bounds the words a snapshot may hold (8 TiB of payload).
// Headers claiming more are rejected before anything is sized from them.
const MaxCapacity = 1 << 40

// Codec names the payload compression.
type Codec uint32

const (
	Zstd Codec = iota + 1
	LZ4
)

func (c Codec) valid() bool {
	return c == Zstd || c == LZ4
}

func (c Codec) String() string {
	switch c {
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Codec(%d)", uint32(c))
	}
}

// ParseCodec parses "zstd" or "lz4".
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zstd", "":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return 0, fmt.Errorf("unknown snapshot codec %q (want zstd or lz4)", s)
	}
}

// Digest is the checksum recorded for a payload.
func Digest(payload []byte) uint64 {
	return farm.Hash64(payload)
}

// Write writes a header and the compressed payload to w.  len(payload)
// must be a multiple of 8.
func Write(w io.Writer, payload []byte, codec Codec) error {
	if !codec.valid() {
		return fmt.Errorf("unknown snapshot codec %d", uint32(codec))
	}
	if len(payload)%8 != 0 {
		return fmt.Errorf("payload length %d is not a multiple of 8", len(payload))
	}
	if uint64(len(payload)/8) > MaxCapacity {
		return fmt.Errorf("%w: %d words", ErrTooLarge, len(payload)/8)
	}
	h := newHeader(codec, uint64(len(payload)/8), Digest(payload))
	if _, err := h.WriteTo(w); err != nil {
		return fmt.Errorf("header.WriteTo: %w", err)
	}

	var zw io.WriteCloser
	switch codec {
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd.NewWriter: %w", err)
		}
		zw = enc
	case LZ4:
		zw = lz4.NewWriter(w)
	}
	if _, err := zw.Write(payload); err != nil {
		_ = zw.Close()
		return fmt.Errorf("%s write: %w", codec, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%s close: %w", codec, err)
	}
	return nil
}

// ReadHeader reads and validates a snapshot header from r.
func ReadHeader(r io.Reader) (*Header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("io.ReadFull(header): %w", err)
	}
	var h Header
	if err := h.UnmarshalBytes(buf[:]); err != nil {
		return nil, err
	}
	return &h, nil
}

// Decode decompresses the payload following h from r into dst, which
// must be exactly h.PayloadLen() bytes, and verifies its digest.
func (h *Header) Decode(r io.Reader, dst []byte) error {
	if uint64(len(dst)) != h.PayloadLen() {
		return fmt.Errorf("dst is %d bytes, snapshot payload is %d", len(dst), h.PayloadLen())
	}

	var zr io.Reader
	switch h.Codec {
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return fmt.Errorf("zstd.NewReader: %w", err)
		}
		defer dec.Close()
		zr = dec
	case LZ4:
		zr = lz4.NewReader(r)
	default:
		return fmt.Errorf("unknown snapshot codec %d", uint32(h.Codec))
	}

	if _, err := io.ReadFull(zr, dst); err != nil {
		return fmt.Errorf("%s read: %w", h.Codec, err)
	}
	if got := Digest(dst); got != h.Digest {
		return fmt.Errorf("%w: %x != %x", ErrDigestMismatch, got, h.Digest)
	}
	return nil
}
