// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package dataset reads and writes the plain-text source feed a store is
// built from: one unsigned 16-bit value per line.  The line number (mod
// 2^16), counted from FirstPosition, becomes the record position, and
// flags are derived from the position by a FlagRule.
package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const defaultBufferSize = 4 * 1024 * 1024

// Item is one (value, position, flags) triple ready to be encoded.
type Item struct {
	Value    uint16
	Position uint16
	Flags    uint16
}

// FlagRule derives a record's flags from its position.
type FlagRule func(position uint16) uint16

// NoFlags is a FlagRule that never sets flags.
func NoFlags(uint16) uint16 { return 0 }

// Iter yields feed items in order.  Next returns false at the end of the
// feed or on error; check Err afterwards.
type Iter interface {
	Next() (Item, bool)
	Err() error
}

// Generate writes n values to w, value i being i % 65536.
func Generate(w io.Writer, n int64) error {
	bw := bufio.NewWriterSize(w, defaultBufferSize)
	var buf [8]byte
	for i := int64(0); i < n; i++ {
		line := strconv.AppendUint(buf[:0], uint64(i%65536), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("bufio.Write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("bufio.Flush: %w", err)
	}
	return nil
}

// Reader is an Iter over a newline-delimited feed.
type Reader struct {
	s     *bufio.Scanner
	rule  FlagRule
	first int64
	n     int64
	err   error
}

var _ Iter = &Reader{}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// FirstPosition gives the feed's first line position n (mod 2^16)
// instead of 0.  Use it when the feed is loaded after n slots have
// already been written, so positions keep tracking slots.
func FirstPosition(n int64) ReaderOption {
	return func(r *Reader) {
		r.first = n
	}
}

// NewReader returns a Reader over r.  A nil rule means NoFlags.
func NewReader(r io.Reader, rule FlagRule, opts ...ReaderOption) *Reader {
	if rule == nil {
		rule = NoFlags
	}
	reader := &Reader{
		s:    bufio.NewScanner(bufio.NewReaderSize(r, 64*1024)),
		rule: rule,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

func (r *Reader) Next() (Item, bool) {
	if r.err != nil || !r.s.Scan() {
		if r.err == nil {
			r.err = r.s.Err()
		}
		return Item{}, false
	}
	line := bytes.TrimSpace(r.s.Bytes())
	v, err := strconv.ParseUint(string(line), 10, 16)
	if err != nil {
		r.err = fmt.Errorf("line %d: %w", r.n+1, err)
		return Item{}, false
	}
	pos := uint16(r.first + r.n)
	r.n++
	return Item{
		Value:    uint16(v),
		Position: pos,
		Flags:    r.rule(pos),
	}, true
}

// Err returns the first error hit while reading, if any.
func (r *Reader) Err() error {
	return r.err
}

// Slice is an Iter over items already in memory.
type Slice struct {
	items []Item
	off   int
}

var _ Iter = &Slice{}

func NewSlice(items []Item) *Slice {
	return &Slice{items: items}
}

func (s *Slice) Next() (Item, bool) {
	if s.off >= len(s.items) {
		return Item{}, false
	}
	item := s.items[s.off]
	s.off++
	return item, true
}

func (s *Slice) Err() error {
	return nil
}
