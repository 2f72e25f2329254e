// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package query evaluates range, flag and checksum predicates against
// packed records.
package query

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/bpowers/bitrec/record"
)

// ErrInvalidRange is returned by Validate for a range whose min exceeds
// its max.
var ErrInvalidRange = errors.New("invalid range")

// Query selects records whose value and position fall in inclusive
// ranges, that carry every bit in FlagMask, and (optionally) whose
// checksum validates.  The zero Query only matches records with value
// and position 0; use New or All for the full-range default.
type Query struct {
	MinValue        uint16
	MaxValue        uint16
	MinPosition     uint16
	MaxPosition     uint16
	FlagMask        uint16
	RequireChecksum bool
}

// Option configures a Query built by New.
type Option func(*Query)

// ValueRange restricts matches to min <= value <= max.
func ValueRange(min, max uint16) Option {
	return func(q *Query) {
		q.MinValue = min
		q.MaxValue = max
	}
}

// PositionRange restricts matches to min <= position <= max.
func PositionRange(min, max uint16) Option {
	return func(q *Query) {
		q.MinPosition = min
		q.MaxPosition = max
	}
}

// Flags requires every bit in mask to be set.  A mask of 0 places no
// requirement on flags.
func Flags(mask uint16) Option {
	return func(q *Query) {
		q.FlagMask = mask
	}
}

// RequireChecksum excludes records whose checksum fails validation.
func RequireChecksum() Option {
	return func(q *Query) {
		q.RequireChecksum = true
	}
}

// All returns a query matching every record.
func All() Query {
	return Query{
		MaxValue:    math.MaxUint16,
		MaxPosition: math.MaxUint16,
	}
}

// New returns a query over the full value and position ranges, narrowed
// by opts.
func New(opts ...Option) Query {
	q := All()
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Validate returns an error if either range is inverted.  An inverted
// range is not unsafe, it just never matches anything.
func (q Query) Validate() error {
	if q.MinValue > q.MaxValue {
		return fmt.Errorf("%w: value [%d, %d]", ErrInvalidRange, q.MinValue, q.MaxValue)
	}
	if q.MinPosition > q.MaxPosition {
		return fmt.Errorf("%w: position [%d, %d]", ErrInvalidRange, q.MinPosition, q.MaxPosition)
	}
	return nil
}

// Matches decodes word and reports whether it satisfies q.
func (q Query) Matches(word uint64) bool {
	return q.MatchesRecord(record.Decode(word))
}

// MatchesRecord reports whether r satisfies q.
func (q Query) MatchesRecord(r record.Record) bool {
	if r.Value < q.MinValue || r.Value > q.MaxValue {
		return false
	}
	if r.Position < q.MinPosition || r.Position > q.MaxPosition {
		return false
	}
	// all masked bits must be present, not just any of them
	if q.FlagMask != 0 && !r.HasFlags(q.FlagMask) {
		return false
	}
	if q.RequireChecksum && !r.Valid() {
		return false
	}
	return true
}

func (q Query) String() string {
	return fmt.Sprintf("value:[%d,%d] position:[%d,%d] flags:0x%04x checksum:%t",
		q.MinValue, q.MaxValue, q.MinPosition, q.MaxPosition, q.FlagMask, q.RequireChecksum)
}

// LogValue lets a Query be passed to a slog.Logger as is; the fields are
// only formatted if the record is actually logged.
func (q Query) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("min_value", int(q.MinValue)),
		slog.Int("max_value", int(q.MaxValue)),
		slog.Int("min_position", int(q.MinPosition)),
		slog.Int("max_position", int(q.MaxPosition)),
		slog.Int("flag_mask", int(q.FlagMask)),
		slog.Bool("require_checksum", q.RequireChecksum),
	)
}
