// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package search locates records matching a predicate in an array of
// packed 64-bit words.
//
// Two strategies are offered.  Linear visits slots in ascending order and
// stops at the first match; it always returns the lowest matching slot.
// Binary probes midpoints and prunes half of the remaining slots per step:
// on a match it keeps looking to the left, and on a miss it moves right if
// the raw word is nonzero and left if it is zero.  That rule assumes the
// raw words are ordered with respect to slot index, which the record layout
// (checksum and flags in the high bits) does not provide, so Binary can
// report "not found" or a later slot when an earlier match exists.  Use it
// only when that trade-off is acceptable.
package search

import (
	"context"
	"fmt"
	"strings"
)

// Words is a read-only, fixed-length array of packed records.
// Word is only called with 0 <= i < Len().
type Words interface {
	Len() int
	Word(i int) uint64
}

// Uint64s adapts a plain slice to Words.
type Uint64s []uint64

func (s Uint64s) Len() int          { return len(s) }
func (s Uint64s) Word(i int) uint64 { return s[i] }

// Matcher decides whether a packed record is a hit.  query.Query
// implements Matcher.
type Matcher interface {
	Matches(word uint64) bool
}

// Mode selects the search strategy.
type Mode int

const (
	// Linear is a full scan with early exit on the first match.
	Linear Mode = iota
	// Binary is the fast, unsafe probe-and-prune traversal.
	Binary
)

func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "linear" or "binary" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "binary":
		return Binary, nil
	default:
		return Linear, fmt.Errorf("unknown search mode %q (want linear or binary)", s)
	}
}

// checkEvery is how many probes run between context checks.
const checkEvery = 4096

// Result is the outcome of First.
type Result struct {
	Slot   int
	Found  bool
	Probes int
}

// FindFirst returns the first slot whose word matches m, or ok == false
// if no slot matches.  With Binary the "first" is only as good as the
// ordering assumption described in the package documentation.
func FindFirst(words Words, m Matcher, mode Mode) (slot int, ok bool) {
	r, _ := First(context.Background(), words, m, mode)
	return r.Slot, r.Found
}

// First is FindFirst with a cooperative cancellation check every few
// thousand probes.  On cancellation the context's error is returned along
// with whatever partial result was reached.
func First(ctx context.Context, words Words, m Matcher, mode Mode) (Result, error) {
	switch mode {
	case Linear:
		return linear(ctx, words, m)
	case Binary:
		return binary(ctx, words, m)
	default:
		return Result{Slot: -1}, fmt.Errorf("unknown search mode %d", int(mode))
	}
}

func linear(ctx context.Context, words Words, m Matcher) (Result, error) {
	n := words.Len()
	for i := 0; i < n; i++ {
		if i%checkEvery == checkEvery-1 {
			if err := ctx.Err(); err != nil {
				return Result{Slot: -1, Probes: i}, err
			}
		}
		if m.Matches(words.Word(i)) {
			return Result{Slot: i, Found: true, Probes: i + 1}, nil
		}
	}
	return Result{Slot: -1, Probes: n}, nil
}

// probeState is the whole state of a binary traversal: the inclusive
// bounds still under consideration and the best match seen so far.
type probeState struct {
	low, high int
	best      int
}

func newProbeState(n int) probeState {
	return probeState{low: 0, high: n - 1, best: -1}
}

func (s probeState) done() bool {
	return s.low > s.high
}

// next probes the midpoint of s and returns the narrowed state.
func (s probeState) next(words Words, m Matcher) probeState {
	mid := s.low + (s.high-s.low)/2
	word := words.Word(mid)
	switch {
	case m.Matches(word):
		// keep looking left for an earlier match
		return probeState{low: s.low, high: mid - 1, best: mid}
	case word > 0:
		return probeState{low: mid + 1, high: s.high, best: s.best}
	default:
		return probeState{low: s.low, high: mid - 1, best: s.best}
	}
}

func (s probeState) result(probes int) Result {
	return Result{Slot: s.best, Found: s.best >= 0, Probes: probes}
}

func binary(ctx context.Context, words Words, m Matcher) (Result, error) {
	s := newProbeState(words.Len())
	probes := 0
	for !s.done() {
		if probes%checkEvery == checkEvery-1 {
			if err := ctx.Err(); err != nil {
				return s.result(probes), err
			}
		}
		s = s.next(words, m)
		probes++
	}
	return s.result(probes), nil
}
