// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitrec

import (
	"errors"

	"github.com/bpowers/bitrec/internal/ondisk"
)

var (
	// ErrOutOfRange is matched (via errors.Is) by every *OutOfRangeError.
	ErrOutOfRange = ondisk.ErrOutOfRange
	// ErrSealed is returned by writes to a sealed or read-only store.
	ErrSealed = errors.New("store is sealed: no writes after the populate phase")
	// ErrOutOfOrder is returned by a write at or below the last written slot.
	ErrOutOfOrder = errors.New("slots must be written in increasing order")
	// ErrClosed is returned by every method of a closed store.
	ErrClosed = errors.New("store is closed")
	// ErrCapacity reports a negative or unaddressable capacity.
	ErrCapacity = errors.New("invalid store capacity")
	// ErrBadSize is returned by Open for a file that isn't a whole number
	// of records.
	ErrBadSize = errors.New("store file size is not a multiple of 8")
	// ErrNotStaged is returned by Commit on a store not created by Build.
	ErrNotStaged = errors.New("store was not created by Build")
)

// OutOfRangeError reports a slot outside [0, Capacity).
type OutOfRangeError = ondisk.OutOfRangeError
