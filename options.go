// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitrec

import (
	"io"
	"log/slog"

	"github.com/bpowers/bitrec/search"
)

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	logger  *slog.Logger
	mode    search.Mode
	workers int
}

func defaultOptions() storeOptions {
	return storeOptions{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		mode:   search.Linear,
	}
}

// WithLogger sets an optional logger for lifecycle events and query
// timings.  If not provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *storeOptions) {
		opts.logger = logger
	}
}

// WithSearchMode sets the default strategy for FindFirst.  The default
// is search.Linear.
func WithSearchMode(mode search.Mode) Option {
	return func(opts *storeOptions) {
		opts.mode = mode
	}
}

// WithWorkers bounds the parallelism of FindAll and Verify.  Zero means
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(opts *storeOptions) {
		opts.workers = n
	}
}

// QueryOption configures a single FindFirst call.
type QueryOption func(*queryOptions)

type queryOptions struct {
	mode search.Mode
}

// WithMode overrides the store's search mode for one call.
func WithMode(mode search.Mode) QueryOption {
	return func(opts *queryOptions) {
		opts.mode = mode
	}
}
