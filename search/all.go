// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package search

import (
	"context"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"
)

const defaultShardSize = 1 << 20

// AllOption configures All.
type AllOption func(*allOptions)

type allOptions struct {
	workers   int
	shardSize int
}

// WithWorkers bounds the number of shards scanned at once.  Values < 1
// mean GOMAXPROCS.
func WithWorkers(n int) AllOption {
	return func(opts *allOptions) {
		opts.workers = n
	}
}

// WithShardSize sets how many slots each worker scans per task.
func WithShardSize(n int) AllOption {
	return func(opts *allOptions) {
		opts.shardSize = n
	}
}

// All returns every slot whose word matches m.  Shards of the array are
// scanned in parallel, so words must not be modified while All runs.
func All(ctx context.Context, words Words, m Matcher, opts ...AllOption) (*roaring64.Bitmap, error) {
	options := allOptions{
		workers:   runtime.GOMAXPROCS(0),
		shardSize: defaultShardSize,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.workers < 1 {
		options.workers = runtime.GOMAXPROCS(0)
	}
	if options.shardSize < 1 {
		options.shardSize = defaultShardSize
	}

	n := words.Len()
	nShards := (n + options.shardSize - 1) / options.shardSize
	// each shard gets its own bitmap: roaring bitmaps aren't safe for
	// concurrent writes
	partials := make([]*roaring64.Bitmap, nShards)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(options.workers)
	for shard := 0; shard < nShards; shard++ {
		shard := shard
		start := shard * options.shardSize
		end := min(start+options.shardSize, n)
		g.Go(func() error {
			bm := roaring64.New()
			for i := start; i < end; i++ {
				if (i-start)%checkEvery == checkEvery-1 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if m.Matches(words.Word(i)) {
					bm.Add(uint64(i))
				}
			}
			partials[shard] = bm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := roaring64.New()
	for _, bm := range partials {
		result.Or(bm)
	}
	return result, nil
}
