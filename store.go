// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitrec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/bpowers/bitrec/internal/dataset"
	"github.com/bpowers/bitrec/internal/mmap"
	"github.com/bpowers/bitrec/internal/ondisk"
	"github.com/bpowers/bitrec/internal/snapshot"
	"github.com/bpowers/bitrec/query"
	"github.com/bpowers/bitrec/record"
	"github.com/bpowers/bitrec/search"
)

const loadCheckEvery = 1 << 16

// Store is a fixed-capacity array of packed records backed by a mapped
// region.  It is populated once, in increasing slot order, then sealed
// and queried.  A Store is not safe for concurrent use while it is being
// populated; once sealed, reads may run concurrently.
type Store struct {
	region  *mmap.Region
	arr     *ondisk.Uint64Array
	logger  *slog.Logger
	mode    search.Mode
	workers int
	next    int64  // lowest slot that may still be written
	target  string // final path of a store staged by Build, until Commit
	sealed  bool
	closed  atomic.Bool
}

// Match is a record found by a query, along with the slot it lives in.
type Match struct {
	Slot   int64
	Record record.Record
}

func (m Match) String() string {
	return fmt.Sprintf("slot %d: %s", m.Slot, m.Record)
}

func validCapacity(capacity int64) error {
	if capacity < 0 || capacity > math.MaxInt64/record.Size {
		return fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	return nil
}

// Create creates a zeroed store of capacity records in the file at path,
// truncating any existing file.
func Create(path string, capacity int64, opts ...Option) (*Store, error) {
	if err := validCapacity(capacity); err != nil {
		return nil, err
	}
	region, err := mmap.Create(path, capacity*record.Size)
	if err != nil {
		return nil, fmt.Errorf("mmap.Create: %w", err)
	}
	s := newStore(region, opts)
	s.logger.Info("created store", "path", path, "capacity", capacity)
	return s, nil
}

// Build returns an empty store of capacity records staged in a
// temporary file next to path.  Nothing at path changes until Commit
// moves the finished store into place; closing the store before then
// discards the staged file.
func Build(path string, capacity int64, opts ...Option) (*Store, error) {
	if err := validCapacity(capacity); err != nil {
		return nil, err
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs: %w", err)
	}
	dir := filepath.Dir(path)
	region, err := mmap.CreateTemp(dir, "bitrec-build.*.dat", capacity*record.Size)
	if err != nil {
		return nil, fmt.Errorf("mmap.CreateTemp failed (may need permissions for dir %q containing store): %w", dir, err)
	}
	s := newStore(region, opts)
	s.target = path
	s.logger.Info("staging store", "path", path, "staged", region.Name(), "capacity", capacity)
	return s, nil
}

// NewMemory returns a zeroed store of capacity records backed by
// anonymous memory.
func NewMemory(capacity int64, opts ...Option) (*Store, error) {
	if err := validCapacity(capacity); err != nil {
		return nil, err
	}
	region, err := mmap.Anon(capacity * record.Size)
	if err != nil {
		return nil, fmt.Errorf("mmap.Anon: %w", err)
	}
	return newStore(region, opts), nil
}

// Open maps an existing store file read-only.  The capacity is the file
// size divided by 8.  The returned store is sealed.
func Open(path string, opts ...Option) (*Store, error) {
	region, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open: %w", err)
	}
	if region.Len()%record.Size != 0 {
		_ = region.Close()
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrBadSize, path, region.Len())
	}
	s := newStore(region, opts)
	s.next = s.Capacity()
	if err := region.Advise(mmap.AccessRandom); err != nil {
		s.logger.Warn("madvise failed, continuing anyway", "err", err)
	}
	s.logger.Info("opened store", "path", path, "capacity", s.Capacity())
	return s, nil
}

func newStore(region *mmap.Region, opts []Option) *Store {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Store{
		region:  region,
		arr:     ondisk.NewUint64Array(region.Bytes()),
		logger:  options.logger,
		mode:    options.mode,
		workers: options.workers,
		sealed:  !region.Writable(),
	}
}

// Capacity returns the number of slots.
func (s *Store) Capacity() int64 {
	return int64(s.arr.Len())
}

// Path returns the backing file, or "" for a memory store.
func (s *Store) Path() string {
	return s.region.Name()
}

// Next returns the lowest slot that can still be written, which is
// where Load starts.
func (s *Store) Next() int64 {
	return s.next
}

// Sealed reports whether the populate phase is over.
func (s *Store) Sealed() bool {
	return s.sealed
}

// Get returns the packed word in slot.
func (s *Store) Get(slot int64) (uint64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return s.arr.Get(slot)
}

// Record returns the decoded record in slot.
func (s *Store) Record(slot int64) (record.Record, error) {
	word, err := s.Get(slot)
	if err != nil {
		return record.Record{}, err
	}
	return record.Decode(word), nil
}

// Set stores a packed word in slot.  Slots must be written in strictly
// increasing order (gaps are fine and stay zero), and only before Seal.
func (s *Store) Set(slot int64, word uint64) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.sealed {
		return ErrSealed
	}
	if slot < 0 || slot >= s.Capacity() {
		return &OutOfRangeError{Slot: slot, Len: s.Capacity()}
	}
	if slot < s.next {
		return fmt.Errorf("%w: slot %d after slot %d", ErrOutOfOrder, slot, s.next-1)
	}
	if err := s.arr.Set(slot, word); err != nil {
		return err
	}
	s.next = slot + 1
	return nil
}

// Put encodes value, position and flags and stores the record in slot.
func (s *Store) Put(slot int64, value, position, flags uint16) error {
	return s.Set(slot, record.Encode(value, position, flags))
}

// Load writes every item from it into consecutive slots, starting at
// Next.  It returns the number of records written.  Items are stored
// with the positions it yields: a dataset.Reader numbers them from 0
// unless built with dataset.FirstPosition(s.Next()).
func (s *Store) Load(ctx context.Context, it dataset.Iter) (int64, error) {
	start := time.Now()
	var n int64
	for item, ok := it.Next(); ok; item, ok = it.Next() {
		if n%loadCheckEvery == loadCheckEvery-1 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if err := s.Put(s.next, item.Value, item.Position, item.Flags); err != nil {
			if errors.Is(err, ErrOutOfRange) {
				return n, fmt.Errorf("feed has more than %d records: %w", s.Capacity(), err)
			}
			return n, err
		}
		n++
	}
	if err := it.Err(); err != nil {
		return n, fmt.Errorf("reading feed: %w", err)
	}
	s.logger.Info("loaded records", "count", n, "duration", time.Since(start))
	return n, nil
}

// Sync flushes a file-backed store's dirty pages.  It makes no
// durability promise beyond what msync(2) provides.
func (s *Store) Sync() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.region.Sync()
}

// Seal ends the populate phase: the region is flushed, and any further
// Set fails with ErrSealed.
func (s *Store) Seal() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.sealed {
		return nil
	}
	if err := s.region.Sync(); err != nil {
		return fmt.Errorf("region.Sync: %w", err)
	}
	if err := s.region.Advise(mmap.AccessRandom); err != nil {
		s.logger.Warn("madvise failed, continuing anyway", "err", err)
	}
	s.sealed = true
	s.logger.Info("sealed store", "path", s.Path(), "written", s.next)
	return nil
}

// FindFirst returns the first record matching q.  If nothing matches, or
// the store is closed, ok is false.
func (s *Store) FindFirst(q query.Query, opts ...QueryOption) (m Match, ok bool) {
	m, ok, _ = s.FindFirstContext(context.Background(), q, opts...)
	return m, ok
}

// FindFirstContext is FindFirst with cancellation.
func (s *Store) FindFirstContext(ctx context.Context, q query.Query, opts ...QueryOption) (Match, bool, error) {
	if s.closed.Load() {
		return Match{}, false, ErrClosed
	}
	options := queryOptions{mode: s.mode}
	for _, opt := range opts {
		opt(&options)
	}

	start := time.Now()
	res, err := search.First(ctx, s.arr, q, options.mode)
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.Debug("find first",
			"query", q,
			"mode", options.mode.String(),
			"found", res.Found,
			"slot", res.Slot,
			"probes", res.Probes,
			"duration", time.Since(start))
	}
	if err != nil {
		return Match{}, false, err
	}
	if !res.Found {
		return Match{}, false, nil
	}
	return Match{
		Slot:   int64(res.Slot),
		Record: record.Decode(s.arr.Word(res.Slot)),
	}, true, nil
}

// FindAll returns the slots of every record matching q.
func (s *Store) FindAll(ctx context.Context, q query.Query) (*roaring64.Bitmap, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	bm, err := search.All(ctx, s.arr, q, search.WithWorkers(s.workers))
	if err != nil {
		return nil, err
	}
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		s.logger.Debug("find all", "query", q, "matches", bm.GetCardinality(), "duration", time.Since(start))
	}
	return bm, nil
}

// corrupt matches written slots whose checksum doesn't validate.
// Never-written slots are all zero and are skipped.
type corrupt struct{}

func (corrupt) Matches(word uint64) bool {
	return word != 0 && !record.Decode(word).Valid()
}

// Verify returns the slots holding a record whose checksum fails.
func (s *Store) Verify(ctx context.Context) (*roaring64.Bitmap, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	bm, err := search.All(ctx, s.arr, corrupt{}, search.WithWorkers(s.workers))
	if err != nil {
		return nil, err
	}
	if !bm.IsEmpty() {
		s.logger.Warn("corrupt records found", "count", bm.GetCardinality(), "first", bm.Minimum())
	}
	return bm, nil
}

// Digest returns a farmhash of the store's contents.
func (s *Store) Digest() (uint64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	return snapshot.Digest(s.arr.Bytes()), nil
}

// Export writes a compressed snapshot of the store to w.
func (s *Store) Export(w io.Writer, codec snapshot.Codec) error {
	if s.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	if err := snapshot.Write(w, s.arr.Bytes(), codec); err != nil {
		return fmt.Errorf("snapshot.Write: %w", err)
	}
	s.logger.Info("exported snapshot", "codec", codec.String(), "capacity", s.Capacity(), "duration", time.Since(start))
	return nil
}

// Import creates a store at path from a snapshot read from r.  An empty
// path creates a memory store.  The snapshot is decoded and its digest
// checked in a staged file, so a failed import leaves any existing file
// at path untouched.  The returned store is sealed.
func Import(r io.Reader, path string, opts ...Option) (*Store, error) {
	h, err := snapshot.ReadHeader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot.ReadHeader: %w", err)
	}
	if h.Capacity > math.MaxInt64/record.Size {
		return nil, fmt.Errorf("%w: snapshot capacity %d", ErrCapacity, h.Capacity)
	}
	capacity := int64(h.Capacity)

	var s *Store
	if path == "" {
		s, err = NewMemory(capacity, opts...)
	} else {
		s, err = Build(path, capacity, opts...)
	}
	if err != nil {
		return nil, err
	}

	if err := h.Decode(r, s.arr.Bytes()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	s.next = capacity
	if path == "" {
		err = s.Seal()
	} else {
		err = s.Commit()
	}
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Commit seals a store returned by Build and moves it to its final
// path, replacing any file already there.
func (s *Store) Commit() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.target == "" {
		return ErrNotStaged
	}
	if err := s.Seal(); err != nil {
		return err
	}
	staged := s.region.Name()
	if err := s.region.Rename(s.target); err != nil {
		return fmt.Errorf("region.Rename: %w", err)
	}
	s.target = ""
	s.logger.Info("committed store", "path", s.Path(), "staged", staged)
	return nil
}

// Close releases the mapping and the backing file.  A store staged by
// Build and never committed has its staged file removed.  It is safe to
// call more than once; every other method fails with ErrClosed
// afterwards.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	staged := s.region.Name()
	s.logger.Info("closing store", "path", staged)
	err := s.region.Close()
	if s.target != "" {
		if rmErr := os.Remove(staged); rmErr != nil && err == nil {
			err = fmt.Errorf("os.Remove: %w", rmErr)
		}
		s.logger.Info("discarded staged store", "path", s.target, "staged", staged)
	}
	return err
}
