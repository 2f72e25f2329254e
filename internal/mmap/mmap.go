// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmap hands out fixed-size, byte-addressable memory regions,
// either backed by a shared file mapping or anonymous memory.  A Region
// owns its mapping and must be released with Close.
package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var (
	// ErrClosed is returned by operations on a closed Region.
	ErrClosed = errors.New("mmap: region is closed")
	// ErrSize reports a negative size or one that doesn't fit in an int.
	ErrSize = errors.New("mmap: invalid size")
	// ErrAnonymous is returned by file operations on an anonymous Region.
	ErrAnonymous = errors.New("mmap: region has no backing file")
)

// AccessPattern is a hint to the kernel about upcoming accesses.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
)

// Region is a contiguous mapped byte range.
type Region struct {
	data     []byte
	f        *os.File
	name     string
	writable bool
	closed   atomic.Bool
}

// Create creates (or truncates) the file at path, sizes it to size bytes
// and maps it shared and read-write.  The new contents are all zero.
func Create(path string, size int64) (*Region, error) {
	if size < 0 || int64(int(size)) != size {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("f.Truncate(%d): %w", size, err)
	}
	return mapFile(f, int(size), true)
}

// CreateTemp is Create for a new file in dir, named by pattern as in
// os.CreateTemp.  The file is removed again if it can't be sized or
// mapped, so a failed call leaves nothing behind.
func CreateTemp(dir, pattern string, size int64) (*Region, error) {
	if size < 0 || int64(int(size)) != size {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("os.CreateTemp(%s): %w", dir, err)
	}
	name := f.Name()
	if err := f.Chmod(0644); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return nil, fmt.Errorf("f.Chmod: %w", err)
	}
	if err := f.Truncate(size); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return nil, fmt.Errorf("f.Truncate(%d): %w", size, err)
	}
	r, err := mapFile(f, int(size), true)
	if err != nil {
		_ = os.Remove(name)
		return nil, err
	}
	return r, nil
}

// Open maps the existing file at path read-only.
func Open(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s): %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("f.Stat: %w", err)
	}
	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		_ = f.Close()
		return nil, fmt.Errorf("%w: file %s has size %d", ErrSize, path, size)
	}
	return mapFile(f, int(size), false)
}

func mapFile(f *os.File, size int, writable bool) (*Region, error) {
	r := &Region{
		f:        f,
		name:     f.Name(),
		writable: writable,
	}
	// mmap(2) rejects zero-length mappings
	if size == 0 {
		return r, nil
	}
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("unix.Mmap(%s, %d): %w", f.Name(), size, err)
	}
	r.data = data
	return r, nil
}

// Anon maps size bytes of zeroed, private, read-write memory not backed
// by any file.
func Anon(size int64) (*Region, error) {
	if size < 0 || int64(int(size)) != size {
		return nil, fmt.Errorf("%w: %d", ErrSize, size)
	}
	r := &Region{writable: true}
	if size == 0 {
		return r, nil
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("unix.Mmap(anon, %d): %w", size, err)
	}
	r.data = data
	return r, nil
}

// Bytes returns the mapped memory, or nil once the region is closed.
// The slice must not be used after Close.
func (r *Region) Bytes() []byte {
	if r.closed.Load() {
		return nil
	}
	return r.data
}

// Len returns the size of the region in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Writable reports whether the region was mapped read-write.
func (r *Region) Writable() bool {
	return r.writable
}

// Name returns the path of the backing file, or "" for anonymous regions.
func (r *Region) Name() string {
	return r.name
}

// Rename moves the backing file to path, replacing any file already
// there.  The mapping is unaffected.
func (r *Region) Rename(path string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if r.f == nil {
		return ErrAnonymous
	}
	if err := os.Rename(r.name, path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	r.name = path
	return nil
}

// Sync flushes dirty pages of a file-backed region to the file.  It is a
// no-op for anonymous and read-only regions.
func (r *Region) Sync() error {
	if r.closed.Load() {
		return ErrClosed
	}
	if r.f == nil || !r.writable || len(r.data) == 0 {
		return nil
	}
	if err := unix.Msync(r.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("unix.Msync: %w", err)
	}
	return nil
}

// Advise passes an access pattern hint to the kernel.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if len(r.data) == 0 {
		return nil
	}
	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	default:
		advice = unix.MADV_NORMAL
	}
	if err := unix.Madvise(r.data, advice); err != nil {
		return fmt.Errorf("madvise: %w", err)
	}
	return nil
}

// Close unmaps the region and closes the backing file.  It is safe to
// call more than once.
func (r *Region) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	var err error
	if r.data != nil {
		err = unix.Munmap(r.data)
		r.data = nil
	}
	if r.f != nil {
		if closeErr := r.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.f = nil
	}
	return err
}
