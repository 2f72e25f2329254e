// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_SharedWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.dat")

	r, err := Create(path, 4096)
	require.NoError(t, err)
	require.True(t, r.Writable())
	require.Equal(t, 4096, r.Len())
	require.Equal(t, path, r.Name())

	data := r.Bytes()
	require.Equal(t, make([]byte, 4096), data)
	copy(data[100:], "hello")
	require.NoError(t, r.Sync())
	require.NoError(t, r.Advise(AccessRandom))
	require.NoError(t, r.Close())

	// the write went through to the file
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, contents, 4096)
	assert.Equal(t, "hello", string(contents[100:105]))

	ro, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ro.Close() }()
	assert.False(t, ro.Writable())
	assert.Equal(t, "hello", string(ro.Bytes()[100:105]))
	// read-only regions have nothing to flush
	assert.NoError(t, ro.Sync())
}

func TestCreate_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.dat")
	require.NoError(t, os.WriteFile(path, []byte("not zero"), 0644))

	r, err := Create(path, 16)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Equal(t, make([]byte, 16), r.Bytes())
}

func TestAnon(t *testing.T) {
	r, err := Anon(1 << 16)
	require.NoError(t, err)
	assert.Equal(t, "", r.Name())
	assert.True(t, r.Writable())
	r.Bytes()[0] = 1
	assert.NoError(t, r.Sync())
	require.NoError(t, r.Close())

	_, err = Anon(-1)
	assert.ErrorIs(t, err, ErrSize)
}

func TestZeroLength(t *testing.T) {
	r, err := Anon(0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Bytes())
	assert.NoError(t, r.Advise(AccessSequential))
	assert.NoError(t, r.Close())

	path := filepath.Join(t.TempDir(), "empty.dat")
	r, err = Create(path, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.NoError(t, r.Close())

	r, err = Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
	assert.NoError(t, r.Close())
}

func TestClose(t *testing.T) {
	r, err := Anon(4096)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	// multiple closes are fine
	require.NoError(t, r.Close())

	assert.Nil(t, r.Bytes())
	assert.ErrorIs(t, r.Sync(), ErrClosed)
	assert.ErrorIs(t, r.Advise(AccessRandom), ErrClosed)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("/doesnt/exist")
	assert.Error(t, err)

	_, err = Create(filepath.Join(t.TempDir(), "missing-dir", "x"), 8)
	assert.Error(t, err)
}

func TestCreateTemp_Rename(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "final.dat")
	require.NoError(t, os.WriteFile(dst, []byte("previous contents"), 0644))

	r, err := CreateTemp(dir, "region.*.tmp", 64)
	require.NoError(t, err)
	staged := r.Name()
	assert.NotEqual(t, dst, staged)
	assert.Equal(t, dir, filepath.Dir(staged))

	copy(r.Bytes(), "staged")
	// the existing file is untouched until the rename
	contents, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "previous contents", string(contents))

	require.NoError(t, r.Rename(dst))
	assert.Equal(t, dst, r.Name())
	// the mapping survives the rename
	copy(r.Bytes()[8:], "after")
	require.NoError(t, r.Sync())
	require.NoError(t, r.Close())

	contents, err = os.ReadFile(dst)
	require.NoError(t, err)
	require.Len(t, contents, 64)
	assert.Equal(t, "staged", string(contents[:6]))
	assert.Equal(t, "after", string(contents[8:13]))
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))

	fi, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), fi.Mode().Perm())

	assert.ErrorIs(t, r.Rename(dst), ErrClosed)
}

func TestCreateTemp_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := CreateTemp(dir, "region.*.tmp", -1)
	assert.ErrorIs(t, err, ErrSize)

	_, err = CreateTemp(filepath.Join(dir, "missing-dir"), "region.*.tmp", 8)
	assert.Error(t, err)

	leftovers, err := filepath.Glob(filepath.Join(dir, "region.*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	anon, err := Anon(8)
	require.NoError(t, err)
	defer func() { _ = anon.Close() }()
	assert.ErrorIs(t, anon.Rename(filepath.Join(dir, "x")), ErrAnonymous)
}
