// Copyright 2021 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package ondisk

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/bitrec/internal/mmap"
)

func TestUint64Array(t *testing.T) {
	const arrayLen = 12
	buf := make([]byte, arrayLen*8)
	arr := NewUint64Array(buf)
	require.Equal(t, arrayLen, arr.Len())

	err := arr.Set(12, 0)
	require.Error(t, err)
	_, err = arr.Get(13)
	require.Error(t, err)
	_, err = arr.Get(-1)
	require.Error(t, err)

	for i := int64(0); i < arrayLen; i++ {
		err := arr.Set(i, uint64(i*2)|uint64(i)<<56)
		require.NoError(t, err)
	}
	for i := int64(0); i < arrayLen; i++ {
		v, err := arr.Get(i)
		require.NoError(t, err)
		require.Equal(t, uint64(i*2)|uint64(i)<<56, v)
		require.Equal(t, v, arr.Word(int(i)))
		// stored little-endian at a fixed stride of 8
		require.Equal(t, v, binary.LittleEndian.Uint64(buf[i*8:i*8+8]))
	}
	require.Equal(t, buf, arr.Bytes())
}

func TestUint64Array_OutOfRangeError(t *testing.T) {
	arr := NewUint64Array(make([]byte, 16))
	err := arr.Set(2, 1)
	require.ErrorIs(t, err, ErrOutOfRange)

	var oor *OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, int64(2), oor.Slot)
	assert.Equal(t, int64(2), oor.Len)
	assert.Equal(t, "slot (2) out of range (len 2)", oor.Error())

	// a failed write doesn't touch memory
	assert.Equal(t, make([]byte, 16), arr.Bytes())
}

func TestUint64Array_PartialWord(t *testing.T) {
	arr := NewUint64Array(make([]byte, 20))
	assert.Equal(t, 2, arr.Len())
	assert.Len(t, arr.Bytes(), 16)

	empty := NewUint64Array(nil)
	assert.Equal(t, 0, empty.Len())
	_, err := empty.Get(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestUint64Array_Mapped(t *testing.T) {
	const arrayLen = 512
	r, err := mmap.Anon(arrayLen * 8)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	arr := NewUint64Array(r.Bytes())
	require.Equal(t, arrayLen, arr.Len())
	for i := int64(0); i < arrayLen; i++ {
		v, err := arr.Get(i)
		require.NoError(t, err)
		require.Zero(t, v)
		require.NoError(t, arr.Set(i, ^uint64(i)))
	}
	for i := 0; i < arrayLen; i++ {
		require.Equal(t, ^uint64(i), arr.Word(i))
	}
}
