// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/bitrec/record"
)

// readAll reads a whole snapshot into memory.
func readAll(r io.Reader) (*Header, []byte, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}
	payload := make([]byte, h.PayloadLen())
	if err := h.Decode(r, payload); err != nil {
		return nil, nil, err
	}
	return h, payload, nil
}

func testPayload(n int) []byte {
	payload := make([]byte, n*8)
	for i := 0; i < n; i++ {
		pos := uint16(i)
		binary.LittleEndian.PutUint64(payload[i*8:], record.Encode(uint16(i%65536), pos, record.EvenPositionFlags(pos)))
	}
	return payload
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("zstd")
	require.NoError(t, err)
	assert.Equal(t, Zstd, c)
	c, err = ParseCodec("LZ4")
	require.NoError(t, err)
	assert.Equal(t, LZ4, c)
	c, err = ParseCodec("")
	require.NoError(t, err)
	assert.Equal(t, Zstd, c)
	_, err = ParseCodec("gzip")
	assert.Error(t, err)

	assert.Equal(t, "zstd", Zstd.String())
	assert.Equal(t, "lz4", LZ4.String())
	assert.Equal(t, "Codec(9)", Codec(9).String())
}

func TestHeader_RoundTrip(t *testing.T) {
	origH := newHeader(LZ4, 1234, 0xdeadbeef)

	err := origH.MarshalTo(nil)
	assert.Error(t, err)

	headerBytes := make([]byte, headerSize)
	var newH Header
	// missing magic number
	err = newH.UnmarshalBytes(headerBytes)
	assert.Error(t, err)

	require.NoError(t, origH.MarshalTo(headerBytes))
	err = newH.UnmarshalBytes(nil)
	assert.Error(t, err)
	require.NoError(t, newH.UnmarshalBytes(headerBytes))
	assert.Equal(t, origH, &newH)
	assert.Equal(t, uint64(1234*8), newH.PayloadLen())

	// unknown versions are rejected
	origH.formatVersion = 666
	require.NoError(t, origH.MarshalTo(headerBytes))
	assert.Error(t, newH.UnmarshalBytes(headerBytes))

	// as are unknown codecs
	origH.formatVersion = formatVersion
	origH.Codec = 77
	require.NoError(t, origH.MarshalTo(headerBytes))
	assert.Error(t, newH.UnmarshalBytes(headerBytes))

	// and capacities nothing could back
	origH.Codec = Zstd
	origH.Capacity = 1 << 50
	require.NoError(t, origH.MarshalTo(headerBytes))
	assert.ErrorIs(t, newH.UnmarshalBytes(headerBytes), ErrTooLarge)
	origH.Capacity = MaxCapacity
	require.NoError(t, origH.MarshalTo(headerBytes))
	assert.NoError(t, newH.UnmarshalBytes(headerBytes))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	for _, codec := range []Codec{Zstd, LZ4} {
		for _, n := range []int{0, 1, 10, 100000} {
			payload := testPayload(n)
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, payload, codec))
			if n == 100000 {
				// the generated data is very regular
				assert.Less(t, buf.Len(), len(payload))
			}

			h, got, err := readAll(&buf)
			require.NoError(t, err, "codec %s n %d", codec, n)
			assert.Equal(t, codec, h.Codec)
			assert.Equal(t, uint64(n), h.Capacity)
			assert.Equal(t, Digest(payload), h.Digest)
			assert.Equal(t, payload, got)
		}
	}
}

func TestWrite_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, make([]byte, 7), Zstd))
	assert.Error(t, Write(&buf, make([]byte, 8), Codec(0)))
}

func TestRead_Corruption(t *testing.T) {
	payload := testPayload(1000)
	for _, codec := range []Codec{Zstd, LZ4} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, payload, codec))
		snap := buf.Bytes()

		// truncated
		_, _, err := readAll(bytes.NewReader(snap[:len(snap)/2]))
		assert.Error(t, err)
		_, _, err = readAll(bytes.NewReader(snap[:10]))
		assert.Error(t, err)

		// digest no longer matches the payload
		bad := bytes.Clone(snap)
		binary.LittleEndian.PutUint64(bad[24:32], Digest(payload)+1)
		_, _, err = readAll(bytes.NewReader(bad))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDigestMismatch))
	}
}

func TestHeader_DecodeWrongSize(t *testing.T) {
	payload := testPayload(4)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, payload, Zstd))
	h, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Error(t, h.Decode(&buf, make([]byte, 8)))
}
