// readlift: lifting simulated long-read alignments over to a reference genome.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/readlift/blob/master/LICENSE.txt>.

package bgzf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math/rand"
	"strconv"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload(n int) []byte {
	var buf bytes.Buffer
	rnd := rand.New(rand.NewSource(42))
	for i := 0; buf.Len() < n; i++ {
		buf.WriteString("read")
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString("\tchr1:")
		buf.WriteString(strconv.Itoa(rnd.Intn(1 << 28)))
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func TestWriterRoundTrip(t *testing.T) {
	payload := testPayload(1 << 20)
	var out bytes.Buffer
	w, err := NewWriter(&out, flate.BestSpeed)
	require.NoError(t, err)
	for rest := payload; len(rest) > 0; {
		k := 1000
		if k > len(rest) {
			k = len(rest)
		}
		n, err := w.Write(rest[:k])
		require.NoError(t, err)
		require.Equal(t, k, n)
		rest = rest[k:]
	}
	require.NoError(t, w.Close())

	compressed := out.Bytes()
	assert.True(t, bytes.HasSuffix(compressed, eofMarker[:]))

	members := 0
	for offset := 0; offset < len(compressed); members++ {
		require.GreaterOrEqual(t, len(compressed)-offset, 18)
		assert.Equal(t, byte('B'), compressed[offset+12])
		assert.Equal(t, byte('C'), compressed[offset+13])
		size := int(binary.LittleEndian.Uint16(compressed[offset+16:offset+18])) + 1
		require.LessOrEqual(t, size, 1<<16)
		offset += size
	}
	assert.Greater(t, members, 2)

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, payload, decompressed)
}

func TestWriterEmpty(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, flate.BestSpeed)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, eofMarker[:], out.Bytes())
	assert.ErrorIs(t, w.Close(), ErrClosed)
	_, err = w.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWriterInvalidLevel(t *testing.T) {
	_, err := NewWriter(io.Discard, 42)
	assert.Error(t, err)
}

type failingWriter struct{}

var errFailed = errors.New("failed")

func (failingWriter) Write([]byte) (int, error) {
	return 0, errFailed
}

func TestWriterPropagatesErrors(t *testing.T) {
	w, err := NewWriter(failingWriter{}, flate.BestSpeed)
	require.NoError(t, err)
	payload := testPayload(1 << 20)
	var werr error
	for rest := payload; len(rest) > 0 && werr == nil; {
		k := 4096
		if k > len(rest) {
			k = len(rest)
		}
		_, werr = w.Write(rest[:k])
		rest = rest[k:]
	}
	cerr := w.Close()
	assert.True(t, errors.Is(werr, errFailed) || errors.Is(cerr, errFailed))
}
