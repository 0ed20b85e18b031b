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

package internal

import "sync"

// buffers larger than this are not returned to the pool
const maxPooledBufferSize = 1 << 22

var bufPool = sync.Pool{New: func() interface{} {
	return []byte(nil)
}}

/*
ReserveByteBuffer uses a sync.Pool to either reuse or make a slice of
bytes of length 0, but of capacity potentially larger than 0.

Use ReleaseByteBuffer to return slices of bytes to the internal pool.
*/
func ReserveByteBuffer() []byte {
	return bufPool.Get().([]byte)[:0]
}

/*
ReleaseByteBuffer returns the given slice of bytes to the internal
sync.Pool from which ReserveByteBuffer can fetch it again.
*/
func ReleaseByteBuffer(buf []byte) {
	if cap(buf) > maxPooledBufferSize {
		return
	}
	bufPool.Put(buf[:0]) //nolint:staticcheck
}
