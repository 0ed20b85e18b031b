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

// Package bgzf writes block compressed gzip files as used by htslib.
// A BGZF file is a series of gzip members of at most 64KiB each,
// followed by an empty end-of-file member, so any gzip reader can
// decompress it. Readers of BGZF input therefore need no special
// support.
package bgzf

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"sync"

	"github.com/exascience/pargo/pipeline"
	"github.com/klauspost/compress/flate"
)

// maxBlockData is the maximum number of uncompressed bytes per
// member. It leaves room for incompressible data to stay below the
// 64KiB member limit after deflate framing.
const maxBlockData = 0xff00

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("bgzf: write to closed writer")

var eofMarker = [...]byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x1b, 0x00,
	0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// memberHeader is a gzip header with the BC extra subfield. The block
// size at offset 16 is filled in per member.
var memberHeader = [...]byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x00, 0x00,
}

type chunk struct {
	data []byte
}

var chunkPool = sync.Pool{New: func() interface{} {
	return &chunk{data: make([]byte, 0, maxBlockData+1024)}
}}

func getChunk() *chunk {
	c := chunkPool.Get().(*chunk)
	if cap(c.data) < maxBlockData {
		c.data = make([]byte, 0, maxBlockData+1024)
	}
	return c
}

type (
	// Writer compresses its input into BGZF members. Members are
	// deflated in parallel and written to the underlying writer in
	// order.
	Writer struct {
		w       io.Writer
		level   int
		p       pipeline.Pipeline
		wait    sync.WaitGroup
		ctx     context.Context
		cancel  context.CancelFunc
		pending *chunk
		chunks  chan *chunk
		current interface{}
		flaters sync.Pool
		closed  bool
	}

	chunkSource Writer
)

func (*chunkSource) Err() error {
	return nil
}

func (src *chunkSource) Prepare(_ context.Context) (size int) {
	return -1
}

func (src *chunkSource) Fetch(_ int) (fetched int) {
	select {
	case <-src.ctx.Done():
	case c, ok := <-src.chunks:
		if ok {
			src.current = c
			return 1
		}
	}
	src.current = nil
	return 0
}

func (src *chunkSource) Data() interface{} {
	return src.current
}

// NewWriter returns a Writer that compresses to w at the given
// flate compression level.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	if _, err := flate.NewWriter(io.Discard, level); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	bgzf := &Writer{
		w:       w,
		level:   level,
		ctx:     ctx,
		cancel:  cancel,
		pending: getChunk(),
		chunks:  make(chan *chunk, 1),
	}
	bgzf.p.Source((*chunkSource)(bgzf))
	bgzf.p.Add(
		pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
			return bgzf.deflate(data.(*chunk))
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			member := data.(*chunk)
			if _, err := bgzf.w.Write(member.data); err != nil {
				bgzf.fail(err)
			}
			member.data = member.data[:0]
			chunkPool.Put(member)
			return nil
		})),
	)
	bgzf.wait.Add(1)
	go func() {
		defer bgzf.wait.Done()
		bgzf.p.Run()
	}()
	return bgzf, nil
}

func (bgzf *Writer) fail(err error) {
	bgzf.p.SetErr(err)
	bgzf.cancel()
}

func (bgzf *Writer) flater(w io.Writer) (*flate.Writer, error) {
	if pooled := bgzf.flaters.Get(); pooled != nil {
		fw := pooled.(*flate.Writer)
		fw.Reset(w)
		return fw, nil
	}
	return flate.NewWriter(w, bgzf.level)
}

// deflate turns an uncompressed chunk into a complete gzip member.
func (bgzf *Writer) deflate(in *chunk) *chunk {
	out := getChunk()
	buf := bytes.NewBuffer(out.data[:0])
	buf.Write(memberHeader[:])
	fw, err := bgzf.flater(buf)
	if err != nil {
		bgzf.fail(err)
		return out
	}
	if _, err := fw.Write(in.data); err != nil {
		bgzf.fail(err)
	} else if err := fw.Close(); err != nil {
		bgzf.fail(err)
	}
	bgzf.flaters.Put(fw)
	member := buf.Bytes()
	member = binary.LittleEndian.AppendUint32(member, crc32.ChecksumIEEE(in.data))
	member = binary.LittleEndian.AppendUint32(member, uint32(len(in.data)))
	binary.LittleEndian.PutUint16(member[16:18], uint16(len(member)-1))
	out.data = member
	in.data = in.data[:0]
	chunkPool.Put(in)
	return out
}

func (bgzf *Writer) send() error {
	select {
	case <-bgzf.ctx.Done():
		if err := bgzf.p.Err(); err != nil {
			return err
		}
		return bgzf.ctx.Err()
	case bgzf.chunks <- bgzf.pending:
		bgzf.pending = getChunk()
		return nil
	}
}

// Write implements io.Writer.
func (bgzf *Writer) Write(p []byte) (n int, err error) {
	if bgzf.closed {
		return 0, ErrClosed
	}
	for len(p) > 0 {
		k := copy(bgzf.pending.data[len(bgzf.pending.data):maxBlockData], p)
		bgzf.pending.data = bgzf.pending.data[:len(bgzf.pending.data)+k]
		p = p[k:]
		n += k
		if len(bgzf.pending.data) == maxBlockData {
			if err = bgzf.send(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

// Close flushes the remaining data, waits for all members to be
// written, and appends the end-of-file marker. It does not close the
// underlying writer.
func (bgzf *Writer) Close() error {
	if bgzf.closed {
		return ErrClosed
	}
	bgzf.closed = true
	var err error
	if len(bgzf.pending.data) > 0 {
		err = bgzf.send()
	}
	close(bgzf.chunks)
	bgzf.wait.Wait()
	bgzf.cancel()
	if perr := bgzf.p.Err(); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}
	_, err = bgzf.w.Write(eofMarker[:])
	return err
}
