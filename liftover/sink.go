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

package liftover

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	"github.com/exascience/readlift/utils/bgzf"
)

// ErrSinkClosed is returned when a Sink is used after Close.
var ErrSinkClosed = errors.New("output already closed")

// Compression selects the output encoding of a Sink.
type Compression int

// Supported output encodings.
const (
	NoCompression Compression = iota
	Gzip
	BGZF
)

func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case Gzip:
		return "gzip"
	case BGZF:
		return "bgzf"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// ParseCompression parses "none", "gzip" or "bgzf". The empty string
// means no compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return NoCompression, nil
	case "gzip":
		return Gzip, nil
	case "bgzf":
		return BGZF, nil
	default:
		return NoCompression, fmt.Errorf("unknown compression %q", s)
	}
}

// A Sink is a block-buffered, optionally compressed, output stream
// for liftover records. Output is written in 64KiB blocks, not per
// line, and only complete after Close. A Sink must be closed exactly
// once.
type Sink struct {
	buf        *bufio.Writer
	compressor io.WriteCloser
	closer     io.Closer
	closed     bool
}

// NewSink wraps w in a Sink. Compressed output uses the fastest
// compression level. Close does not close w.
func NewSink(w io.Writer, compression Compression) (*Sink, error) {
	sink := &Sink{}
	switch compression {
	case NoCompression:
	case Gzip:
		gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
		if err != nil {
			return nil, err
		}
		sink.compressor = gz
	case BGZF:
		bw, err := bgzf.NewWriter(w, flate.BestSpeed)
		if err != nil {
			return nil, err
		}
		sink.compressor = bw
	default:
		return nil, fmt.Errorf("unknown compression %v", compression)
	}
	if sink.compressor != nil {
		sink.buf = bufio.NewWriterSize(sink.compressor, 1<<16)
	} else {
		sink.buf = bufio.NewWriterSize(w, 1<<16)
	}
	return sink, nil
}

// CreateSink creates the named file and wraps it in a Sink. An empty
// filename or "-" writes to standard output, which is flushed but not
// closed by Close.
func CreateSink(filename string, compression Compression) (*Sink, error) {
	if filename == "" || filename == "-" || filename == "/dev/stdout" {
		return NewSink(os.Stdout, compression)
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	sink, err := NewSink(file, compression)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	sink.closer = file
	return sink, nil
}

// Write implements io.Writer.
func (sink *Sink) Write(p []byte) (int, error) {
	if sink.closed {
		return 0, ErrSinkClosed
	}
	return sink.buf.Write(p)
}

// Close flushes all buffered output, finishes the compressed stream
// if any, and closes the underlying file if the Sink created it.
func (sink *Sink) Close() error {
	if sink.closed {
		return ErrSinkClosed
	}
	sink.closed = true
	err := sink.buf.Flush()
	if sink.compressor != nil {
		if nerr := sink.compressor.Close(); err == nil {
			err = nerr
		}
	}
	if sink.closer != nil {
		if nerr := sink.closer.Close(); err == nil {
			err = nerr
		}
	}
	return err
}

// IsBrokenPipe reports whether an error is a broken pipe / closed pipe,
// which happens when a downstream consumer stops reading early.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
