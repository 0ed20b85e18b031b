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

package utils

import (
	"bufio"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// IsGzip determines if the the given byte scanner produces
// a gzip file. It uses ReadByte and UnreadByte to check
// only the initial byte from the input.
func IsGzip(scanner io.ByteScanner) (bool, error) {
	b, err := scanner.ReadByte()
	if err == io.EOF {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if err := scanner.UnreadByte(); err != nil {
		return false, err
	}
	return b == 0x1f, nil
}

// HandleGzip returns a reader that transparently decompresses buf if
// it holds gzip data. BGZF data is gzip with multiple members, and is
// handled as well. The returned closer releases the decompressor, and
// is a no-op for uncompressed input.
func HandleGzip(buf *bufio.Reader) (io.Reader, func() error, error) {
	ok, err := IsGzip(buf)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return buf, func() error { return nil }, nil
	}
	gz, err := gzip.NewReader(buf)
	if err != nil {
		return nil, nil, err
	}
	return gz, gz.Close, nil
}

type inputFile struct {
	io.Reader
	file  *os.File
	close func() error
}

func (f *inputFile) Close() error {
	err := f.close()
	if nerr := f.file.Close(); err == nil {
		err = nerr
	}
	return err
}

// OpenInput opens the named file for reading, decompressing it on
// the fly if it is gzip or BGZF compressed. "-" and "/dev/stdin" read
// from standard input.
func OpenInput(filename string) (io.ReadCloser, error) {
	var file *os.File
	if filename == "-" || filename == "/dev/stdin" {
		file = os.Stdin
	} else {
		var err error
		if file, err = os.Open(filename); err != nil {
			return nil, err
		}
	}
	reader, closer, err := HandleGzip(bufio.NewReader(file))
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	return &inputFile{Reader: reader, file: file, close: closer}, nil
}
