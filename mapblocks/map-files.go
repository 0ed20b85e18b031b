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

package mapblocks

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/exascience/readlift/internal"
	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/utils"
)

// map file columns
const (
	mfSize = iota
	mfSourceContig
	mfSourcePos
	mfTargetContig
	mfTargetPos
	mfStrand
	mfKind
	mfVariantID
)

/*
ParseBlock parses one line of a map file.

Map files are tab-separated tables with the columns size, source
contig, source position, target contig, target position, strand, and
optionally block kind and variant id. Positions are 1-based.
*/
func ParseBlock(line string) (block MappingBlock, err error) {
	fields := strings.Fields(line)
	if len(fields) <= mfStrand {
		return block, fmt.Errorf("expected at least %v fields, found %v", mfStrand+1, len(fields))
	}
	size, err := strconv.ParseInt(fields[mfSize], 10, 32)
	if err != nil || size < 0 {
		return block, fmt.Errorf("invalid size %q", fields[mfSize])
	}
	sourcePos, err := strconv.ParseInt(fields[mfSourcePos], 10, 32)
	if err != nil || sourcePos < 1 || sourcePos-1+size > 1<<31-1 {
		return block, fmt.Errorf("invalid source position %q", fields[mfSourcePos])
	}
	targetPos, err := strconv.ParseInt(fields[mfTargetPos], 10, 32)
	if err != nil || targetPos < 1 || targetPos-1+size > 1<<31-1 {
		return block, fmt.Errorf("invalid target position %q", fields[mfTargetPos])
	}
	block.SourceContig = utils.Intern(fields[mfSourceContig])
	block.Source.Start = int32(sourcePos - 1)
	block.Source.End = block.Source.Start + int32(size)
	block.TargetContig = utils.Intern(fields[mfTargetContig])
	block.TargetStart = int32(targetPos - 1)
	switch fields[mfStrand] {
	case "+":
		block.Strand = intervals.Forward
	case "-":
		block.Strand = intervals.Reverse
	default:
		return block, fmt.Errorf("invalid strand %q", fields[mfStrand])
	}
	if len(fields) > mfKind {
		if block.Kind, err = ParseBlockKind(fields[mfKind]); err != nil {
			return block, err
		}
	}
	if len(fields) > mfVariantID {
		block.VariantID = fields[mfVariantID]
	}
	return block, nil
}

// ParseMap reads all blocks from a map file and builds a BlockIndex
// from them. The name is only used in error messages.
func ParseMap(r io.Reader, name string) (*BlockIndex, error) {
	var blocks []MappingBlock
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<20)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); trimmed == "" || trimmed[0] == '#' {
			continue
		}
		block, err := ParseBlock(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %v, line %v: %v", ErrMalformedMapping, name, lineNumber, err)
		}
		blocks = append(blocks, block)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%v, while reading map file %v", err, name)
	}
	index, err := Build(blocks)
	if err != nil {
		return nil, fmt.Errorf("%w, in map file %v", err, name)
	}
	return index, nil
}

// ParseMapFile reads a map file from disk, which may be gzip or BGZF
// compressed, and builds a BlockIndex from it.
func ParseMapFile(filename string) (index *BlockIndex, err error) {
	input, err := utils.OpenInput(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(input, &err)
	return ParseMap(input, filename)
}
