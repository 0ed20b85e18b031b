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
	"errors"
	"fmt"

	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/utils"
)

// MinIntervalLength is the default minimum length of a lifted
// interval. Shorter intervals are dropped as liftover noise.
const MinIntervalLength = 10

// ErrMalformedMapping is wrapped by all errors that report an invalid
// map file entry or an invalid set of mapping blocks.
var ErrMalformedMapping = errors.New("malformed mapping")

// BlockKind is the feature type of a mapping block, as written by the
// simulator that produced the map file.
type BlockKind int

// The block kinds that can occur in a map file. SEQ is the zero
// value.
const (
	SEQ BlockKind = iota
	INS
	DEL
	INV
	DupTandem
	TRA
)

var blockKindNames = [...]string{
	SEQ:       "SEQ",
	INS:       "INS",
	DEL:       "DEL",
	INV:       "INV",
	DupTandem: "DUP_TANDEM",
	TRA:       "TRA",
}

func (kind BlockKind) String() string {
	if kind < 0 || int(kind) >= len(blockKindNames) {
		return fmt.Sprintf("BlockKind(%d)", int(kind))
	}
	return blockKindNames[kind]
}

// ParseBlockKind returns the BlockKind for the given name.
func ParseBlockKind(s string) (BlockKind, error) {
	for kind, name := range blockKindNames {
		if name == s {
			return BlockKind(kind), nil
		}
	}
	return SEQ, fmt.Errorf("unknown block kind %q", s)
}

// Liftable reports whether blocks of this kind carry simulated
// sequence that has a counterpart on the reference. Inserted sequence
// has no reference counterpart, and deleted sequence does not occur
// in the simulated contig.
func (kind BlockKind) Liftable() bool {
	switch kind {
	case SEQ, INV, DupTandem, TRA:
		return true
	default:
		return false
	}
}

// A MappingBlock maps a contiguous span of a source contig onto a
// target contig, with a fixed offset and strand relationship.
type MappingBlock struct {
	SourceContig utils.Symbol
	Source       intervals.Interval
	TargetContig utils.Symbol
	TargetStart  int32
	Strand       intervals.Strand
	Kind         BlockKind
	VariantID    string
}

// Target returns the span of the target contig this block maps onto.
func (block *MappingBlock) Target() intervals.Interval {
	return intervals.Interval{Start: block.TargetStart, End: block.TargetStart + block.Source.Len()}
}

func (block *MappingBlock) String() string {
	return fmt.Sprintf("%v:%v -> %v:%v %v %v", *block.SourceContig, block.Source, *block.TargetContig, block.Target(), block.Strand, block.Kind)
}
