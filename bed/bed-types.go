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

package bed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/utils"
)

// A Region is one line of a BED file. Optional fields that are absent
// keep their zero values: Name is empty and Strand is forward.
type Region struct {
	Chrom  utils.Symbol
	Start  int32
	End    int32
	Name   string
	Strand intervals.Strand
	// Blocks holds the BED12 blocks in absolute coordinates, in the
	// order in which they occur in the file.
	Blocks []intervals.Interval
}

// optional fields, following the three mandatory ones
const (
	brName = iota
	brScore
	brStrand
	brThickStart
	brThickEnd
	brItemRgb
	brBlockCount
	brBlockSizes
	brBlockStarts
	brMaxFields
)

// NewRegion creates a Region from its mandatory fields and the
// remaining tab-separated fields of a BED line.
func NewRegion(chrom utils.Symbol, start, end int32, fields []string) (*Region, error) {
	if start < 0 || end < start {
		return nil, fmt.Errorf("invalid region [%v,%v)", start, end)
	}
	region := &Region{Chrom: chrom, Start: start, End: end}
	if err := region.initializeFields(fields); err != nil {
		return nil, err
	}
	return region, nil
}

func (region *Region) initializeFields(fields []string) error {
	if len(fields) > brMaxFields {
		return fmt.Errorf("too many fields: %v out of 3-12", len(fields)+3)
	}
	var blockCount int
	var blockSizes []int32
	for i, val := range fields {
		switch i {
		case brName:
			region.Name = val
		case brScore:
			if val != "." {
				if _, err := strconv.ParseFloat(val, 64); err != nil {
					return fmt.Errorf("invalid Score field: %v", val)
				}
			}
		case brStrand:
			strand, err := intervals.ParseStrand(val)
			if err != nil {
				return fmt.Errorf("invalid Strand field: %v", val)
			}
			region.Strand = strand
		case brThickStart, brThickEnd:
			if _, err := strconv.ParseInt(val, 10, 32); err != nil {
				return fmt.Errorf("invalid ThickStart/ThickEnd field: %v", val)
			}
		case brItemRgb:
		case brBlockCount:
			count, err := strconv.Atoi(val)
			if err != nil || count < 0 {
				return fmt.Errorf("invalid BlockCount field: %v", val)
			}
			blockCount = count
		case brBlockSizes:
			sizes, err := parseList(val, blockCount)
			if err != nil {
				return fmt.Errorf("invalid BlockSizes field: %v", err)
			}
			blockSizes = sizes
		case brBlockStarts:
			starts, err := parseList(val, blockCount)
			if err != nil {
				return fmt.Errorf("invalid BlockStarts field: %v", err)
			}
			region.Blocks = make([]intervals.Interval, blockCount)
			for j, start := range starts {
				blockStart := int64(region.Start) + int64(start)
				blockEnd := blockStart + int64(blockSizes[j])
				if start < 0 || blockSizes[j] < 0 || blockEnd > int64(region.End) {
					return fmt.Errorf("block [%v,%v) outside of region [%v,%v)", blockStart, blockEnd, region.Start, region.End)
				}
				region.Blocks[j] = intervals.Interval{Start: int32(blockStart), End: int32(blockEnd)}
			}
		}
	}
	if blockCount > 0 && region.Blocks == nil {
		return fmt.Errorf("BlockCount %v without BlockSizes and BlockStarts", blockCount)
	}
	return nil
}

// parseList parses a comma-separated list of n integers. A trailing
// comma is allowed.
func parseList(val string, n int) ([]int32, error) {
	items := strings.Split(strings.TrimSuffix(val, ","), ",")
	if n == 0 && val == "" {
		return nil, nil
	}
	if len(items) != n {
		return nil, fmt.Errorf("expected %v values, found %v in %v", n, len(items), val)
	}
	result := make([]int32, n)
	for i, item := range items {
		value, err := strconv.ParseInt(item, 10, 32)
		if err != nil {
			return nil, err
		}
		result[i] = int32(value)
	}
	return result, nil
}

// Spans returns the BED12 blocks of the region, or the whole region
// if it has no blocks.
func (region *Region) Spans() []intervals.Interval {
	if len(region.Blocks) > 0 {
		return region.Blocks
	}
	return []intervals.Interval{{Start: region.Start, End: region.End}}
}
