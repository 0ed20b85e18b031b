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
	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/utils"
)

// A TargetSegment is one lifted piece of an alignment segment.
// SegmentIndex is the position of the originating alignment segment
// within its read.
type TargetSegment struct {
	Contig       utils.Symbol
	Interval     intervals.Interval
	Strand       intervals.Strand
	SegmentIndex int

	// target positions decrease along the source
	descending bool
}

/*
Translate lifts the source interval [start, end) on the given contig
over to the target contigs of the index.

Each block that overlaps the interval yields one piece. Pieces shorter
than minIntervalLength are dropped; a minIntervalLength of 0 disables
this filter. Pieces that come from reverse blocks are mirrored within
the block and have their strand flipped. Consecutive pieces that abut
on the same target contig, strand, and orientation are merged into
one. Source positions not covered by any block yield nothing.

The result is in source order. It is empty if the contig is unknown
or nothing survives.
*/
func (index *BlockIndex) Translate(contig utils.Symbol, start, end int32, strand intervals.Strand, minIntervalLength int32) []TargetSegment {
	if start >= end {
		return nil
	}
	blocks := index.contigs[contig]
	query := intervals.Interval{Start: start, End: end}
	var result []TargetSegment
	for i := intervals.Search(len(blocks), func(i int) intervals.Interval {
		return blocks[i].Source
	}, start); i < len(blocks) && blocks[i].Source.Start < end; i++ {
		block := &blocks[i]
		piece, ok := intervals.Intersect(block.Source, query)
		if !ok || piece.Len() < minIntervalLength {
			continue
		}
		segment := TargetSegment{Contig: block.TargetContig, Strand: strand}
		if block.Strand == intervals.Forward {
			offset := piece.Start - block.Source.Start
			segment.Interval.Start = block.TargetStart + offset
			segment.Interval.End = segment.Interval.Start + piece.Len()
		} else {
			segment.Interval.Start = block.TargetStart + (block.Source.End - piece.End)
			segment.Interval.End = block.TargetStart + (block.Source.End - piece.Start)
			segment.Strand = strand.Flip()
			segment.descending = true
		}
		result = append(result, segment)
	}
	return MergeSegments(result)
}

func abuts(last, next *TargetSegment) bool {
	if last.Contig != next.Contig || last.Strand != next.Strand || last.descending != next.descending {
		return false
	}
	if last.descending {
		return next.Interval.End == last.Interval.Start
	}
	return last.Interval.End == next.Interval.Start
}

// MergeSegments merges neighbouring segments that continue each other
// in target space. Merging an already merged slice leaves it
// unchanged. The result shares memory with segments.
func MergeSegments(segments []TargetSegment) []TargetSegment {
	if len(segments) < 2 {
		return segments
	}
	merged := segments[:1]
	for _, segment := range segments[1:] {
		last := &merged[len(merged)-1]
		if abuts(last, &segment) {
			if last.descending {
				last.Interval.Start = segment.Interval.Start
			} else {
				last.Interval.End = segment.Interval.End
			}
			continue
		}
		merged = append(merged, segment)
	}
	return merged
}
