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
	"strconv"

	"github.com/exascience/readlift/mapblocks"
	"github.com/exascience/readlift/readmap"
)

// A TransformedRecord is a ReadMapRecord after liftover.
type TransformedRecord struct {
	ReadID   string
	Segments []mapblocks.TargetSegment
}

// LiftOverRecord translates all alignment segments of the record, in
// order, and concatenates the results. Each target segment is tagged
// with the index of the alignment segment it came from. The result
// may have no segments at all.
func LiftOverRecord(index *mapblocks.BlockIndex, record *readmap.ReadMapRecord, minIntervalLength int32) *TransformedRecord {
	result := &TransformedRecord{ReadID: record.ReadID}
	for i, segment := range record.Segments {
		lifted := index.Translate(segment.Contig, segment.Interval.Start, segment.Interval.End, segment.Strand, minIntervalLength)
		for j := range lifted {
			lifted[j].SegmentIndex = i
		}
		result.Segments = append(result.Segments, lifted...)
	}
	return result
}

// FormatRecord appends the textual form of the record to buf,
// terminated by a newline: the read identifier, followed by one
// tab-separated contig:start-end:strand:segment field per target
// segment. Coordinates are 0-based and half-open.
//
// This layout is readlift's own. No reference output of the
// LongISLND liftover was available to copy, so consumers should rely
// on this description rather than on any other tool's format.
func FormatRecord(buf []byte, record *TransformedRecord) []byte {
	buf = append(buf, record.ReadID...)
	for _, segment := range record.Segments {
		buf = append(buf, '\t')
		buf = append(buf, *segment.Contig...)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(segment.Interval.Start), 10)
		buf = append(buf, '-')
		buf = strconv.AppendInt(buf, int64(segment.Interval.End), 10)
		buf = append(buf, ':', segment.Strand.Byte(), ':')
		buf = strconv.AppendInt(buf, int64(segment.SegmentIndex), 10)
	}
	return append(buf, '\n')
}

func (record *TransformedRecord) String() string {
	buf := FormatRecord(nil, record)
	return string(buf[:len(buf)-1])
}

// LiftOver lifts one record over and returns its textual form without
// the trailing newline.
func LiftOver(index *mapblocks.BlockIndex, record *readmap.ReadMapRecord, minIntervalLength int32) string {
	return LiftOverRecord(index, record, minIntervalLength).String()
}
