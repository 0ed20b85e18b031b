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

package readmap

import (
	"errors"

	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/utils"
)

// ErrMalformedInput is wrapped by all errors that report a shard
// entry that cannot be parsed.
var ErrMalformedInput = errors.New("malformed read map input")

// An AlignmentSegment is one contiguous span of a read aligned
// against a simulated contig.
type AlignmentSegment struct {
	Contig   utils.Symbol
	Interval intervals.Interval
	Strand   intervals.Strand
}

// A ReadMapRecord collects all alignment segments of one read, in the
// order in which they were encountered. Shards holds the positions of
// the input shards that contributed segments.
type ReadMapRecord struct {
	ReadID   string
	Segments []AlignmentSegment
	Shards   *bitset.BitSet
}

// OrderedRecords is a map from read identifiers to records that
// remembers the order in which read identifiers were first added.
type OrderedRecords struct {
	index      map[string]int
	records    []*ReadMapRecord
	multiShard int
}

// NewOrderedRecords returns an empty OrderedRecords.
func NewOrderedRecords() *OrderedRecords {
	return &OrderedRecords{index: make(map[string]int)}
}

// Append adds the segments to the record for readID, creating the
// record at the end of the order if readID has not been seen before.
func (m *OrderedRecords) Append(readID string, shard uint, segments ...AlignmentSegment) *ReadMapRecord {
	var record *ReadMapRecord
	if i, ok := m.index[readID]; ok {
		record = m.records[i]
		if !record.Shards.Test(shard) && record.Shards.Count() == 1 {
			m.multiShard++
		}
	} else {
		record = &ReadMapRecord{ReadID: readID, Shards: bitset.New(shard + 1)}
		m.index[readID] = len(m.records)
		m.records = append(m.records, record)
	}
	record.Segments = append(record.Segments, segments...)
	record.Shards.Set(shard)
	return record
}

// Get returns the record for readID.
func (m *OrderedRecords) Get(readID string) (*ReadMapRecord, bool) {
	i, ok := m.index[readID]
	if !ok {
		return nil, false
	}
	return m.records[i], true
}

// Len returns the number of distinct read identifiers.
func (m *OrderedRecords) Len() int {
	return len(m.records)
}

// Records returns all records in first-seen order.
func (m *OrderedRecords) Records() []*ReadMapRecord {
	return m.records
}

// MultiShardReads returns the number of reads that received segments
// from more than one shard.
func (m *OrderedRecords) MultiShardReads() int {
	return m.multiShard
}
