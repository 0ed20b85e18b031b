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
	"fmt"
	"io"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/readlift/bed"
	"github.com/exascience/readlift/internal"
	"github.com/exascience/readlift/utils"
)

type (
	entry struct {
		readID   string
		segments []AlignmentSegment
	}

	parsedBatch struct {
		entries []entry
		lines   int
		// errIndex is the position of the offending line in the batch
		errIndex int
		errLine  string
		err      error
	}
)

/*
An Aggregator merges the alignment segments of reads that are spread
over several shards into one ReadMapRecord per read.

Shards are read one at a time, in the order in which they are added.
Records are handed out by Next in the order in which their reads were
first seen, across all shards. Segments of a read that occurs in more
than one shard are concatenated in shard order.
*/
type Aggregator struct {
	records  *OrderedRecords
	shards   []string
	next     int
	consumed bool
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{records: NewOrderedRecords()}
}

// Aggregate reads all given shard files, which may be gzip or BGZF
// compressed, into a new Aggregator.
func Aggregate(filenames []string) (*Aggregator, error) {
	aggregator := NewAggregator()
	for _, filename := range filenames {
		if err := aggregator.AddShardFile(filename); err != nil {
			return nil, err
		}
	}
	return aggregator, nil
}

func parseEntry(line string) (entry, error) {
	region, err := bed.ParseRegion(line)
	if err != nil {
		return entry{}, err
	}
	if region.Name == "" {
		return entry{}, errors.New("missing read identifier")
	}
	spans := region.Spans()
	segments := make([]AlignmentSegment, len(spans))
	for i, span := range spans {
		segments[i] = AlignmentSegment{Contig: region.Chrom, Interval: span, Strand: region.Strand}
	}
	return entry{readID: region.Name, segments: segments}, nil
}

// AddShardFile opens the given shard file and adds its entries.
func (a *Aggregator) AddShardFile(filename string) (err error) {
	input, err := utils.OpenInput(filename)
	if err != nil {
		return err
	}
	defer internal.Close(input, &err)
	return a.AddShard(filename, input)
}

// AddShard adds all entries of one shard. The name identifies the
// shard in error messages. A malformed entry aborts the whole shard
// with an error wrapping ErrMalformedInput.
func (a *Aggregator) AddShard(name string, r io.Reader) error {
	if a.consumed {
		return fmt.Errorf("cannot add shard %v after records have been consumed", name)
	}
	shard := uint(len(a.shards))
	a.shards = append(a.shards, name)
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(r))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		batch := parsedBatch{entries: make([]entry, 0, len(lines)), lines: len(lines)}
		for i, line := range lines {
			if bed.IsHeaderLine(line) {
				continue
			}
			e, err := parseEntry(line)
			if err != nil {
				batch.errIndex, batch.errLine, batch.err = i, line, err
				return batch
			}
			batch.entries = append(batch.entries, e)
		}
		return batch
	})))
	lineNumber := 0
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		batch := data.(parsedBatch)
		if batch.err != nil {
			p.SetErr(fmt.Errorf("%w: %v, line %v: %v (%q)", ErrMalformedInput, name, lineNumber+batch.errIndex+1, batch.err, batch.errLine))
			return nil
		}
		for _, e := range batch.entries {
			a.records.Append(e.readID, shard, e.segments...)
		}
		lineNumber += batch.lines
		return nil
	})))
	p.Run()
	if err := p.Err(); err != nil {
		if errors.Is(err, ErrMalformedInput) {
			return err
		}
		return fmt.Errorf("%v, while reading shard %v", err, name)
	}
	return nil
}

// Next returns the next record in first-seen order. The record is
// released by the Aggregator; each record is returned exactly once.
func (a *Aggregator) Next() (*ReadMapRecord, bool) {
	a.consumed = true
	records := a.records.Records()
	if a.next >= len(records) {
		return nil, false
	}
	record := records[a.next]
	records[a.next] = nil
	a.next++
	return record, true
}

// Len returns the number of distinct reads.
func (a *Aggregator) Len() int {
	return a.records.Len()
}

// Shards returns the names of the shards in the order they were read.
func (a *Aggregator) Shards() []string {
	return append([]string(nil), a.shards...)
}

// MultiShardReads returns the number of reads that occur in more than
// one shard.
func (a *Aggregator) MultiShardReads() int {
	return a.records.MultiShardReads()
}
