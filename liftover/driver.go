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
	"fmt"
	"io"
	"runtime"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/readlift/internal"
	"github.com/exascience/readlift/mapblocks"
	"github.com/exascience/readlift/readmap"
)

// Options configure a Driver.
type Options struct {
	// MinIntervalLength is the minimum length of a lifted interval;
	// 0 disables filtering.
	MinIntervalLength int32
	// Threads bounds the number of concurrent liftover workers;
	// 0 means GOMAXPROCS.
	Threads int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{MinIntervalLength: mapblocks.MinIntervalLength}
}

// A Source hands out read records one at a time, as readmap.Aggregator
// does.
type Source interface {
	Next() (*readmap.ReadMapRecord, bool)
}

// A Driver lifts a stream of read records over and writes their
// textual forms to an output, in input order.
type Driver struct {
	index    *mapblocks.BlockIndex
	options  Options
	observer Observer
}

// NewDriver returns a Driver for the given index. A nil observer
// reports nothing.
func NewDriver(index *mapblocks.BlockIndex, options Options, observer Observer) *Driver {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Driver{index: index, options: options, observer: observer}
}

type formattedBatch struct {
	bytes []byte
	reads int
}

const (
	batchInc     = 64
	maxBatchSize = 4096
)

// Run lifts all records from source over and writes them to out.
// Records are translated in parallel, but written by a single writer
// in the order in which source produced them. Run returns the number
// of records written. Run does not close out.
func (d *Driver) Run(source Source, out io.Writer) (count int, err error) {
	threads := d.options.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	var p pipeline.Pipeline
	p.Source(pipeline.NewFunc(-1, func(size int) (interface{}, int, error) {
		batch := make([]*readmap.ReadMapRecord, 0, size)
		for len(batch) < size {
			record, ok := source.Next()
			if !ok {
				break
			}
			batch = append(batch, record)
		}
		if len(batch) == 0 {
			return nil, 0, nil
		}
		return batch, len(batch), nil
	}))
	p.SetVariableBatchSize(batchInc, maxBatchSize)
	p.Add(
		pipeline.LimitedPar(threads, pipeline.Receive(func(_ int, data interface{}) interface{} {
			records := data.([]*readmap.ReadMapRecord)
			buf := internal.ReserveByteBuffer()
			for _, record := range records {
				buf = FormatRecord(buf, LiftOverRecord(d.index, record, d.options.MinIntervalLength))
			}
			return formattedBatch{bytes: buf, reads: len(records)}
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			batch := data.(formattedBatch)
			defer internal.ReleaseByteBuffer(batch.bytes)
			if _, err := out.Write(batch.bytes); err != nil {
				p.SetErr(fmt.Errorf("%w, while writing liftover records to output", err))
				return nil
			}
			count += batch.reads
			d.observer.Processed(count)
			return nil
		})),
	)
	p.Run()
	d.observer.Done(count)
	return count, p.Err()
}
