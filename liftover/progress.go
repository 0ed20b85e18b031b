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
	"io"
	"log"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// An Observer is informed about the progress of a Driver. Processed
// is called with the number of records written so far, Done once
// with the final number. Both are called from a single goroutine.
type Observer interface {
	Processed(count int)
	Done(count int)
}

type nopObserver struct{}

func (nopObserver) Processed(int) {}
func (nopObserver) Done(int)      {}

// ProgressInterval is the default number of reads between two
// progress log messages.
const ProgressInterval = 100000

// A LogObserver logs a message every time another Every reads have
// been processed, and when the driver is done.
type LogObserver struct {
	logger *log.Logger
	every  int
	next   int
}

// NewLogObserver returns a LogObserver that logs to logger.
func NewLogObserver(logger *log.Logger, every int) *LogObserver {
	if every <= 0 {
		every = ProgressInterval
	}
	return &LogObserver{logger: logger, every: every, next: every}
}

// Processed implements Observer.
func (o *LogObserver) Processed(count int) {
	if count < o.next {
		return
	}
	o.logger.Printf("%v reads processed", count)
	o.next = (count/o.every + 1) * o.every
}

// Done implements Observer.
func (o *LogObserver) Done(count int) {
	o.logger.Printf("%v reads processed", count)
}

// A BarObserver renders a progress bar.
type BarObserver struct {
	progress *mpb.Progress
	bar      *mpb.Bar
	last     int
}

// NewBarObserver returns a BarObserver that draws on w, for the given
// expected number of reads.
func NewBarObserver(w io.Writer, total int) *BarObserver {
	progress := mpb.New(mpb.WithWidth(40), mpb.WithOutput(w))
	bar := progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("lifted reads: ", decor.WC{W: len("lifted reads: "), C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done"),
		),
	)
	return &BarObserver{progress: progress, bar: bar}
}

// Processed implements Observer.
func (o *BarObserver) Processed(count int) {
	o.bar.IncrBy(count - o.last)
	o.last = count
}

// Done implements Observer.
func (o *BarObserver) Done(count int) {
	o.bar.SetTotal(int64(count), true)
	o.progress.Wait()
}

// Observers combines several observers into one.
type Observers []Observer

// Processed implements Observer.
func (observers Observers) Processed(count int) {
	for _, o := range observers {
		o.Processed(count)
	}
}

// Done implements Observer.
func (observers Observers) Done(count int) {
	for _, o := range observers {
		o.Done(count)
	}
}
