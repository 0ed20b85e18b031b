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

package intervals

import (
	"fmt"
	"sort"
)

// Interval is a generic struct with a start and an end position. The
// start is inclusive and the end is exclusive, both 0-based.
type Interval struct {
	Start, End int32
}

// Len returns the number of positions covered by the interval, or 0
// if End <= Start.
func (interval Interval) Len() int32 {
	if interval.End <= interval.Start {
		return 0
	}
	return interval.End - interval.Start
}

// Empty returns true if the interval covers no positions.
func (interval Interval) Empty() bool {
	return interval.End <= interval.Start
}

func (interval Interval) String() string {
	return fmt.Sprintf("[%v,%v)", interval.Start, interval.End)
}

// Overlaps determines whether the two intervals share at least one
// position.
func (interval Interval) Overlaps(other Interval) bool {
	return interval.Start < other.End && other.Start < interval.End
}

// Intersect returns the positions shared by both intervals. The
// second result is false if the intervals do not overlap.
func Intersect(interval1, interval2 Interval) (Interval, bool) {
	result := interval1
	if interval2.Start > result.Start {
		result.Start = interval2.Start
	}
	if interval2.End < result.End {
		result.End = interval2.End
	}
	if result.Empty() {
		return Interval{}, false
	}
	return result, true
}

// Extend makes interval1 larger if it overlaps with or touches
// interval2, by storing max(interval1.End, interval2.End) in
// interval1.End; otherwise, interval1 remains unchanged.
// Returns true if the two intervals overlap or touch, false otherwise.
// interval2.Start >= interval1.Start must be true before
// calling Extend.
func (interval1 *Interval) Extend(interval2 Interval) bool {
	if interval2.Start > interval1.End {
		return false
	}
	if interval2.End > interval1.End {
		interval1.End = interval2.End
	}
	return true
}

// Flatten merges overlapping and touching intervals into larger
// intervals. intervals must be sorted by Start before calling Flatten.
// The resulting slice is sorted by Start, and no two intervals in the
// result overlap with each other.
// The result shares memory with the intervals argument.
func Flatten(intervals []Interval) []Interval {
	for i, n := 0, len(intervals)-1; i < n; i++ {
		if intervals[i].Extend(intervals[i+1]) {
			n++
			for j := i + 1; j < n; j++ {
				if !intervals[i].Extend(intervals[j]) {
					i++
					intervals[i] = intervals[j]
				}
			}
			return intervals[:i+1]
		}
	}
	return intervals
}

// TotalLen returns the sum of the lengths of the given intervals.
// Overlapping positions are counted once if intervals is Flattened.
func TotalLen(intervals []Interval) (total int64) {
	for _, interval := range intervals {
		total += int64(interval.Len())
	}
	return
}

// Search returns the smallest index i in [0, n) for which the
// interval at i ends after pos, or n if there is no such index.
// The intervals reached through at must be sorted by Start and must
// not overlap with each other.
func Search(n int, at func(i int) Interval, pos int32) int {
	return sort.Search(n, func(i int) bool {
		return at(i).End > pos
	})
}
