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
	"math/rand"
	"testing"
)

func intervalsEqual(intervals1, intervals2 []Interval) bool {
	if len(intervals1) != len(intervals2) {
		return false
	}
	for i, interval1 := range intervals1 {
		if interval1 != intervals2[i] {
			return false
		}
	}
	return true
}

func makeLargeIntervalsSlice() (result []Interval) {
	result = make([]Interval, 0x3000)
	result[0].Start = 0
	result[0].End = 3
	for i := 1; i < len(result); i++ {
		if rand.Intn(100) < 20 {
			result[i].Start = result[i-1].End - 1
		} else {
			result[i].Start = result[i-1].End + 1
		}
		result[i].End = result[i].Start + 3
	}
	return result
}

func TestLen(t *testing.T) {
	if (Interval{2, 5}).Len() != 3 {
		t.Error("Len 1 failed")
	}
	if (Interval{5, 5}).Len() != 0 || !(Interval{5, 5}).Empty() {
		t.Error("Len 2 failed")
	}
	if (Interval{6, 5}).Len() != 0 {
		t.Error("Len 3 failed")
	}
}

func TestIntersect(t *testing.T) {
	if i, ok := Intersect(Interval{100, 200}, Interval{150, 180}); !ok || i != (Interval{150, 180}) {
		t.Error("Intersect 1 failed")
	}
	if i, ok := Intersect(Interval{100, 200}, Interval{190, 210}); !ok || i != (Interval{190, 200}) {
		t.Error("Intersect 2 failed")
	}
	if _, ok := Intersect(Interval{100, 200}, Interval{200, 210}); ok {
		t.Error("Intersect 3 failed")
	}
	if i, ok := Intersect(Interval{100, 200}, Interval{50, 300}); !ok || i != (Interval{100, 200}) {
		t.Error("Intersect 4 failed")
	}
	if (Interval{0, 10}).Overlaps(Interval{10, 20}) || !(Interval{0, 11}).Overlaps(Interval{10, 20}) {
		t.Error("Overlaps failed")
	}
}

func TestFlatten(t *testing.T) {
	if Flatten(nil) != nil {
		t.Error("empty Flatten failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 3}, {3, 4}}), []Interval{{2, 4}}) {
		t.Error("Flatten 1 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 3}, {4, 5}}), []Interval{{2, 3}, {4, 5}}) {
		t.Error("Flatten 2 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 4}, {3, 5}, {4, 6}, {7, 9}}), []Interval{{2, 6}, {7, 9}}) {
		t.Error("Flatten 3 failed")
	}
	if !intervalsEqual(Flatten([]Interval{{2, 3}, {3, 4}, {5, 6}, {6, 7}}), []Interval{{2, 4}, {5, 7}}) {
		t.Error("Flatten 4 failed")
	}
	intervals := Flatten(makeLargeIntervalsSlice())
	for i := 1; i < len(intervals); i++ {
		interval := intervals[i]
		if interval.Start > interval.End || interval.Start <= intervals[i-1].End {
			t.Error("Flatten 5 failed")
		}
	}
}

func TestTotalLen(t *testing.T) {
	if TotalLen(nil) != 0 {
		t.Error("empty TotalLen failed")
	}
	if TotalLen([]Interval{{0, 10}, {20, 25}}) != 15 {
		t.Error("TotalLen failed")
	}
}

func TestSearch(t *testing.T) {
	sorted := []Interval{{0, 10}, {10, 20}, {30, 40}}
	at := func(i int) Interval { return sorted[i] }
	for _, test := range []struct {
		pos  int32
		want int
	}{{0, 0}, {9, 0}, {10, 1}, {25, 2}, {39, 2}, {40, 3}} {
		if got := Search(len(sorted), at, test.pos); got != test.want {
			t.Errorf("Search(%v) = %v, want %v", test.pos, got, test.want)
		}
	}
}

func TestStrand(t *testing.T) {
	if Forward.Flip() != Reverse || Reverse.Flip() != Forward {
		t.Error("Flip failed")
	}
	if Forward.String() != "+" || Reverse.String() != "-" {
		t.Error("String failed")
	}
	for _, s := range []string{"+", "."} {
		if strand, err := ParseStrand(s); err != nil || strand != Forward {
			t.Errorf("ParseStrand(%q) failed", s)
		}
	}
	if strand, err := ParseStrand("-"); err != nil || strand != Reverse {
		t.Error("ParseStrand(-) failed")
	}
	if _, err := ParseStrand("x"); err == nil {
		t.Error("ParseStrand(x) should fail")
	}
}

func BenchmarkFlatten(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		intervals := makeLargeIntervalsSlice()
		b.StartTimer()
		Flatten(intervals)
	}
}
