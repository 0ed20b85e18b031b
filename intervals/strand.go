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

import "fmt"

// Strand is the orientation of an interval relative to its contig.
type Strand bool

const (
	// Forward is the + strand.
	Forward Strand = false
	// Reverse is the - strand.
	Reverse Strand = true
)

// Flip returns the opposite strand.
func (s Strand) Flip() Strand {
	return !s
}

// Byte returns '+' or '-'.
func (s Strand) Byte() byte {
	if s == Reverse {
		return '-'
	}
	return '+'
}

func (s Strand) String() string {
	return string(s.Byte())
}

// ParseStrand parses "+" or "-". The BED placeholder "." counts as
// forward.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+", ".":
		return Forward, nil
	case "-":
		return Reverse, nil
	default:
		return Forward, fmt.Errorf("invalid strand %q", s)
	}
}
