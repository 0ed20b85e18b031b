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

	"github.com/exascience/readlift/utils"
)

// IsHeaderLine reports whether the line carries no region: empty
// lines, comments, and track and browser lines.
func IsHeaderLine(line string) bool {
	return strings.TrimSpace(line) == "" ||
		strings.HasPrefix(line, "#") ||
		strings.HasPrefix(line, "track") ||
		strings.HasPrefix(line, "browser")
}

// ParseRegion parses one tab-separated BED line.
func ParseRegion(line string) (*Region, error) {
	data := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(data) < 3 {
		return nil, fmt.Errorf("expected at least 3 fields, found %v", len(data))
	}
	if data[0] == "" {
		return nil, fmt.Errorf("missing chromosome name")
	}
	start, err := strconv.ParseInt(data[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q", data[1])
	}
	end, err := strconv.ParseInt(data[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid end %q", data[2])
	}
	return NewRegion(utils.Intern(data[0]), int32(start), int32(end), data[3:])
}
