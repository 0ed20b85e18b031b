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

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/exascience/readlift/mapblocks"
)

// Environment variables that provide defaults for command line
// options. They can also be set in a .env file in the working
// directory. Command line options take precedence.
const (
	envMinIntervalLength = "READLIFT_MIN_INTERVAL_LENGTH"
	envThreads           = "READLIFT_THREADS"
	envLogPath           = "READLIFT_LOG_PATH"
	envAddr              = "READLIFT_ADDR"
)

// defaults holds the option defaults after the environment has been
// consulted.
type defaults struct {
	MinIntervalLength int
	Threads           int
	LogPath           string
	Addr              string
}

// loadDefaults reads the .env file, if any, and the environment. A
// missing .env file is not an error.
func loadDefaults() (defaults, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return defaults{}, fmt.Errorf("%v, while reading .env file", err)
	}
	d := defaults{
		MinIntervalLength: mapblocks.MinIntervalLength,
		LogPath:           os.Getenv(envLogPath),
		Addr:              os.Getenv(envAddr),
	}
	if d.Addr == "" {
		d.Addr = "localhost:3000"
	}
	var err error
	if d.MinIntervalLength, err = intFromEnv(envMinIntervalLength, d.MinIntervalLength); err != nil {
		return defaults{}, err
	}
	if d.Threads, err = intFromEnv(envThreads, 0); err != nil {
		return defaults{}, err
	}
	return d, nil
}

func intFromEnv(name string, def int) (int, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value %q for %v", value, name)
	}
	return n, nil
}
