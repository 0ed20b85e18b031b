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
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/readlift/mapblocks"
	"github.com/exascience/readlift/server"
)

// ServeHelp is the help string for this command.
const ServeHelp = "serve parameters:\n" +
	"readlift serve --map map-file\n" +
	"[--addr host:port]\n" +
	"[--min-interval-length nr]\n" +
	"[--log-path path]\n"

// Serve implements the readlift serve command.
func Serve() error {
	env, err := loadDefaults()
	if err != nil {
		return err
	}

	var (
		mapFile           string
		addr              string
		minIntervalLength int
		logPath           string
	)

	var flags flag.FlagSet
	flags.StringVar(&mapFile, "map", "", "map file")
	flags.StringVar(&addr, "addr", env.Addr, "address to listen on")
	flags.IntVar(&minIntervalLength, "min-interval-length", env.MinIntervalLength, "default minimum length of a lifted interval")
	flags.StringVar(&logPath, "log-path", env.LogPath, "write log files to the specified directory")

	if err := parseFlags(&flags, 2, ServeHelp); err != nil {
		return err
	}

	sanityChecksFailed := !checkExist("--map", mapFile)
	if minIntervalLength < 0 || minIntervalLength > 1<<31-1 {
		log.Printf("Error: Invalid minimum interval length %v.\n", minIntervalLength)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, ServeHelp)
		return fmt.Errorf("invalid parameters for readlift serve")
	}

	if err := setLogOutput(logPath); err != nil {
		return err
	}

	index, err := mapblocks.ParseMapFile(mapFile)
	if err != nil {
		return err
	}
	log.Printf("Loaded %v mapping blocks on %v contigs from %v.\n", index.Len(), len(index.Contigs()), mapFile)
	return server.NewServer(addr, index, int32(minIntervalLength)).Run()
}
