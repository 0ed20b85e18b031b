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

// readlift lifts the read alignments of a long-read simulator over
// from simulated haplotype coordinates to reference coordinates, using
// a VarSim map file.
//
// Please see https://github.com/exascience/readlift for a
// documentation of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/readlift/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: liftover, serve")
	fmt.Fprint(os.Stderr, "\n", cmd.LiftOverHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.ServeHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "liftover":
		err = cmd.LiftOver()
	case "serve":
		err = cmd.Serve()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command %v.\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
