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
	"time"

	"go.uber.org/dig"

	"github.com/exascience/readlift/internal"
	"github.com/exascience/readlift/liftover"
	"github.com/exascience/readlift/mapblocks"
	"github.com/exascience/readlift/readmap"
)

// LiftOverHelp is the help string for this command.
const LiftOverHelp = "liftover parameters:\n" +
	"readlift liftover --map map-file --longislnd read-map-file [--longislnd read-map-file]...\n" +
	"[--out file]\n" +
	"[--compress none|gzip|bgzf]\n" +
	"[--min-interval-length nr]\n" +
	"[--nr-of-threads nr]\n" +
	"[--progress-bar]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// liftOverConfig is the immutable configuration of one liftover run.
type liftOverConfig struct {
	MapFile     string
	Shards      []string
	Out         string
	Compression liftover.Compression
	Options     liftover.Options
	ProgressBar bool
	Timed       bool
	Profile     string
}

// LiftOver implements the readlift liftover command.
func LiftOver() error {
	env, err := loadDefaults()
	if err != nil {
		return err
	}

	var (
		cfg               liftOverConfig
		shards            stringList
		minIntervalLength int
		logPath           string
		compression       string
	)

	var flags flag.FlagSet
	flags.StringVar(&cfg.MapFile, "map", "", "map file")
	flags.Var(&shards, "longislnd", "read map file from LongISLND (repeatable)")
	flags.StringVar(&cfg.Out, "out", "", "output file (default standard output)")
	flags.StringVar(&compression, "compress", "none", "output compression: none, gzip or bgzf")
	flags.IntVar(&minIntervalLength, "min-interval-length", env.MinIntervalLength, "minimum length of a lifted interval")
	flags.IntVar(&cfg.Options.Threads, "nr-of-threads", env.Threads, "number of worker threads")
	flags.BoolVar(&cfg.ProgressBar, "progress-bar", false, "show a progress bar")
	flags.BoolVar(&cfg.Timed, "timed", false, "measure the runtime of the individual phases")
	flags.StringVar(&cfg.Profile, "profile", "", "write a CPU profile per phase")
	flags.StringVar(&logPath, "log-path", env.LogPath, "write log files to the specified directory")

	if err := parseFlags(&flags, 2, LiftOverHelp); err != nil {
		return err
	}
	cfg.Shards = shards

	sanityChecksFailed := false
	if !checkExist("--map", cfg.MapFile) {
		sanityChecksFailed = true
	}
	if len(cfg.Shards) == 0 {
		log.Println("Error: No read map files given. Please add at least one --longislnd option to your call.")
		sanityChecksFailed = true
	}
	for _, shard := range cfg.Shards {
		if !checkExist("--longislnd", shard) {
			sanityChecksFailed = true
		}
	}
	if !checkCreate("--out", cfg.Out) {
		sanityChecksFailed = true
	}
	if cfg.Compression, err = liftover.ParseCompression(compression); err != nil {
		log.Println("Error: Invalid --compress option:", err)
		sanityChecksFailed = true
	}
	if minIntervalLength < 0 || minIntervalLength > 1<<31-1 {
		log.Printf("Error: Invalid minimum interval length %v.\n", minIntervalLength)
		sanityChecksFailed = true
	}
	if cfg.Options.Threads < 0 {
		log.Printf("Error: Invalid number of threads %v.\n", cfg.Options.Threads)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, LiftOverHelp)
		return fmt.Errorf("invalid parameters for readlift liftover")
	}
	cfg.Options.MinIntervalLength = int32(minIntervalLength)

	if err := setLogOutput(logPath); err != nil {
		return err
	}

	return runLiftOver(cfg)
}

func loadIndex(cfg liftOverConfig) (index *mapblocks.BlockIndex, err error) {
	err = timedRun(cfg.Timed, cfg.Profile, "Loading map file.", 1, func() error {
		index, err = mapblocks.ParseMapFile(cfg.MapFile)
		return err
	})
	if err != nil {
		return nil, err
	}
	fullPath, err := internal.FullPathname(cfg.MapFile)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %v mapping blocks on %v contigs from %v.\n", index.Len(), len(index.Contigs()), fullPath)
	return index, nil
}

func aggregateShards(cfg liftOverConfig) (records *readmap.Aggregator, err error) {
	err = timedRun(cfg.Timed, cfg.Profile, "Reading read map files.", 2, func() error {
		records = readmap.NewAggregator()
		for _, shard := range cfg.Shards {
			log.Println("Reading in read map from", shard)
			if err := records.AddShardFile(shard); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Collected %v reads from %v read map files, %v of which occur in more than one file.\n",
		records.Len(), len(cfg.Shards), records.MultiShardReads())
	return records, nil
}

func newObserver(cfg liftOverConfig, records *readmap.Aggregator) liftover.Observer {
	observer := liftover.NewLogObserver(log.New(log.Writer(), log.Prefix(), log.Flags()), liftover.ProgressInterval)
	if cfg.ProgressBar {
		return liftover.Observers{observer, liftover.NewBarObserver(os.Stderr, records.Len())}
	}
	return observer
}

func newDriver(cfg liftOverConfig, index *mapblocks.BlockIndex, observer liftover.Observer) *liftover.Driver {
	return liftover.NewDriver(index, cfg.Options, observer)
}

func createSink(cfg liftOverConfig) (*liftover.Sink, error) {
	return liftover.CreateSink(cfg.Out, cfg.Compression)
}

func runLiftOver(cfg liftOverConfig) error {
	container := dig.New()
	constructors := []interface{}{
		func() liftOverConfig { return cfg },
		loadIndex,
		aggregateShards,
		newObserver,
		newDriver,
		createSink,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	start := time.Now()
	err := container.Invoke(func(driver *liftover.Driver, records *readmap.Aggregator, sink *liftover.Sink) (err error) {
		defer func() {
			if nerr := sink.Close(); err == nil {
				err = nerr
			}
		}()
		return timedRun(cfg.Timed, cfg.Profile, "Lifting over reads.", 3, func() error {
			_, err := driver.Run(records, sink)
			return err
		})
	})
	if err != nil {
		err = dig.RootCause(err)
		if liftover.IsBrokenPipe(err) {
			return fmt.Errorf("output closed before all reads were written: %w", err)
		}
		return err
	}
	log.Printf("Conversion took %v seconds.\n", time.Since(start).Seconds())
	return nil
}
