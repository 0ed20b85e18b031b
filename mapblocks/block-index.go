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

package mapblocks

import (
	"fmt"
	"sort"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/utils"
)

// A BlockIndex holds the liftable mapping blocks of each source
// contig, sorted by source start. Once built, a BlockIndex is never
// modified, and can be used by multiple goroutines concurrently.
type BlockIndex struct {
	contigs map[utils.Symbol][]MappingBlock
	names   map[string]utils.Symbol
	order   []utils.Symbol
	nblocks int
}

type stableBlockSorter []MappingBlock

func (s stableBlockSorter) SequentialSort(i, j int) {
	blocks := s[i:j]
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Source.Start < blocks[j].Source.Start
	})
}

func (s stableBlockSorter) NewTemp() psort.StableSorter {
	return stableBlockSorter(make([]MappingBlock, len(s)))
}

func (s stableBlockSorter) Len() int {
	return len(s)
}

func (s stableBlockSorter) Less(i, j int) bool {
	return s[i].Source.Start < s[j].Source.Start
}

func (s stableBlockSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(stableBlockSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// Build creates a BlockIndex from the given blocks. Blocks that are
// not liftable, or that cover no source positions, are ignored. Build
// fails with an error wrapping ErrMalformedMapping if two blocks on
// the same source contig overlap. The blocks slice is not retained.
func Build(blocks []MappingBlock) (*BlockIndex, error) {
	index := &BlockIndex{
		contigs: make(map[utils.Symbol][]MappingBlock),
		names:   make(map[string]utils.Symbol),
	}
	for _, block := range blocks {
		if !block.Kind.Liftable() || block.Source.Empty() {
			continue
		}
		if block.SourceContig == nil || block.TargetContig == nil {
			return nil, fmt.Errorf("%w: block without contig name", ErrMalformedMapping)
		}
		contigBlocks, ok := index.contigs[block.SourceContig]
		if !ok {
			index.order = append(index.order, block.SourceContig)
			index.names[*block.SourceContig] = block.SourceContig
		}
		index.contigs[block.SourceContig] = append(contigBlocks, block)
		index.nblocks++
	}
	errs := make([]error, len(index.order))
	parallel.Range(0, len(index.order), 0, func(low, high int) {
		for i := low; i < high; i++ {
			contigBlocks := index.contigs[index.order[i]]
			psort.StableSort(stableBlockSorter(contigBlocks))
			errs[i] = checkOverlap(contigBlocks)
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return index, nil
}

func checkOverlap(blocks []MappingBlock) error {
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Source.Overlaps(blocks[i-1].Source) {
			return fmt.Errorf("%w: overlapping blocks %v and %v", ErrMalformedMapping, &blocks[i-1], &blocks[i])
		}
	}
	return nil
}

// Blocks returns the sorted blocks of the given source contig. The
// result must not be modified.
func (index *BlockIndex) Blocks(contig utils.Symbol) []MappingBlock {
	return index.contigs[contig]
}

// Lookup returns the symbol of the named source contig without
// interning the name. The result is false if the index has no blocks
// on that contig.
func (index *BlockIndex) Lookup(name string) (utils.Symbol, bool) {
	contig, ok := index.names[name]
	return contig, ok
}

// Contigs returns the source contigs in the order in which they
// first occurred in the input of Build.
func (index *BlockIndex) Contigs() []utils.Symbol {
	return append([]utils.Symbol(nil), index.order...)
}

// Len returns the total number of blocks in the index.
func (index *BlockIndex) Len() int {
	return index.nblocks
}

// CoveredRegions returns the maximal stretches of the given source
// contig that are covered by blocks without gaps.
func (index *BlockIndex) CoveredRegions(contig utils.Symbol) []intervals.Interval {
	blocks := index.contigs[contig]
	regions := make([]intervals.Interval, len(blocks))
	for i := range blocks {
		regions[i] = blocks[i].Source
	}
	return intervals.Flatten(regions)
}

// CoveredLength returns the number of source positions of the given
// contig that can be lifted over.
func (index *BlockIndex) CoveredLength(contig utils.Symbol) int64 {
	return intervals.TotalLen(index.CoveredRegions(contig))
}
