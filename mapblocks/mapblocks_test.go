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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/readlift/intervals"
	"github.com/exascience/readlift/utils"
)

var (
	contigX = utils.Intern("contigX")
	contigY = utils.Intern("contigY")
	contigZ = utils.Intern("contigZ")
)

func block(source utils.Symbol, start, end int32, target utils.Symbol, targetStart int32, strand intervals.Strand) MappingBlock {
	return MappingBlock{
		SourceContig: source,
		Source:       intervals.Interval{Start: start, End: end},
		TargetContig: target,
		TargetStart:  targetStart,
		Strand:       strand,
	}
}

func mustBuild(t *testing.T, blocks ...MappingBlock) *BlockIndex {
	index, err := Build(blocks)
	require.NoError(t, err)
	return index
}

func TestBuildSortsBlocks(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 300, 400, contigY, 3000, intervals.Forward),
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigZ, 0, 50, contigY, 0, intervals.Forward),
		block(contigX, 200, 300, contigY, 2000, intervals.Forward),
	)
	assert.Equal(t, 4, index.Len())
	assert.Equal(t, []utils.Symbol{contigX, contigZ}, index.Contigs())
	blocks := index.Blocks(contigX)
	require.Len(t, blocks, 3)
	for i, start := range []int32{100, 200, 300} {
		assert.Equal(t, start, blocks[i].Source.Start)
	}
	assert.Equal(t, []intervals.Interval{{Start: 100, End: 400}}, index.CoveredRegions(contigX))
	assert.Equal(t, int64(300), index.CoveredLength(contigX))
	assert.Equal(t, int64(0), index.CoveredLength(utils.Intern("unknown")))
}

func TestLookup(t *testing.T) {
	index := mustBuild(t, block(contigX, 100, 200, contigY, 1000, intervals.Forward))
	contig, ok := index.Lookup(*contigX)
	assert.True(t, ok)
	assert.True(t, contig == contigX)
	_, ok = index.Lookup(*contigY)
	assert.False(t, ok, "target contigs are not source contigs")
	_, ok = index.Lookup("not-a-contig")
	assert.False(t, ok)
}

func TestBuildRejectsOverlap(t *testing.T) {
	_, err := Build([]MappingBlock{
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 199, 250, contigY, 5000, intervals.Forward),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedMapping))

	// the same spans on different contigs do not overlap
	_, err = Build([]MappingBlock{
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigZ, 100, 200, contigY, 5000, intervals.Forward),
	})
	assert.NoError(t, err)
}

func TestBuildSkipsUnliftableBlocks(t *testing.T) {
	insertion := block(contigX, 200, 300, contigY, 1100, intervals.Forward)
	insertion.Kind = INS
	deletion := block(contigX, 300, 300, contigY, 1100, intervals.Forward)
	deletion.Kind = DEL
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		insertion,
		deletion,
		block(contigX, 300, 400, contigY, 1100, intervals.Forward),
	)
	assert.Equal(t, 2, index.Len())
	assert.Len(t, index.CoveredRegions(contigX), 2)
}

func TestTranslateContained(t *testing.T) {
	index := mustBuild(t, block(contigX, 100, 200, contigY, 1000, intervals.Forward))
	segments := index.Translate(contigX, 150, 180, intervals.Forward, 1)
	require.Len(t, segments, 1)
	assert.Equal(t, contigY, segments[0].Contig)
	assert.Equal(t, intervals.Interval{Start: 1050, End: 1080}, segments[0].Interval)
	assert.Equal(t, intervals.Forward, segments[0].Strand)

	segments = index.Translate(contigX, 150, 180, intervals.Reverse, 1)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Reverse, segments[0].Strand)
}

func TestTranslatePartiallyCovered(t *testing.T) {
	index := mustBuild(t, block(contigX, 100, 200, contigY, 1000, intervals.Forward))
	segments := index.Translate(contigX, 190, 210, intervals.Forward, 1)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Interval{Start: 1090, End: 1100}, segments[0].Interval)
	assert.Equal(t, int32(10), segments[0].Interval.Len())
}

func TestTranslateReverseBlock(t *testing.T) {
	index := mustBuild(t, block(contigX, 100, 200, contigY, 1000, intervals.Reverse))
	segments := index.Translate(contigX, 100, 120, intervals.Forward, 1)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Interval{Start: 1080, End: 1100}, segments[0].Interval)
	assert.Equal(t, intervals.Reverse, segments[0].Strand)

	segments = index.Translate(contigX, 180, 200, intervals.Reverse, 1)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Interval{Start: 1000, End: 1020}, segments[0].Interval)
	assert.Equal(t, intervals.Forward, segments[0].Strand)
}

func TestTranslateUnmapped(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 300, 400, contigY, 1100, intervals.Forward),
	)
	assert.Empty(t, index.Translate(contigX, 0, 100, intervals.Forward, 0))
	assert.Empty(t, index.Translate(contigX, 200, 300, intervals.Forward, 0))
	assert.Empty(t, index.Translate(contigX, 400, 500, intervals.Forward, 0))
	assert.Empty(t, index.Translate(contigZ, 100, 200, intervals.Forward, 0))
	assert.Empty(t, index.Translate(contigX, 150, 150, intervals.Forward, 0))
}

func TestTranslateSplitsAcrossBlocks(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 200, 300, contigZ, 5000, intervals.Forward),
	)
	segments := index.Translate(contigX, 150, 260, intervals.Forward, 0)
	require.Len(t, segments, 2)
	assert.Equal(t, contigY, segments[0].Contig)
	assert.Equal(t, intervals.Interval{Start: 1050, End: 1100}, segments[0].Interval)
	assert.Equal(t, contigZ, segments[1].Contig)
	assert.Equal(t, intervals.Interval{Start: 5000, End: 5060}, segments[1].Interval)
	assert.Equal(t, int32(110), segments[0].Interval.Len()+segments[1].Interval.Len())
}

func TestTranslateSplitsAroundGap(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 250, 300, contigY, 1150, intervals.Forward),
	)
	segments := index.Translate(contigX, 150, 280, intervals.Forward, 0)
	require.Len(t, segments, 2)
	assert.Equal(t, intervals.Interval{Start: 1050, End: 1100}, segments[0].Interval)
	assert.Equal(t, intervals.Interval{Start: 1150, End: 1180}, segments[1].Interval)
	// covered portion only: [150,200) and [250,280)
	assert.Equal(t, int32(80), segments[0].Interval.Len()+segments[1].Interval.Len())
}

func TestTranslateMergesAcrossInsertion(t *testing.T) {
	// [200,250) is simulated-only sequence; the flanks abut on the target
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 250, 300, contigY, 1100, intervals.Forward),
	)
	segments := index.Translate(contigX, 150, 280, intervals.Forward, 0)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Interval{Start: 1050, End: 1130}, segments[0].Interval)
}

func TestTranslateMergesAbuttingBlocks(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 200, 300, contigY, 1100, intervals.Forward),
		block(contigX, 300, 400, contigY, 1200, intervals.Forward),
	)
	segments := index.Translate(contigX, 150, 350, intervals.Forward, 0)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Interval{Start: 1050, End: 1250}, segments[0].Interval)
}

func TestTranslateMergesReverseBlocks(t *testing.T) {
	// an inversion split in two blocks
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1100, intervals.Reverse),
		block(contigX, 200, 300, contigY, 1000, intervals.Reverse),
	)
	segments := index.Translate(contigX, 150, 250, intervals.Forward, 0)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Interval{Start: 1050, End: 1150}, segments[0].Interval)
	assert.Equal(t, intervals.Reverse, segments[0].Strand)
}

func TestTranslateDoesNotMergeOutOfOrderTargets(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1100, intervals.Forward),
		block(contigX, 200, 300, contigY, 1000, intervals.Forward),
	)
	segments := index.Translate(contigX, 100, 300, intervals.Forward, 0)
	require.Len(t, segments, 2)
	assert.Equal(t, intervals.Interval{Start: 1100, End: 1200}, segments[0].Interval)
	assert.Equal(t, intervals.Interval{Start: 1000, End: 1100}, segments[1].Interval)
}

func TestTranslateFiltersShortPieces(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 200, 300, contigZ, 5000, intervals.Forward),
	)
	segments := index.Translate(contigX, 195, 260, intervals.Forward, 10)
	require.Len(t, segments, 1)
	assert.Equal(t, contigZ, segments[0].Contig)
	for _, segment := range index.Translate(contigX, 101, 299, intervals.Forward, 60) {
		assert.GreaterOrEqual(t, segment.Interval.Len(), int32(60))
	}

	// zero disables filtering
	segments = index.Translate(contigX, 199, 201, intervals.Forward, 0)
	require.Len(t, segments, 2)
	assert.Equal(t, int32(1), segments[0].Interval.Len())
	assert.Equal(t, int32(1), segments[1].Interval.Len())
}

func TestMergeIdempotent(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 0, 10, contigY, 0, intervals.Forward),
		block(contigX, 10, 20, contigY, 10, intervals.Forward),
		block(contigX, 20, 30, contigZ, 10, intervals.Forward),
		block(contigX, 30, 40, contigY, 40, intervals.Reverse),
		block(contigX, 40, 50, contigY, 30, intervals.Reverse),
	)
	merged := index.Translate(contigX, 0, 50, intervals.Forward, 0)
	require.Len(t, merged, 3)
	again := MergeSegments(append([]TargetSegment(nil), merged...))
	assert.Equal(t, merged, again)
}

func TestTranslateDeterministic(t *testing.T) {
	index := mustBuild(t,
		block(contigX, 100, 200, contigY, 1000, intervals.Forward),
		block(contigX, 200, 300, contigZ, 5000, intervals.Reverse),
	)
	first := index.Translate(contigX, 120, 280, intervals.Forward, 1)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, index.Translate(contigX, 120, 280, intervals.Forward, 1))
	}
}

const testMap = `# size	source	pos	target	pos	strand	kind	variant
100	1_maternal	101	1	1001	+	SEQ	.
50	1_maternal	201	1	1100	+	INS	var1
100	1_maternal	251	1	1101	-	INV	var2
10	1_maternal	351	1	1201	+	DEL	var3
`

func TestParseMap(t *testing.T) {
	index, err := ParseMap(strings.NewReader(testMap), "test.map")
	require.NoError(t, err)
	maternal := utils.Intern("1_maternal")
	blocks := index.Blocks(maternal)
	require.Len(t, blocks, 2)
	assert.Equal(t, intervals.Interval{Start: 100, End: 200}, blocks[0].Source)
	assert.Equal(t, int32(1000), blocks[0].TargetStart)
	assert.Equal(t, utils.Intern("1"), blocks[0].TargetContig)
	assert.Equal(t, SEQ, blocks[0].Kind)
	assert.Equal(t, intervals.Interval{Start: 250, End: 350}, blocks[1].Source)
	assert.Equal(t, intervals.Reverse, blocks[1].Strand)
	assert.Equal(t, INV, blocks[1].Kind)
	assert.Equal(t, "var2", blocks[1].VariantID)

	segments := index.Translate(maternal, 150, 180, intervals.Forward, 1)
	require.Len(t, segments, 1)
	assert.Equal(t, intervals.Interval{Start: 1050, End: 1080}, segments[0].Interval)
	// inserted sequence is not lifted
	assert.Empty(t, index.Translate(maternal, 200, 250, intervals.Forward, 0))
}

func TestParseMapErrors(t *testing.T) {
	for _, input := range []string{
		"100\t1_maternal\t101\t1\n",
		"x\t1_maternal\t101\t1\t1001\t+\n",
		"100\t1_maternal\t0\t1\t1001\t+\n",
		"100\t1_maternal\t101\t1\t1001\t*\n",
		"100\t1_maternal\t101\t1\t1001\t+\tFOO\n",
		"100\t1_maternal\t101\t1\t1001\t+\n100\t1_maternal\t150\t1\t5001\t+\n",
		"100\t1_maternal\t1\t1\t2147483600\t+\n",
	} {
		_, err := ParseMap(strings.NewReader(input), "bad.map")
		if assert.Error(t, err, input) {
			assert.True(t, errors.Is(err, ErrMalformedMapping), input)
			assert.Contains(t, err.Error(), "bad.map")
		}
	}
}

func TestParseBlockTargetSpan(t *testing.T) {
	_, err := ParseBlock("100\t1_maternal\t1\t1\t2147483600\t+")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "invalid target position")
	}
	block, err := ParseBlock("100\t1_maternal\t1\t1\t2147483548\t+")
	require.NoError(t, err)
	assert.Equal(t, intervals.Interval{Start: 2147483547, End: 2147483647}, block.Target())
}

func TestParseMapFileGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(testMap))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	filename := filepath.Join(t.TempDir(), "test.map.gz")
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0600))

	index, err := ParseMapFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 2, index.Len())
}

func TestBlockKind(t *testing.T) {
	for _, kind := range []BlockKind{SEQ, INS, DEL, INV, DupTandem, TRA} {
		parsed, err := ParseBlockKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	assert.True(t, DupTandem.Liftable())
	assert.False(t, INS.Liftable())
	assert.False(t, DEL.Liftable())
}
