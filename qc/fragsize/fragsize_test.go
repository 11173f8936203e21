// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package fragsize

import (
	"path/filepath"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/chipqc/qc/qctest"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	expect.EQ(t, median([]int{5}), 5)
	expect.EQ(t, median([]int{300, 100, 200}), 200)
	expect.EQ(t, median([]int{100, 201, 300, 150}), 175)
}

func TestEstimate(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()
	header := qctest.NewHeader(t, "chr1")

	r1 := sam.Paired | sam.ProperPair | sam.Read1
	r2 := sam.Paired | sam.ProperPair | sam.Read2 | sam.Reverse
	reads := []qctest.Read{
		{Name: "a", Ref: "chr1", Pos: 100, Len: 50, MapQ: 60, Flags: r1, MatePos: 250, TempLen: 200},
		{Name: "b", Ref: "chr1", Pos: 120, Len: 50, MapQ: 60, Flags: r1 | sam.Reverse, MatePos: 10, TempLen: -160},
		{Name: "c", Ref: "chr1", Pos: 130, Len: 50, MapQ: 60, Flags: r1 | sam.Duplicate, MatePos: 900, TempLen: 820},
		{Name: "d", Ref: "chr1", Pos: 140, Len: 50, MapQ: 60, Flags: r1, MatePos: 300, TempLen: 210},
		{Name: "a", Ref: "chr1", Pos: 250, Len: 50, MapQ: 60, Flags: r2, MatePos: 100, TempLen: -200},
	}
	bamPath := filepath.Join(tmpDir, "pe.bam")
	qctest.WriteBAM(t, bamPath, header, reads)

	size, err := Estimate(ctx, bamPath, DefaultOpts)
	require.NoError(t, err)
	expect.EQ(t, size, 200)

	size, err = Estimate(ctx, bamPath, Opts{MaxPairs: 2})
	require.NoError(t, err)
	expect.EQ(t, size, 180)

	sePath := filepath.Join(tmpDir, "se.bam")
	qctest.WriteBAM(t, sePath, header, qctest.Fixture[:1])
	size, err = Estimate(ctx, sePath, DefaultOpts)
	require.NoError(t, err)
	expect.EQ(t, size, 0)
}
