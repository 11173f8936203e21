// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package qctest builds small BAM and peak fixtures for QC tests.
package qctest

import (
	"bytes"
	"io/ioutil"
	"os"
	"testing"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/require"
)

// NewHeader returns a coordinate-sorted header with the given references,
// each 100kb long.
func NewHeader(t testing.TB, names ...string) *sam.Header {
	var refs []*sam.Reference
	for _, name := range names {
		ref, err := sam.NewReference(name, "", "", 100000, nil, nil)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	header, err := sam.NewHeader(nil, refs)
	require.NoError(t, err)
	header.SortOrder = sam.Coordinate
	return header
}

// Read describes one record. Ref == "" means unmapped.
type Read struct {
	Name    string
	Ref     string
	Pos     int
	Len     int
	Flags   sam.Flags
	MapQ    byte
	MatePos int
	TempLen int
}

// WriteBAM writes reads, in order, to a BAM file at path.
func WriteBAM(t testing.TB, path string, header *sam.Header, reads []Read) {
	refs := map[string]*sam.Reference{}
	for _, ref := range header.Refs() {
		refs[ref.Name()] = ref
	}
	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, header, 1)
	require.NoError(t, err)
	for _, r := range reads {
		seq := bytes.Repeat([]byte("A"), r.Len)
		qual := bytes.Repeat([]byte{30}, r.Len)
		var ref *sam.Reference
		var cigar []sam.CigarOp
		pos, matePos := -1, -1
		if r.Ref != "" {
			ref = refs[r.Ref]
			require.NotNil(t, ref, "unknown reference %s", r.Ref)
			cigar = []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, r.Len)}
			pos = r.Pos
		}
		var mateRef *sam.Reference
		if r.Flags&sam.Paired != 0 && ref != nil {
			mateRef = ref
			matePos = r.MatePos
		}
		rec, err := sam.NewRecord(r.Name, ref, mateRef, pos, matePos, r.TempLen, r.MapQ, cigar, seq, qual, nil)
		require.NoError(t, err)
		rec.Flags = r.Flags
		if ref == nil {
			rec.Flags |= sam.Unmapped
		}
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())
	require.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0644))
}

// WriteFile writes data to path.
func WriteFile(t testing.TB, path, data string) {
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0644))
}

// Fixture is a small BAM layout shared by QC tests, together with the
// numbers samtools stats reports for it.
//
// Without target regions: 5 primary records (one secondary is excluded), 4
// mapped. With TestPeaks as target regions: 3 records.
var Fixture = []Read{
	{Name: "r1", Ref: "chr1", Pos: 100, Len: 50, MapQ: 60},
	{Name: "r3", Ref: "chr1", Pos: 150, Len: 50, MapQ: 60, Flags: sam.Secondary},
	{Name: "r4", Ref: "chr1", Pos: 160, Len: 50, MapQ: 0, Flags: sam.Duplicate},
	{Name: "r2", Ref: "chr1", Pos: 300, Len: 50, MapQ: 60},
	{Name: "r5", Ref: "chr2", Pos: 10, Len: 50, MapQ: 60, Flags: sam.QCFail},
	{Name: "r6", Len: 50},
}

// TestPeaks are narrowPeak rows overlapping r1, r4 and r5 of Fixture.
const TestPeaks = "chr1\t120\t200\tpeak_1\t100\t.\t5.0\t10.0\t8.0\t40\n" +
	"chr2\t0\t20\tpeak_2\t50\t.\t3.0\t4.0\t2.0\t10\n"

// Mkdir creates dir.
func Mkdir(t testing.TB, dir string) {
	require.NoError(t, os.MkdirAll(dir, 0755))
}
