// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package samstats

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/chipqc/interval"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Stats holds the summary numbers the builtin engine computes. Field
// semantics follow samtools stats: secondary and supplementary alignments are
// not counted, and when target regions are given only mapped records that
// overlap them are considered.
type Stats struct {
	RawTotalSequences int64
	ReadsMapped       int64
	ReadsUnmapped     int64
	ReadsPaired       int64
	ReadsDuplicated   int64
	ReadsMQ0          int64
	ReadsQCFailed     int64
	TotalLength       int64
	BasesMapped       int64
	MaxLength         int
}

// AverageLength returns the mean read length, or 0 for an empty input.
func (s *Stats) AverageLength() int64 {
	if s.RawTotalSequences == 0 {
		return 0
	}
	return s.TotalLength / s.RawTotalSequences
}

func (s *Stats) record(r *sam.Record) {
	s.RawTotalSequences++
	n := int64(r.Seq.Length)
	s.TotalLength += n
	if r.Seq.Length > s.MaxLength {
		s.MaxLength = r.Seq.Length
	}
	f := r.Flags
	if f&sam.Unmapped != 0 {
		s.ReadsUnmapped++
	} else {
		s.ReadsMapped++
		s.BasesMapped += n
		if r.MapQ == 0 {
			s.ReadsMQ0++
		}
	}
	if f&sam.Paired != 0 {
		s.ReadsPaired++
	}
	if f&sam.Duplicate != 0 {
		s.ReadsDuplicated++
	}
	if f&sam.QCFail != 0 {
		s.ReadsQCFailed++
	}
}

// Summary returns s as SN entries, in samtools order.
func (s *Stats) Summary() Summary {
	d := func(v int64) string { return fmt.Sprintf("%d", v) }
	return Summary{
		{Label: RawTotalSequences, Value: d(s.RawTotalSequences), Comment: "excluding supplementary and secondary reads"},
		{Label: "filtered sequences", Value: "0"},
		{Label: "reads mapped", Value: d(s.ReadsMapped)},
		{Label: "reads unmapped", Value: d(s.ReadsUnmapped)},
		{Label: "reads paired", Value: d(s.ReadsPaired)},
		{Label: "reads duplicated", Value: d(s.ReadsDuplicated), Comment: "PCR or optical duplicate bit set"},
		{Label: "reads MQ0", Value: d(s.ReadsMQ0), Comment: "mapped and MQ=0"},
		{Label: "reads QC failed", Value: d(s.ReadsQCFailed)},
		{Label: "total length", Value: d(s.TotalLength), Comment: "ignores clipping"},
		{Label: "bases mapped", Value: d(s.BasesMapped), Comment: "ignores clipping"},
		{Label: "average length", Value: d(s.AverageLength())},
		{Label: "maximum length", Value: d(int64(s.MaxLength))},
	}
}

// WriteSN writes s in the layout of the SN section of samtools stats, so
// that readers of samtools reports can consume it unchanged.
func (s *Stats) WriteSN(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# Summary Numbers. Use `grep ^SN | cut -f 2-` to extract this part.\n"); err != nil {
		return err
	}
	for _, e := range s.Summary() {
		var err error
		if e.Comment != "" {
			_, err = fmt.Fprintf(w, "SN\t%s:\t%s\t# %s\n", e.Label, e.Value, e.Comment)
		} else {
			_, err = fmt.Fprintf(w, "SN\t%s:\t%s\n", e.Label, e.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Compute reads the BAM at bamPath and computes its summary numbers.
// targets, if non-nil, restricts the computation to mapped records
// overlapping it. cores is the number of BGZF decompression goroutines.
func Compute(ctx context.Context, bamPath string, targets *interval.Regions, cores int) (stats Stats, err error) {
	if cores < 1 {
		cores = 1
	}
	in, err := file.Open(ctx, bamPath)
	if err != nil {
		return stats, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader, err := bam.NewReader(in.Reader(ctx), cores)
	if err != nil {
		return stats, errors.E(err, "samstats: read header of", bamPath)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var n int
	for {
		rec, rerr := reader.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return stats, errors.E(rerr, "samstats: read", bamPath)
		}
		n++
		if n%(1<<16) == 0 {
			if err = ctx.Err(); err != nil {
				return stats, errors.E(errors.Canceled, "samstats:", bamPath, err)
			}
		}
		if keep(rec, targets) {
			stats.record(rec)
		}
		sam.PutInFreePool(rec)
	}
	log.Debug.Printf("samstats: %s: %d records read, %d counted", bamPath, n, stats.RawTotalSequences)
	return stats, nil
}

func keep(r *sam.Record, targets *interval.Regions) bool {
	if r.Flags&(sam.Secondary|sam.Supplementary) != 0 {
		return false
	}
	if targets == nil {
		return true
	}
	if r.Flags&sam.Unmapped != 0 || r.Ref == nil {
		return false
	}
	return targets.Overlaps(r.Ref.Name(), interval.PosType(r.Pos), interval.PosType(r.End()))
}
