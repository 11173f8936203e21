// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package fragsize estimates the sequenced fragment length of a paired-end
// library from the template lengths recorded in its BAM.
package fragsize

import (
	"context"
	"io"
	"sort"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// Opts controls Estimate.
type Opts struct {
	// MaxPairs caps the number of pairs sampled; <= 0 means no cap.
	MaxPairs int
	// Parallelism is the number of BGZF decompression goroutines.
	Parallelism int
}

// DefaultOpts samples the first million pairs.
var DefaultOpts = Opts{MaxPairs: 1000000, Parallelism: 1}

const wantFlags = sam.Paired | sam.ProperPair | sam.Read1

const skipFlags = sam.Unmapped | sam.MateUnmapped | sam.Secondary | sam.Supplementary | sam.Duplicate | sam.QCFail

// Estimate returns the median absolute template length over properly paired,
// mapped, primary read1 records. It returns 0 when the BAM has no such
// records, e.g. for single-end libraries.
func Estimate(ctx context.Context, bamPath string, opts Opts) (size int, err error) {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	in, err := file.Open(ctx, bamPath)
	if err != nil {
		return 0, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader, err := bam.NewReader(in.Reader(ctx), opts.Parallelism)
	if err != nil {
		return 0, errors.Wrapf(err, "fragsize: %s", bamPath)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	var (
		lengths []int
		n       int
	)
	for opts.MaxPairs <= 0 || len(lengths) < opts.MaxPairs {
		rec, rerr := reader.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, errors.Wrapf(rerr, "fragsize: %s", bamPath)
		}
		if n++; n%(1<<16) == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if rec.Flags&wantFlags == wantFlags && rec.Flags&skipFlags == 0 && rec.TempLen != 0 {
			tlen := rec.TempLen
			if tlen < 0 {
				tlen = -tlen
			}
			lengths = append(lengths, tlen)
		}
		sam.PutInFreePool(rec)
	}
	if len(lengths) == 0 {
		log.Printf("fragsize: %s: no proper pairs, assuming single-end", bamPath)
		return 0, nil
	}
	size = median(lengths)
	log.Debug.Printf("fragsize: %s: median of %d pairs is %d", bamPath, len(lengths), size)
	return size, nil
}

// median sorts a and returns its median, rounding down between the two
// middle elements of an even-length slice.
func median(a []int) int {
	sort.Ints(a)
	mid := len(a) / 2
	if len(a)%2 == 1 {
		return a[mid]
	}
	return (a[mid-1] + a[mid]) / 2
}
