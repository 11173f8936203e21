// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package chipseq

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/chipqc/config"
	"github.com/grailbio/chipqc/interval"
	"github.com/grailbio/chipqc/qc/samstats"
	"github.com/grailbio/chipqc/run"
	"github.com/grailbio/chipqc/transaction"
)

// ReadsInPeaksFile is the name of the cached samtools report in the output
// directory.
const ReadsInPeaksFile = "reads_in_peaks.txt"

// ReadsInPeaks computes the RiP metric of bamPath against the regions in
// peaksPath. An empty peaksPath yields the zero Result: the metric is not
// defined without peaks, and nothing is run or written.
//
// The samtools executable is resolved from cfg. The report is written to
// <outDir>/reads_in_peaks.txt through a file transaction, so a failed run
// leaves no report behind. An existing report is reused without running
// samtools. outDir must exist.
func ReadsInPeaks(ctx context.Context, runner run.Runner, bamPath, peaksPath string, cores int, outDir string, cfg *config.Config) (Result, error) {
	if peaksPath == "" {
		return Result{}, nil
	}
	samtools, err := cfg.Program("samtools")
	if err != nil {
		return Result{}, err
	}
	outPath := filepath.Join(outDir, ReadsInPeaksFile)
	if _, err := os.Stat(outPath); err == nil {
		log.Debug.Printf("%s exists, skipping samtools stats", outPath)
	} else if !os.IsNotExist(err) {
		return Result{}, errors.E(err, "stat", outPath)
	} else {
		err = transaction.File(ctx, outPath, func(txPath string) error {
			if config.IsBuiltin(samtools) {
				return builtinStats(ctx, bamPath, peaksPath, cores, txPath)
			}
			return runner.Run(ctx, run.Command{
				Path:   samtools,
				Args:   []string{"stats", "-@", strconv.Itoa(cores), bamPath, "--target-regions", peaksPath},
				Stdout: txPath,
			}, "Calculating RIP in "+bamPath)
		})
		if err != nil {
			return Result{}, err
		}
	}
	reads, err := readRawTotal(ctx, outPath)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Base:    outPath,
		Metrics: map[string]string{RiP: reads},
	}, nil
}

// readRawTotal scrapes the raw total sequence count out of a samtools stats
// report.
func readRawTotal(ctx context.Context, path string) (reads string, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer file.CloseAndReport(ctx, in, &err)
	reads, found, err := samstats.FindLastToken(in.Reader(ctx), samstats.RawTotalSequences)
	if err != nil {
		return "", errors.E(err, "read", path)
	}
	if !found {
		return "", errors.E(errors.NotExist, &MetricNotFoundError{Path: path, Marker: samstats.RawTotalSequences})
	}
	return reads, nil
}

// builtinStats writes a samtools-compatible SN report computed in process.
func builtinStats(ctx context.Context, bamPath, peaksPath string, cores int, outPath string) (err error) {
	log.Printf("Calculating RIP in %s (builtin)", bamPath)
	peaks, err := interval.LoadRegions(ctx, peaksPath)
	if err != nil {
		return err
	}
	stats, err := samstats.Compute(ctx, bamPath, peaks, cores)
	if err != nil {
		return err
	}
	out, err := file.Create(ctx, outPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	return stats.WriteSN(out.Writer(ctx))
}
