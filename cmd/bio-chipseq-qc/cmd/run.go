// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"io"
	"path/filepath"
	"sort"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/chipqc/config"
	"github.com/grailbio/chipqc/qc/chipseq"
	"github.com/grailbio/chipqc/run"
)

type runOpts struct {
	outDir  string
	bamPath string
	metrics string
	runner  run.Runner
}

func runSample(w io.Writer, samplePath string, opts runOpts) error {
	ctx := vcontext.Background()
	sample, err := config.LoadSample(ctx, samplePath)
	if err != nil {
		return err
	}
	if opts.outDir == "" {
		opts.outDir = filepath.Join(sample.WorkDir, "qc", sample.Name, "chipqc")
	}
	if opts.bamPath == "" {
		opts.bamPath = sample.WorkBam
	}
	if opts.runner == nil {
		opts.runner = run.Local{}
	}
	result, err := chipseq.Run(ctx, opts.runner, opts.bamPath, sample, opts.outDir)
	if err != nil {
		return err
	}
	if result.IsEmpty() {
		log.Printf("%s: no peaks, no ChIP-seq metrics", sample.Name)
	}
	if opts.metrics != "" {
		if err := writeMetrics(ctx, opts.metrics, sample.Name, result); err != nil {
			return err
		}
	}
	return printJSON(w, result)
}

// writeMetrics writes the metrics of result as sample/metric/value rows,
// sorted by metric name.
func writeMetrics(ctx context.Context, path, sampleName string, result chipseq.Result) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := tsv.NewWriter(out.Writer(ctx))
	w.WriteString("#SAMPLE\tMETRIC\tVALUE")
	if err = w.EndLine(); err != nil {
		return err
	}
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.WriteString(sampleName)
		w.WriteString(name)
		w.WriteString(result.Metrics[name])
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}
