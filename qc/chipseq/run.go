// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package chipseq

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/chipqc/config"
	"github.com/grailbio/chipqc/run"
)

// Run computes the standard ChIP-seq QC metrics of a sample: RiP against the
// sample's main peak set, plus the ChIPQC report if the rchipqc tool is on.
// outDir is created if needed.
func Run(ctx context.Context, runner run.Runner, bamPath string, sample *config.Sample, outDir string) (Result, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Result{}, errors.E(err, "create", outDir)
	}
	var out Result
	if sample.Config.ToolOn(ChIPQCTool) {
		r, err := ChIPQC(ctx, runner, bamPath, sample, filepath.Join(outDir, "chipqc"))
		if err != nil {
			return Result{}, err
		}
		out.merge(r)
	}
	r, err := ReadsInPeaks(ctx, runner, bamPath, sample.Peaks(config.MainPeaks), sample.Cores(), outDir, &sample.Config)
	if err != nil {
		return Result{}, errors.E(err, "sample", sample.Name)
	}
	out.merge(r)
	return out, nil
}
