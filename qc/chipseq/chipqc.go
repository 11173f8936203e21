// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package chipseq

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/chipqc/config"
	"github.com/grailbio/chipqc/qc/fragsize"
	"github.com/grailbio/chipqc/run"
	"github.com/grailbio/chipqc/transaction"
)

// ChIPQCTool is the tools_on entry that enables the ChIPQC report.
const ChIPQCTool = "rchipqc"

// chipqcScript is the name of the generated R script inside the report
// directory.
const chipqcScript = "chipqc.r"

// SupportedGenomes are the genome builds ChIPQC ships annotation for. Other
// builds are reported without annotation.
var SupportedGenomes = []string{"hg19", "hg38", "mm10", "mm9", "rn4", "ce6", "dm3"}

var chipqcTemplate = template.Must(template.New("chipqc").Funcs(template.FuncMap{
	"rstring": rString,
}).Parse(`library(ChIPQC);
sample = ChIPQCsample({{rstring .Bam}}, {{rstring .Peaks}}, annotation = {{rstring .Genome}}, fragmentLength = {{.FragmentLength}});
ChIPQCreport(sample);
`))

type chipqcParams struct {
	Bam, Peaks, Genome string
	FragmentLength     int
}

// rString renders s as an R string literal, or NULL if s is empty.
func rString(s string) string {
	if s == "" {
		return "NULL"
	}
	return strconv.Quote(s)
}

func supportedGenome(build string) bool {
	for _, g := range SupportedGenomes {
		if g == build {
			return true
		}
	}
	return false
}

// writeChIPQCScript writes the R code that reports on one sample into dir
// and returns its path.
func writeChIPQCScript(ctx context.Context, dir string, sample *config.Sample, bamPath string) (path string, err error) {
	bam := sample.WorkBam
	if bam == "" {
		bam = bamPath
	}
	fragLen, err := fragsize.Estimate(ctx, bam, fragsize.Opts{
		MaxPairs:    fragsize.DefaultOpts.MaxPairs,
		Parallelism: sample.Cores(),
	})
	if err != nil {
		return "", err
	}
	params := chipqcParams{
		Bam:            bam,
		Peaks:          sample.Peaks(config.MainPeaks),
		FragmentLength: fragLen,
	}
	if supportedGenome(sample.GenomeBuild) {
		params.Genome = sample.GenomeBuild
	}
	path = filepath.Join(dir, chipqcScript)
	out, err := os.Create(path)
	if err != nil {
		return "", errors.E(err, "create", path)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.E(cerr, "close", path)
		}
	}()
	if err = chipqcTemplate.Execute(out, params); err != nil {
		return "", errors.E(err, "write", path)
	}
	return path, nil
}

// ChIPQC runs the ChIPQC Bioconductor report for one sample into outDir.
// If outDir already exists the previous report is returned as is. The report
// is built in a temporary directory that only replaces outDir on success.
func ChIPQC(ctx context.Context, runner run.Runner, bamPath string, sample *config.Sample, outDir string) (Result, error) {
	log.Printf("ChIPQC is unstable right now, if it breaks, turn off the tool.")
	if _, err := os.Stat(outDir); err == nil {
		return Result{Secondary: []string{outDir}}, nil
	}
	rscript, err := sample.Config.Program("Rscript")
	if err != nil {
		return Result{}, err
	}
	err = transaction.Dir(ctx, outDir, func(txDir string) error {
		script, err := writeChIPQCScript(ctx, txDir, sample, bamPath)
		if err != nil {
			return err
		}
		return runner.Run(ctx, run.Command{
			Path: rscript,
			Args: []string{script},
			Dir:  txDir,
		}, "ChIPQC in "+sample.Name)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Secondary: []string{outDir}}, nil
}
