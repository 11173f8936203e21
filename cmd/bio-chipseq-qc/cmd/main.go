// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"runtime"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/chipqc/config"
	"github.com/grailbio/chipqc/interval"
	"github.com/grailbio/chipqc/qc/chipseq"
	"github.com/grailbio/chipqc/qc/fragsize"
	"github.com/grailbio/chipqc/qc/samstats"
	"github.com/grailbio/chipqc/run"
	"v.io/x/lib/cmdline"
)

func newCmdRIP() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "rip",
		Short:    "Count reads in peaks",
		ArgsName: "bampath peakspath",
		Long: `Runs 'samtools stats --target-regions' on the BAM and reports its raw total
sequence count as the RiP metric. An empty peakspath yields an empty result.`,
	}
	cores := cmd.Flags.Int("cores", runtime.NumCPU(), "Number of samtools threads")
	outDir := cmd.Flags.String("out-dir", ".", "Directory that holds the reads_in_peaks.txt report. It must exist")
	configPath := cmd.Flags.String("config", "", "Sample YAML whose config section resolves programs")
	samtools := cmd.Flags.String("samtools", "", `samtools executable. Overrides -config. "builtin" computes the report in process`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("rip takes bampath and peakspath, but got %v", argv)
		}
		ctx := vcontext.Background()
		cfg := &config.Config{}
		if *configPath != "" {
			sample, err := config.LoadSample(ctx, *configPath)
			if err != nil {
				return err
			}
			cfg = &sample.Config
		}
		if *samtools != "" {
			if cfg.Resources == nil {
				cfg.Resources = map[string]config.Resource{}
			}
			cfg.Resources["samtools"] = config.Resource{Cmd: *samtools}
		}
		result, err := chipseq.ReadsInPeaks(ctx, run.Local{}, argv[0], argv[1], *cores, *outDir, cfg)
		if err != nil {
			return err
		}
		return printJSON(env.Stdout, result)
	})
	return cmd
}

func newCmdRun() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "run",
		Short:    "Run sample-level ChIP-seq QC",
		ArgsName: "samplepath",
		Long: `Reads a sample YAML and computes its QC metrics: RiP against the main peak
set, and the ChIPQC report when the rchipqc tool is on.`,
	}
	outDir := cmd.Flags.String("out-dir", "", "Output directory. By default <work_dir>/qc/<name>/chipqc")
	bamPath := cmd.Flags.String("bam", "", "BAM to evaluate. By default the sample's work_bam")
	metricsPath := cmd.Flags.String("metrics", "", "If set, also write the metrics as a sample/metric/value TSV")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("run takes one samplepath argument, but got %v", argv)
		}
		return runSample(env.Stdout, argv[0], runOpts{
			outDir:  *outDir,
			bamPath: *bamPath,
			metrics: *metricsPath,
		})
	})
	return cmd
}

func newCmdStats() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "stats",
		Short:    "Print samtools-style summary numbers of a BAM file",
		ArgsName: "bampath",
	}
	cores := cmd.Flags.Int("cores", runtime.NumCPU(), "Number of BGZF decompression threads")
	targets := cmd.Flags.String("target-regions", "", "Only count mapped reads overlapping the regions of this BED file")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("stats takes one bampath argument, but got %v", argv)
		}
		ctx := vcontext.Background()
		var regions *interval.Regions
		if *targets != "" {
			var err error
			if regions, err = interval.LoadRegions(ctx, *targets); err != nil {
				return err
			}
		}
		stats, err := samstats.Compute(ctx, argv[0], regions, *cores)
		if err != nil {
			return err
		}
		return stats.WriteSN(env.Stdout)
	})
	return cmd
}

func newCmdFragsize() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "fragsize",
		Short:    "Estimate the fragment length of a paired-end BAM file",
		ArgsName: "bampath",
	}
	maxPairs := cmd.Flags.Int("max-pairs", fragsize.DefaultOpts.MaxPairs, "Number of pairs to sample; <= 0 reads the whole file")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("fragsize takes one bampath argument, but got %v", argv)
		}
		size, err := fragsize.Estimate(vcontext.Background(), argv[0], fragsize.Opts{
			MaxPairs:    *maxPairs,
			Parallelism: runtime.NumCPU(),
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(env.Stdout, size)
		return err
	})
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", js)
	return err
}

// Run is the entry point of bio-chipseq-qc.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "bio-chipseq-qc",
			Short:    "ChIP-seq quality-control metrics",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdRIP(),
				newCmdRun(),
				newCmdStats(),
				newCmdFragsize(),
			},
		})
}
