// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package config

import (
	"context"
	"io/ioutil"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"gopkg.in/yaml.v2"
)

// MainPeaks is the key of the primary peak set in Sample.PeaksFiles.
const MainPeaks = "main"

// Sample is the read-only per-sample record produced by the upstream pipeline.
type Sample struct {
	Name        string `yaml:"name"`
	WorkDir     string `yaml:"work_dir"`
	GenomeBuild string `yaml:"genome_build"`
	// WorkBam is the aligned, deduplicated BAM used for QC.
	WorkBam string `yaml:"work_bam"`
	// PeaksFiles maps a peak-set name to its region file. It may be nil when
	// peak calling did not run for the sample.
	PeaksFiles map[string]string `yaml:"peaks_files"`
	Config     Config            `yaml:"config"`
}

// Cores returns the number of cores the sample may use, at least 1.
func (s *Sample) Cores() int {
	if s.Config.Algorithm.NumCores < 1 {
		return 1
	}
	return s.Config.Algorithm.NumCores
}

// ToolsOn returns the optional tools enabled for the sample.
func (s *Sample) ToolsOn() []string { return s.Config.Algorithm.ToolsOn }

// Peaks returns the region file of the named peak set, or "" if there is
// none.
func (s *Sample) Peaks(name string) string {
	return s.PeaksFiles[name]
}

// ParseSample decodes a YAML sample description.
func ParseSample(data []byte) (*Sample, error) {
	s := &Sample{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.E(errors.Invalid, "parse sample", err)
	}
	if s.Name == "" {
		return nil, errors.E(errors.Invalid, "sample has no name")
	}
	return s, nil
}

// LoadSample reads a YAML sample description from path.
func LoadSample(ctx context.Context, path string) (s *Sample, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, in, &err)
	data, err := ioutil.ReadAll(in.Reader(ctx))
	if err != nil {
		return nil, errors.E(err, "read", path)
	}
	if s, err = ParseSample(data); err != nil {
		return nil, errors.E(err, path)
	}
	return s, nil
}
