// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/chipqc/config"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, path string) {
	require.NoError(t, ioutil.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
}

func TestProgram(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	abs := filepath.Join(tmpDir, "samtools-1.9")
	writeExecutable(t, abs)
	binDir := filepath.Join(tmpDir, "bin")
	require.NoError(t, os.Mkdir(binDir, 0755))
	writeExecutable(t, filepath.Join(binDir, "samtools"))

	tests := []struct {
		name string
		cfg  *config.Config
		want string
	}{
		{"absolute", &config.Config{Resources: map[string]config.Resource{"samtools": {Cmd: abs}}}, abs},
		{"dir", &config.Config{Resources: map[string]config.Resource{"samtools": {Dir: binDir}}}, filepath.Join(binDir, "samtools")},
		{"builtin", &config.Config{Resources: map[string]config.Resource{"samtools": {Cmd: config.Builtin}}}, config.Builtin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Program("samtools")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgramPath(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	writeExecutable(t, filepath.Join(tmpDir, "samtools"))
	oldPath := os.Getenv("PATH")
	defer os.Setenv("PATH", oldPath)
	require.NoError(t, os.Setenv("PATH", tmpDir))

	var cfg *config.Config
	got, err := cfg.Program("samtools")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "samtools"), got)

	_, err = cfg.Program("no-such-program-here")
	assert.True(t, errors.Is(errors.NotExist, err), "%v", err)
}

func TestProgramMissingAbsolute(t *testing.T) {
	cfg := &config.Config{Resources: map[string]config.Resource{"samtools": {Cmd: "/does/not/exist/samtools"}}}
	_, err := cfg.Program("samtools")
	assert.True(t, errors.Is(errors.NotExist, err), "%v", err)
}

const sampleYAML = `
name: S1
work_dir: /scratch/S1
genome_build: hg38
work_bam: /scratch/S1/S1.bam
peaks_files:
  main: /scratch/S1/S1_peaks.narrowPeak
  macs2: /scratch/S1/S1_peaks.narrowPeak
description: extra fields are ignored
config:
  algorithm:
    num_cores: 4
    tools_on: [rchipqc]
  resources:
    samtools:
      cmd: /opt/bin/samtools
`

func TestParseSample(t *testing.T) {
	s, err := config.ParseSample([]byte(sampleYAML))
	require.NoError(t, err)
	expect.EQ(t, s.Name, "S1")
	expect.EQ(t, s.GenomeBuild, "hg38")
	expect.EQ(t, s.Peaks(config.MainPeaks), "/scratch/S1/S1_peaks.narrowPeak")
	expect.EQ(t, s.Cores(), 4)
	expect.EQ(t, s.ToolsOn(), []string{"rchipqc"})
	expect.True(t, s.Config.ToolOn("rchipqc"))
	expect.False(t, s.Config.ToolOn("chipqc"))
	expect.EQ(t, s.Config.Resources["samtools"].Cmd, "/opt/bin/samtools")
}

func TestParseSampleDefaults(t *testing.T) {
	s, err := config.ParseSample([]byte("name: S2\n"))
	require.NoError(t, err)
	expect.EQ(t, s.Cores(), 1)
	expect.EQ(t, s.Peaks(config.MainPeaks), "")

	_, err = config.ParseSample([]byte("work_dir: /tmp\n"))
	assert.True(t, errors.Is(errors.Invalid, err))
}

func TestLoadSample(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tmpDir, "sample.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(sampleYAML), 0644))
	s, err := config.LoadSample(vcontext.Background(), path)
	require.NoError(t, err)
	expect.EQ(t, s.WorkBam, "/scratch/S1/S1.bam")
}
