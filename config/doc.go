// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package config holds the typed view of the pipeline configuration that the
// QC steps read: per-program resources, algorithm settings, and the
// per-sample description (work dir, genome build, peak files).
//
// Sample descriptions are YAML, in the same shape the upstream pipeline writes:
//
//   name: S1
//   work_dir: /scratch/S1
//   genome_build: hg38
//   work_bam: /scratch/S1/align/S1.bam
//   peaks_files:
//     main: /scratch/S1/macs2/S1_peaks.narrowPeak
//   config:
//     algorithm:
//       num_cores: 8
//       tools_on: [rchipqc]
//     resources:
//       samtools:
//         cmd: /opt/bin/samtools
package config
