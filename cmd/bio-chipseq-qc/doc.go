// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
bio-chipseq-qc computes ChIP-seq quality-control metrics.

  bio-chipseq-qc rip -cores 8 -out-dir qc S1.bam S1_peaks.narrowPeak
    Count reads in peaks with samtools stats and print the metrics as JSON.
    The samtools report is kept in qc/reads_in_peaks.txt and reused by later
    runs.

  bio-chipseq-qc run -out-dir qc/S1 -metrics S1.metrics.tsv S1.yaml
    Run the sample-level QC described by a sample YAML.

  bio-chipseq-qc stats -target-regions S1_peaks.narrowPeak S1.bam
    Print samtools-style summary numbers computed in process.

  bio-chipseq-qc fragsize S1.bam
    Print the estimated fragment length.

Passing "-samtools builtin" to rip (or setting resources.samtools.cmd to
"builtin") computes the report in process instead of running samtools.
*/
package main
