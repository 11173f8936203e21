// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*Package chipseq computes the ChIP-seq quality-control metrics of a sample.

  The primary metric is RiP (reads in peaks): the number of primary reads that
  overlap the sample's called peaks, as reported by `samtools stats
  --target-regions` in its "raw total sequences" line. The report is cached at
  <outdir>/reads_in_peaks.txt; if that file exists it is parsed as-is and
  samtools is not run again. The cache is keyed by path only: two concurrent
  runs with the same outdir may both compute the report, and the later commit
  wins.

  Optionally (tool "rchipqc"), the ChIPQC Bioconductor package is run to
  produce an HTML report as a secondary output.
*/
package chipseq
