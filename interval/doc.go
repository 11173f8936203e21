/*Package interval loads genomic region sets such as called peaks and answers
  overlap queries against them.
  Regions are stored as an interval union per chromosome: overlapping and
  touching intervals are merged, and empty ones dropped.  Coordinates are
  0-based and half-open, as in BED.  It assumes every position fits in a
  PosType, which is int32 since that's what BAM files are limited to.
*/
package interval
