package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// PosType is the type used to represent interval coordinates.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// Regions is an interval union keyed by chromosome name.  Each value is a
// length-2N sequence of endpoints in increasing order: the start of interval
// k is in element [2k] and its end in element [2k+1].
type Regions struct {
	endpoints map[string][]PosType
	bases     int64
	n         int
}

// Len returns the number of disjoint intervals.
func (r *Regions) Len() int { return r.n }

// Bases returns the number of bases covered.
func (r *Regions) Bases() int64 { return r.bases }

// Chroms returns the chromosome names with at least one interval, sorted.
func (r *Regions) Chroms() []string {
	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overlaps reports whether [start, end) on chrom shares at least one base
// with the region set.
func (r *Regions) Overlaps(chrom string, start, end PosType) bool {
	a := r.endpoints[chrom]
	if len(a) == 0 || end <= start {
		return false
	}
	// idx is the first endpoint strictly after start.  An odd idx means start
	// is inside interval idx/2; an even one means the next interval begins at
	// a[idx].
	idx := sort.Search(len(a), func(i int) bool { return a[i] > start })
	if idx&1 == 1 {
		return true
	}
	return idx < len(a) && a[idx] < end
}

// Contains reports whether the single base at pos on chrom is covered.
func (r *Regions) Contains(chrom string, pos PosType) bool {
	return r.Overlaps(chrom, pos, pos+1)
}

type rawInterval struct {
	start, end PosType
}

// getTokens saves up to the first len(tokens) tokens of line, returning the
// number saved.  Any (group of) characters <= ' ' is a delimiter.
func getTokens(tokens [][]byte, line []byte) int {
	posEnd := 0
	lineLen := len(line)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if line[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if line[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = line[pos:posEnd]
	}
	return len(tokens)
}

func isHeaderLine(line []byte) bool {
	return bytes.HasPrefix(line, []byte("#")) ||
		bytes.HasPrefix(line, []byte("track")) ||
		bytes.HasPrefix(line, []byte("browser"))
}

// NewRegions reads BED-like lines (BED, narrowPeak, broadPeak) from reader.
// Only the first three columns are used.  Input need not be sorted; peak
// callers commonly emit peaks in score order.
func NewRegions(reader io.Reader) (*Regions, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64<<10), 16<<20)
	raw := map[string][]rawInterval{}
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		line := scanner.Bytes()
		if isHeaderLine(line) {
			continue
		}
		nToken := getTokens(tokens[:], line)
		if nToken != 3 {
			if nToken == 0 {
				continue
			}
			return nil, fmt.Errorf("interval.NewRegions: line %d has fewer tokens than expected", lineIdx)
		}
		start, err := strconv.Atoi(string(tokens[1]))
		if err != nil {
			return nil, fmt.Errorf("interval.NewRegions: line %d: %v", lineIdx, err)
		}
		end, err := strconv.Atoi(string(tokens[2]))
		if err != nil {
			return nil, fmt.Errorf("interval.NewRegions: line %d: %v", lineIdx, err)
		}
		if start < 0 || end < start || end >= PosTypeMax {
			return nil, fmt.Errorf("interval.NewRegions: invalid coordinate pair on line %d", lineIdx)
		}
		if end == start {
			continue
		}
		chrom := string(tokens[0])
		raw[chrom] = append(raw[chrom], rawInterval{PosType(start), PosType(end)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	r := &Regions{endpoints: make(map[string][]PosType, len(raw))}
	for chrom, ivs := range raw {
		sort.Slice(ivs, func(i, j int) bool { return ivs[i].start < ivs[j].start })
		endpoints := make([]PosType, 0, 2*len(ivs))
		cur := ivs[0]
		for _, iv := range ivs[1:] {
			if iv.start > cur.end {
				endpoints = append(endpoints, cur.start, cur.end)
				r.bases += int64(cur.end - cur.start)
				cur = iv
			} else if iv.end > cur.end {
				cur.end = iv.end
			}
		}
		endpoints = append(endpoints, cur.start, cur.end)
		r.bases += int64(cur.end - cur.start)
		r.endpoints[chrom] = endpoints
		r.n += len(endpoints) / 2
	}
	return r, nil
}

// LoadRegions is a wrapper for NewRegions that takes a path instead of an
// io.Reader.  Gzipped input is detected by file extension.
func LoadRegions(ctx context.Context, path string) (r *Regions, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, infile, &err)
	reader := io.Reader(infile.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return
		}
		defer func() {
			if cerr := gz.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		reader = gz
	}
	if r, err = NewRegions(reader); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	log.Printf("%s: %d region(s) loaded, %d base(s) covered", path, r.Len(), r.Bases())
	return r, nil
}
