package interval

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// narrowPeak rows as MACS2 writes them: sorted by score, not position.
const testPeaks = `track type=narrowPeak name="S1"
chr1	500	600	S1_peak_3	80	.	5.1	9.2	7.3	40
chr1	100	200	S1_peak_1	120	.	6.0	12.1	10.0	50
chr2	10	20	S1_peak_4	20	.	2.0	3.1	1.2	5
chr1	150	250	S1_peak_2	90	.	5.5	10.0	8.1	60

chr1	250	300	S1_peak_5	10	.	1.1	1.2	1.3	4
chr3	70	70	S1_empty	0	.	0	0	0	0
`

func TestNewRegions(t *testing.T) {
	r, err := NewRegions(strings.NewReader(testPeaks))
	require.NoError(t, err)
	expect.EQ(t, r.endpoints, map[string][]PosType{
		"chr1": {100, 300, 500, 600},
		"chr2": {10, 20},
	})
	expect.EQ(t, r.Len(), 3)
	expect.EQ(t, r.Bases(), int64(200+100+10))
	expect.EQ(t, r.Chroms(), []string{"chr1", "chr2"})
}

func TestOverlaps(t *testing.T) {
	r, err := NewRegions(strings.NewReader(testPeaks))
	require.NoError(t, err)
	tests := []struct {
		chrom      string
		start, end PosType
		want       bool
	}{
		{"chr1", 0, 100, false},
		{"chr1", 0, 101, true},
		{"chr1", 299, 400, true},
		{"chr1", 300, 500, false},
		{"chr1", 350, 700, true},
		{"chr1", 600, 1000, false},
		{"chr1", 120, 130, true},
		{"chr1", 130, 130, false},
		{"chr2", 19, 25, true},
		{"chr3", 0, 1000, false},
		{"chrX", 0, 1000, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Overlaps(tt.chrom, tt.start, tt.end), "%s:%d-%d", tt.chrom, tt.start, tt.end)
	}
	expect.True(t, r.Contains("chr1", 100))
	expect.False(t, r.Contains("chr1", 300))
}

func TestNewRegionsErrors(t *testing.T) {
	for _, data := range []string{
		"chr1\t100\n",
		"chr1\tabc\t200\n",
		"chr1\t200\t100\n",
		"chr1\t-5\t100\n",
	} {
		_, err := NewRegions(strings.NewReader(data))
		assert.Error(t, err, data)
	}
}

func TestLoadRegionsGzip(t *testing.T) {
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(testPeaks))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(tmpDir, "peaks.narrowPeak.gz")
	out, err := file.Create(ctx, path)
	require.NoError(t, err)
	_, err = out.Writer(ctx).Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, out.Close(ctx))

	r, err := LoadRegions(ctx, path)
	require.NoError(t, err)
	expect.EQ(t, r.Len(), 3)
	expect.True(t, r.Overlaps("chr2", 0, 11))
}
