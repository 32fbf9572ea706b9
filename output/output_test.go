package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/s3stats/profiler"
	"github.com/yourusername/s3stats/types"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 0, want: "0B"},
		{size: 500, want: "500B"},
		{size: 1023, want: "1023B"},
		{size: 1024, want: "1K"},
		{size: 1536, want: "1.5K"},
		{size: 1 << 20, want: "1M"},
		{size: 234 << 20, want: "234M"},
		{size: 2 << 30, want: "2G"},
		{size: 3 << 40, want: "3T"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.size))
		})
	}
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "Buckets\n=======", FormatHeader("Buckets"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("table")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("csv")
	assert.True(t, profiler.IsConfigurationError(err))
}

// fields splits the rendered table into whitespace separated cells per line
func fields(out string) [][]string {
	var lines [][]string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		lines = append(lines, strings.Fields(line))
	}
	return lines
}

func sampleView() profiler.View {
	return profiler.View{
		Kind: profiler.ViewBucket,
		Rows: []profiler.Row{
			{Region: "eu-west-1", Bucket: "assets", Count: 3, Size: 1536, Percent: "60.00%"},
			{Region: "us-east-1", Bucket: "logs", Count: 2, Size: 1024, Percent: "40.00%"},
		},
		Total: profiler.Row{Region: profiler.TotalLabel, Count: 5, Size: 2560, Percent: "100.00%"},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, false).WriteTable(sampleView(), nil))

	assert.Equal(t, [][]string{
		{"region", "bucketName", "numberOfFiles", "sizeOfFiles", "%", "size"},
		{"eu-west-1", "assets", "3", "1536", "60.00%"},
		{"us-east-1", "logs", "2", "1024", "40.00%"},
		{"Total", "5", "2560", "100.00%"},
	}, fields(buf.String()))
	assert.NotContains(t, buf.String(), "Failed buckets")
}

func TestWriteTable_HumanReadable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, true).WriteTable(sampleView(), nil))

	lines := fields(buf.String())
	require.Len(t, lines, 4)
	assert.Equal(t, "1.5K", lines[1][3])
	assert.Equal(t, "1K", lines[2][3])
	assert.Equal(t, "2.5K", lines[3][2])
}

func TestWriteTable_Columns(t *testing.T) {
	tests := []struct {
		name string
		view profiler.View
		want [][]string
	}{
		{
			name: "region",
			view: profiler.View{
				Kind:  profiler.ViewRegion,
				Rows:  []profiler.Row{{Region: "eu-west-1", Count: 1, Size: 10, Percent: "100.00%"}},
				Total: profiler.Row{Region: profiler.TotalLabel, Count: 1, Size: 10, Percent: "100.00%"},
			},
			want: [][]string{
				{"region", "numberOfFiles", "sizeOfFiles", "%", "size"},
				{"eu-west-1", "1", "10", "100.00%"},
				{"Total", "1", "10", "100.00%"},
			},
		},
		{
			name: "storage class",
			view: profiler.View{
				Kind:  profiler.ViewStorageClass,
				Rows:  []profiler.Row{{Region: "eu-west-1", Bucket: "logs", Key: "GLACIER", Count: 1, Size: 10, Percent: "100.00%"}},
				Total: profiler.Row{Region: profiler.TotalLabel, Count: 1, Size: 10, Percent: "100.00%"},
			},
			want: [][]string{
				{"region", "bucketName", "storageClass", "numberOfFiles", "sizeOfFiles", "%", "size"},
				{"eu-west-1", "logs", "GLACIER", "1", "10", "100.00%"},
				{"Total", "1", "10", "100.00%"},
			},
		},
		{
			name: "encryption",
			view: profiler.View{
				Kind:  profiler.ViewEncryption,
				Rows:  []profiler.Row{{Region: "eu-west-1", Bucket: "logs", Key: "true", Count: 1, Size: 10, Percent: "100.00%"}},
				Total: profiler.Row{Region: profiler.TotalLabel, Count: 1, Size: 10, Percent: "100.00%"},
			},
			want: [][]string{
				{"region", "bucketName", "encryption", "numberOfFiles", "sizeOfFiles", "%", "size"},
				{"eu-west-1", "logs", "true", "1", "10", "100.00%"},
				{"Total", "1", "10", "100.00%"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf, false).WriteTable(tt.view, nil))
			assert.Equal(t, tt.want, fields(buf.String()))
		})
	}
}

func TestWriteTable_Failures(t *testing.T) {
	failures := []types.BucketResult{
		{Bucket: "locked", Err: profiler.NewBucketAccessError(profiler.OpList, "locked", errors.New("AccessDenied"))},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, false).WriteTable(sampleView(), failures))

	out := buf.String()
	assert.Contains(t, out, "\nFailed buckets\n==============\n")
	assert.Contains(t, out, "  - locked: s3stats.list bucket locked: AccessDenied\n")
	assert.Less(t, strings.Index(out, "Total"), strings.Index(out, "Failed buckets"))
}

func TestWriteJSON(t *testing.T) {
	created := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	agg := types.NewBucketAggregate(types.BucketRef{Name: "logs", CreationDate: created})
	agg.Observe(types.ObjectRecord{Key: "a.log", Size: 100, StorageClass: "STANDARD", LastModified: created})

	other := types.NewBucketAggregate(types.BucketRef{Name: "assets"})

	run := types.RunResult{
		{Bucket: "logs", Aggregate: agg},
		{Bucket: "locked", Err: errors.New("AccessDenied")},
		{Bucket: "assets", Aggregate: other},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, true).WriteJSON(run))
	assert.Contains(t, buf.String(), "\n    \"buckets\": [")

	var decoded struct {
		Buckets []struct {
			Name           string                 `json:"name"`
			NumberOfFiles  int64                  `json:"numberOfFiles"`
			SizeOfFiles    int64                  `json:"sizeOfFiles"`
			ModifiedDate   string                 `json:"modifiedDate"`
			StorageClasses map[string]types.Stats `json:"storageClasses"`
			Encrypted      map[string]types.Stats `json:"encrypted"`
			Detail         *json.RawMessage       `json:"detail"`
		} `json:"buckets"`
		Failures []failure `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	require.Len(t, decoded.Buckets, 2)
	assert.Equal(t, "assets", decoded.Buckets[0].Name)
	assert.Empty(t, decoded.Buckets[0].ModifiedDate)
	assert.Equal(t, "2023-06-01T00:00:00Z", decoded.Buckets[1].ModifiedDate)
	assert.Equal(t, "logs", decoded.Buckets[1].Name)
	assert.Equal(t, int64(1), decoded.Buckets[1].NumberOfFiles)
	assert.Equal(t, int64(100), decoded.Buckets[1].SizeOfFiles)
	assert.Equal(t, map[string]types.Stats{"STANDARD": {Count: 1, Size: 100}}, decoded.Buckets[1].StorageClasses)
	assert.Equal(t, map[string]types.Stats{"false": {Count: 1, Size: 100}}, decoded.Buckets[1].Encrypted)
	assert.Nil(t, decoded.Buckets[1].Detail)

	assert.Equal(t, []failure{{Bucket: "locked", Error: "AccessDenied"}}, decoded.Failures)
}

func TestWriteJSON_EmptyRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, false).WriteJSON(nil))
	assert.JSONEq(t, `{"buckets": [], "failures": []}`, buf.String())
}
