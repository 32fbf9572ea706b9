// Package output renders collection results as aligned tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/yourusername/s3stats/profiler"
	"github.com/yourusername/s3stats/types"
)

// Format selects the presentation mode
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatTable, FormatJSON:
		return Format(name), nil
	}
	return "", profiler.NewConfigurationError("format", name, fmt.Errorf("expected %q or %q", FormatTable, FormatJSON))
}

// Writer renders results to an output stream
type Writer struct {
	out   io.Writer
	human bool
}

// NewWriter creates a new writer. human formats sizes in tables only.
func NewWriter(out io.Writer, human bool) *Writer {
	return &Writer{
		out:   out,
		human: human,
	}
}

type report struct {
	Buckets  []*types.BucketAggregate `json:"buckets"`
	Failures []failure                `json:"failures"`
}

type failure struct {
	Bucket string `json:"bucket"`
	Error  string `json:"error"`
}

// WriteJSON writes the aggregates sorted by bucket name, followed by the failures
func (w *Writer) WriteJSON(run types.RunResult) error {
	rep := report{
		Buckets:  profiler.Succeeded(run),
		Failures: []failure{},
	}
	if rep.Buckets == nil {
		rep.Buckets = []*types.BucketAggregate{}
	}
	for _, result := range profiler.Failed(run) {
		rep.Failures = append(rep.Failures, failure{
			Bucket: result.Bucket,
			Error:  result.Err.Error(),
		})
	}

	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "    ")
	return enc.Encode(rep)
}

// WriteTable writes the summary view, then the failed buckets if any
func (w *Writer) WriteTable(view profiler.View, failures []types.BucketResult) error {
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)

	writeLine(tw, header(view.Kind))
	for _, row := range view.Rows {
		writeLine(tw, w.cells(view.Kind, row))
	}
	writeLine(tw, w.cells(view.Kind, view.Total))

	if err := tw.Flush(); err != nil {
		return err
	}

	return w.WriteFailures(failures)
}

// WriteFailures lists the buckets that could not be collected
func (w *Writer) WriteFailures(failures []types.BucketResult) error {
	if len(failures) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("\n" + FormatHeader("Failed buckets") + "\n")
	for _, result := range failures {
		fmt.Fprintf(&b, "  - %s: %v\n", result.Bucket, result.Err)
	}

	_, err := io.WriteString(w.out, b.String())
	return err
}

func header(kind profiler.ViewKind) []string {
	switch kind {
	case profiler.ViewRegion:
		return []string{"region", "numberOfFiles", "sizeOfFiles", "% size"}
	case profiler.ViewStorageClass:
		return []string{"region", "bucketName", "storageClass", "numberOfFiles", "sizeOfFiles", "% size"}
	case profiler.ViewEncryption:
		return []string{"region", "bucketName", "encryption", "numberOfFiles", "sizeOfFiles", "% size"}
	default:
		return []string{"region", "bucketName", "numberOfFiles", "sizeOfFiles", "% size"}
	}
}

func (w *Writer) cells(kind profiler.ViewKind, row profiler.Row) []string {
	count := strconv.FormatInt(row.Count, 10)
	size := strconv.FormatInt(row.Size, 10)
	if w.human {
		size = FormatBytes(row.Size)
	}

	switch kind {
	case profiler.ViewRegion:
		return []string{row.Region, count, size, row.Percent}
	case profiler.ViewStorageClass, profiler.ViewEncryption:
		return []string{row.Region, row.Bucket, row.Key, count, size, row.Percent}
	default:
		return []string{row.Region, row.Bucket, count, size, row.Percent}
	}
}

func writeLine(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
}
