package profiler

import (
	"fmt"
	"sort"

	"github.com/yourusername/s3stats/types"
)

// ViewKind selects a summary layout
type ViewKind int

const (
	// ViewBucket is one row per bucket
	ViewBucket ViewKind = iota
	// ViewRegion groups buckets by location
	ViewRegion
	// ViewStorageClass is one row per bucket and storage class
	ViewStorageClass
	// ViewEncryption is one row per bucket and encryption state
	ViewEncryption
)

// TotalLabel names the trailing row of every view
const TotalLabel = "Total"

// Row is a line of a summary view. Key holds the storage class or encryption
// state and is empty for the bucket and region views.
type Row struct {
	Region  string
	Bucket  string
	Key     string
	Count   int64
	Size    int64
	Percent string
}

// View is a summary table with its trailing total
type View struct {
	Kind  ViewKind
	Rows  []Row
	Total Row
}

// Reduce computes the requested view over the successful aggregates
func Reduce(kind ViewKind, aggs []*types.BucketAggregate) View {
	switch kind {
	case ViewRegion:
		return ByRegion(aggs)
	case ViewStorageClass:
		return ByStorageClass(aggs)
	case ViewEncryption:
		return ByEncryption(aggs)
	default:
		return ByBucket(aggs)
	}
}

// ByBucket returns one row per bucket with its share of the grand total size
func ByBucket(aggs []*types.BucketAggregate) View {
	count, size := totals(aggs)
	view := View{Kind: ViewBucket}

	for _, agg := range sortedCopy(aggs) {
		view.Rows = append(view.Rows, Row{
			Region:  agg.Location(),
			Bucket:  agg.Name,
			Count:   agg.TotalObjects,
			Size:    agg.TotalSize,
			Percent: FormatPercent(agg.TotalSize, size),
		})
	}

	view.Total = totalRow(count, size)
	return view
}

// ByRegion groups buckets by location, rows sorted by region
func ByRegion(aggs []*types.BucketAggregate) View {
	count, size := totals(aggs)
	regionMap := make(map[string]*Row)

	for _, agg := range aggs {
		region := agg.Location()
		if row, exists := regionMap[region]; exists {
			row.Count += agg.TotalObjects
			row.Size += agg.TotalSize
		} else {
			regionMap[region] = &Row{
				Region: region,
				Count:  agg.TotalObjects,
				Size:   agg.TotalSize,
			}
		}
	}

	view := View{Kind: ViewRegion}
	for _, row := range regionMap {
		row.Percent = FormatPercent(row.Size, size)
		view.Rows = append(view.Rows, *row)
	}

	sort.Slice(view.Rows, func(i, j int) bool {
		return view.Rows[i].Region < view.Rows[j].Region
	})

	view.Total = totalRow(count, size)
	return view
}

// ByStorageClass emits a row for every storage class present in each bucket.
// Each row carries the whole bucket's count and size, not the class subtotal,
// to keep the report compatible with earlier output.
func ByStorageClass(aggs []*types.BucketAggregate) View {
	view := breakdownView(aggs, func(agg *types.BucketAggregate) map[string]types.Stats {
		return agg.StorageClasses
	})
	view.Kind = ViewStorageClass
	return view
}

// ByEncryption is ByStorageClass keyed on the encryption state
func ByEncryption(aggs []*types.BucketAggregate) View {
	view := breakdownView(aggs, func(agg *types.BucketAggregate) map[string]types.Stats {
		return agg.Encryption
	})
	view.Kind = ViewEncryption
	return view
}

func breakdownView(aggs []*types.BucketAggregate, breakdown func(*types.BucketAggregate) map[string]types.Stats) View {
	count, size := totals(aggs)
	var view View

	for _, agg := range sortedCopy(aggs) {
		for _, key := range sortedKeys(breakdown(agg)) {
			view.Rows = append(view.Rows, Row{
				Region:  agg.Location(),
				Bucket:  agg.Name,
				Key:     key,
				Count:   agg.TotalObjects,
				Size:    agg.TotalSize,
				Percent: FormatPercent(agg.TotalSize, size),
			})
		}
	}

	view.Total = totalRow(count, size)
	return view
}

// FormatPercent formats part/total as a percentage with two decimals.
// A zero total yields "0.00%".
func FormatPercent(part, total int64) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}

func totalRow(count, size int64) Row {
	return Row{
		Region:  TotalLabel,
		Count:   count,
		Size:    size,
		Percent: FormatPercent(size, size),
	}
}

func totals(aggs []*types.BucketAggregate) (count, size int64) {
	for _, agg := range aggs {
		count += agg.TotalObjects
		size += agg.TotalSize
	}
	return count, size
}

func sortedKeys(m map[string]types.Stats) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedCopy(aggs []*types.BucketAggregate) []*types.BucketAggregate {
	sorted := make([]*types.BucketAggregate, len(aggs))
	copy(sorted, aggs)
	sortByName(sorted)
	return sorted
}

func sortByName(aggs []*types.BucketAggregate) {
	sort.Slice(aggs, func(i, j int) bool {
		return aggs[i].Name < aggs[j].Name
	})
}

func sortResults(results []types.BucketResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Bucket < results[j].Bucket
	})
}
