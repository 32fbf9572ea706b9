package output

import (
	"strings"

	units "github.com/docker/go-units"
)

// sizeUnits are the single letter suffixes of the human readable format
var sizeUnits = []string{"B", "K", "M", "G", "T", "P", "E"}

// FormatBytes formats a byte count with binary multiples, e.g. 1024 -> "1K", 1536 -> "1.5K"
func FormatBytes(size int64) string {
	return units.CustomSize("%.4g%s", float64(size), 1024.0, sizeUnits)
}

// FormatHeader underlines a section title
func FormatHeader(title string) string {
	return title + "\n" + strings.Repeat("=", len(title))
}
