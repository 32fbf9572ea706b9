package main

import (
	"errors"
	"os"

	"github.com/yourusername/s3stats/cmd"
	"github.com/yourusername/s3stats/profiler"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Partial results were printed; signal the failed buckets
		if errors.Is(err, profiler.ErrPartialRun) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
