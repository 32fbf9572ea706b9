// Package config loads default flag values from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// File mirrors the command line flags. Keys are the flag names; unset keys
// leave the flag default untouched, while an explicit empty string is applied.
type File struct {
	Profile         *string `yaml:"profile"`
	Region          *string `yaml:"region"`
	Threads         *int    `yaml:"threads"`
	Format          *string `yaml:"format"`
	HumanReadable   *bool   `yaml:"human-readable"`
	Bucket          *string `yaml:"bucket"`
	BucketRegex     *bool   `yaml:"bucket-re"`
	Filter          *string `yaml:"filter"`
	FilterRegex     *bool   `yaml:"filter-re"`
	Prefix          *string `yaml:"prefix"`
	SumPrevVersions *bool   `yaml:"sum-prev-versions"`
	BucketDetails   *bool   `yaml:"bucket-details"`
	HeadObjects     *bool   `yaml:"head-objects"`
	MetricsFile     *string `yaml:"metrics-file"`
	Debug           *bool   `yaml:"debug"`
	Verbose         *bool   `yaml:"verbose"`
}

// Load reads and strictly decodes a config file
func Load(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	file := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(file); err != nil {
		// An empty document decodes to io.EOF
		if errors.Is(err, io.EOF) {
			return file, nil
		}
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return file, nil
}

// Values returns the set keys as flag name to flag value
func (f *File) Values() map[string]string {
	values := make(map[string]string)

	setString := func(name string, value *string) {
		if value != nil {
			values[name] = *value
		}
	}
	setBool := func(name string, value *bool) {
		if value != nil {
			values[name] = strconv.FormatBool(*value)
		}
	}

	setString("profile", f.Profile)
	setString("region", f.Region)
	if f.Threads != nil {
		values["threads"] = strconv.Itoa(*f.Threads)
	}
	setString("format", f.Format)
	setBool("human-readable", f.HumanReadable)
	setString("bucket", f.Bucket)
	setBool("bucket-re", f.BucketRegex)
	setString("filter", f.Filter)
	setBool("filter-re", f.FilterRegex)
	setString("prefix", f.Prefix)
	setBool("sum-prev-versions", f.SumPrevVersions)
	setBool("bucket-details", f.BucketDetails)
	setBool("head-objects", f.HeadObjects)
	setString("metrics-file", f.MetricsFile)
	setBool("debug", f.Debug)
	setBool("verbose", f.Verbose)

	return values
}
