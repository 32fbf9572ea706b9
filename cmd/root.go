package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	awsclient "github.com/yourusername/s3stats/aws"
	"github.com/yourusername/s3stats/config"
	"github.com/yourusername/s3stats/metrics"
	"github.com/yourusername/s3stats/output"
	"github.com/yourusername/s3stats/profiler"
	"github.com/yourusername/s3stats/types"
)

var (
	bucketPattern   string
	bucketRegex     bool
	filterPattern   string
	filterRegex     bool
	prefix          string
	sumPrevVersions bool
	bucketDetails   bool
	headObjects     bool
	threads         int
	format          string
	human           bool
	byRegion        bool
	byStorageType   bool
	byEncryption    bool
	profile         string
	region          string
	debug           bool
	verbose         bool
	configFile      string
	metricsFile     string
)

var _ profiler.Storage = (*awsclient.Client)(nil)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "s3stats",
	Short: "Gather object statistics across AWS S3 buckets",
	Long: `s3stats lists the objects of every selected bucket in parallel and reports
object count, total size and last modification time, optionally split by
region, storage class or encryption state.

Buckets that cannot be read are reported after the results and make the
command exit with status 2.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfigFile,
	RunE:              runStats,
}

// Execute runs the root command. An interrupt cancels the buckets still being collected.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&bucketPattern, "bucket", "*", "Affected by --bucket-re, a regex or glob pattern used to filter bucket names")
	flags.BoolVar(&bucketRegex, "bucket-re", false, "Interpret --bucket as a regex instead of a glob")
	flags.StringVar(&filterPattern, "filter", "*", "Affected by --filter-re, a regex or glob pattern used to filter keys")
	flags.BoolVar(&filterRegex, "filter-re", false, "Interpret --filter as a regex instead of a glob")
	flags.StringVar(&prefix, "prefix", "", "Only look at keys with this prefix")
	flags.BoolVar(&sumPrevVersions, "sum-prev-versions", false, "Count every version of a key in sizes and file counts")
	flags.BoolVar(&bucketDetails, "bucket-details", false, "Retrieve location, lifecycle, logging, tags and versioning of each bucket")
	flags.BoolVar(&headObjects, "head-objects", false, "Resolve the encryption state of every object (one extra request per object)")
	flags.IntVarP(&threads, "threads", "t", profiler.DefaultConcurrency, "Number of buckets collected in parallel")
	flags.StringVarP(&format, "format", "f", string(output.FormatTable), "Output format: table or json")
	flags.BoolVarP(&human, "human-readable", "H", false, "Print sizes in human readable format (e.g. 1K 234M 2G), table only")
	flags.BoolVar(&byRegion, "by-region", false, "Group results by region (implies --bucket-details)")
	flags.BoolVar(&byStorageType, "by-storage-type", false, "Split results by storage type")
	flags.BoolVar(&byEncryption, "by-encryption", false, "Split results by encryption state")
	flags.StringVarP(&profile, "profile", "p", "", "AWS profile name to use")
	flags.StringVarP(&region, "region", "r", "", "AWS region for the client (bucket calls follow the bucket region)")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging, including AWS SDK requests")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&configFile, "config", "", "YAML file providing default flag values")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this file in the Prometheus text format")
}

// loadConfigFile applies config file values to the flags not set on the command line
func loadConfigFile(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		return nil
	}

	file, err := config.Load(configFile)
	if err != nil {
		return profiler.NewConfigurationError("config", configFile, err)
	}

	for name, value := range file.Values() {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}
		if err := cmd.Flags().Set(name, value); err != nil {
			return profiler.NewConfigurationError(name, value, err)
		}
	}

	return nil
}

// selectView maps the grouping flags to a view; at most one may be set
func selectView(groupRegion, groupStorageType, groupEncryption bool) (profiler.ViewKind, error) {
	view := profiler.ViewBucket
	selected := 0

	if groupRegion {
		view = profiler.ViewRegion
		selected++
	}
	if groupStorageType {
		view = profiler.ViewStorageClass
		selected++
	}
	if groupEncryption {
		view = profiler.ViewEncryption
		selected++
	}

	if selected > 1 {
		return profiler.ViewBucket, profiler.NewConfigurationError("grouping", "",
			errors.New("--by-region, --by-storage-type and --by-encryption are mutually exclusive"))
	}
	return view, nil
}

func collectConfig(view profiler.ViewKind) types.CollectConfig {
	return types.CollectConfig{
		Prefix:             prefix,
		IncludeAllVersions: sumPrevVersions,
		NamePattern:        filterPattern,
		NameIsRegex:        filterRegex,
		IncludeDetail:      bucketDetails || view == profiler.ViewRegion,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), debug, verbose)

	// Validate everything before the first request
	outFormat, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	view, err := selectView(byRegion, byStorageType, byEncryption)
	if err != nil {
		return err
	}
	if _, err := profiler.NewMatcher(bucketPattern, bucketRegex); err != nil {
		return err
	}
	if _, err := profiler.NewMatcher(filterPattern, filterRegex); err != nil {
		return err
	}
	if threads < 1 {
		return profiler.NewConfigurationError("threads", fmt.Sprint(threads), errors.New("must be at least 1"))
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if debug {
		loadOpts = append(loadOpts,
			awsconfig.WithLogger(awsclient.NewSDKLogger(logger)),
			awsconfig.WithClientLogMode(awssdk.LogRetries|awssdk.LogRequest),
		)
	}

	// Create AWS client
	client, err := awsclient.NewClient(ctx, profile, region, loadOpts...)
	if err != nil {
		return fmt.Errorf("failed to create AWS client: %w", err)
	}
	client.HeadObjects = headObjects

	all, err := client.ListBuckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list buckets: %w", err)
	}
	buckets, err := profiler.FilterBuckets(all, bucketPattern, bucketRegex)
	if err != nil {
		return err
	}
	logger.Info().Int("buckets", len(buckets)).Int("accessible", len(all)).Msg("selected buckets")

	m := metrics.New()
	dispatcher := profiler.NewDispatcher(client,
		profiler.WithLogger(logger),
		profiler.WithMetrics(m),
	)

	run, err := dispatcher.RunAll(ctx, buckets, collectConfig(view), threads)
	if err != nil {
		return err
	}

	w := output.NewWriter(cmd.OutOrStdout(), human)
	switch outFormat {
	case output.FormatJSON:
		err = w.WriteJSON(run)
	default:
		err = w.WriteTable(profiler.Reduce(view, profiler.Succeeded(run)), profiler.Failed(run))
	}
	if err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if metricsFile != "" {
		if err := m.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if failures := profiler.Failed(run); len(failures) > 0 {
		return fmt.Errorf("%w: %d of %d buckets failed", profiler.ErrPartialRun, len(failures), len(run))
	}
	return nil
}
