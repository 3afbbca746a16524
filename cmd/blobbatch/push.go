package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/blobbatch"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/errors"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/config"
	"github.com/input-output-hk/catalyst-forge-libs/blobbatch/internal/loader"
)

// clientFactory builds the upload client from resolved settings; tests swap it.
var clientFactory = newClientFromConfig

func newPushCmd(global *globalOptions) *cobra.Command {
	var (
		bucket      string
		prefix      string
		maxAttempts int
		concurrency int
		failFast    bool
	)

	cmd := &cobra.Command{
		Use:   "push <dir>",
		Short: "Upload every file under a directory as one batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(global.configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("bucket") {
				cfg.Bucket = bucket
			}
			if flags.Changed("prefix") {
				cfg.Prefix = prefix
			}
			if flags.Changed("max-attempts") {
				cfg.Upload.MaxAttempts = maxAttempts
			}
			if flags.Changed("concurrency") {
				cfg.Upload.Concurrency = concurrency
			}
			if flags.Changed("fail-fast") {
				cfg.Upload.FailFast = failFast
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			warning, err := configureLoggerForCLI(global.logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}

			return runPush(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args[0])
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "target bucket (overrides config and BLOBBATCH_BUCKET)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix for every uploaded file")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", config.DefaultMaxAttempts, "rounds before the batch fails")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max writes in flight per round (0 = unbounded)")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop after a round in which every write failed")

	return cmd
}

func runPush(ctx context.Context, out, errOut io.Writer, cfg config.Config, dir string) error {
	if cfg.Bucket == "" {
		return fmt.Errorf("no bucket configured: use --bucket, BLOBBATCH_BUCKET or the bucket config key")
	}

	blobs, err := loader.Load(osfs.New(dir), ".", cfg.Prefix)
	if err != nil {
		return err
	}
	slog.Debug("loaded blobs", "dir", dir, "count", len(blobs))

	client, err := clientFactory(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer client.Close()

	result, uploadErr := client.UploadBatch(ctx, cfg.Bucket, blobs)
	if result == nil {
		return uploadErr
	}

	printSummary(out, cfg.Bucket, len(blobs), result)

	if uploadErr != nil {
		for _, blob := range result.Remaining {
			fmt.Fprintf(errOut, "not uploaded: %s\n", blob.Path)
		}
		return fmt.Errorf("%d of %d blob(s) not uploaded [%s]: %w",
			len(result.Remaining), len(blobs), errors.CodeOf(uploadErr), uploadErr)
	}
	return nil
}

func printSummary(out io.Writer, bucket string, total int, result *blobtypes.BatchResult) {
	fmt.Fprintf(out, "uploaded %d/%d blob(s), %s to %s in %d round(s) with %d write(s) (%s)\n",
		result.Uploaded,
		total,
		humanize.Bytes(uint64(result.Bytes)),
		bucket,
		result.Rounds,
		result.Writes,
		result.Duration.Round(time.Millisecond),
	)
}

func newClientFromConfig(cfg config.Config, logger *slog.Logger) (*blobbatch.Client, error) {
	opts := []blobtypes.Option{
		blobbatch.WithRegion(cfg.Region),
		blobbatch.WithForcePathStyle(cfg.ForcePathStyle),
		blobbatch.WithDisableSSL(cfg.DisableSSL),
		blobbatch.WithLogger(logger),
		blobbatch.WithMaxAttempts(cfg.Upload.MaxAttempts),
		blobbatch.WithConcurrency(cfg.Upload.Concurrency),
		blobbatch.WithRateLimit(cfg.Upload.RateLimit),
		blobbatch.WithBackoff(cfg.Upload.BackoffBase, cfg.Upload.BackoffMax, cfg.Upload.BackoffJitter),
		blobbatch.WithFailFast(cfg.Upload.FailFast),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, blobbatch.WithEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, blobbatch.WithCredentials(cfg.AccessKey, cfg.SecretKey))
	}

	if cfg.Backend == config.BackendMinio {
		return blobbatch.NewMinio(opts...)
	}
	return blobbatch.New(opts...)
}
