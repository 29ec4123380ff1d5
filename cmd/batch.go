package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/shelfsync/internal/formatter"
	"github.com/desertthunder/shelfsync/internal/models"
	"github.com/desertthunder/shelfsync/internal/services"
	"github.com/desertthunder/shelfsync/internal/shared"
	"github.com/desertthunder/shelfsync/internal/tasks"
	"github.com/desertthunder/shelfsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// ImportRun ingests the inventory CSV into the collection table.
func (r *Runner) ImportRun(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	engine, closer, err := r.openPipeline(config, func(o *tasks.EngineOpts) {
		if csv := cmd.String("csv"); csv != "" {
			o.Inventory = services.NewInventoryService(csv)
		}
	})
	if err != nil {
		return err
	}
	defer closer()

	r.logger.Info("importing inventory")

	result, err := engine.Import(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("✓ %d rows read, %d skipped, %d imported\n",
		result.RowsRead, result.SkippedRows, result.Inserted)
	return nil
}

// ReconcileRun synchronizes the tracked-book table against the collection.
func (r *Runner) ReconcileRun(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	engine, closer, err := r.openPipeline(config)
	if err != nil {
		return err
	}
	defer closer()

	r.logger.Info("reconciling tracked books")

	result, err := engine.Reconcile(ctx, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("✓ %d created, %d reactivated, %d unchanged (%d records)\n",
		result.Created, result.Activated, result.Unchanged, result.Total)
	return nil
}

// WishlistDiff lists wishlist entries missing from the collection.
func (r *Runner) WishlistDiff(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if len(config.Wishlist.Feeds) == 0 {
		return fmt.Errorf("%w: no wishlist feeds configured", shared.ErrMissingConfig)
	}

	engine, closer, err := r.openPipeline(config)
	if err != nil {
		return err
	}
	defer closer()

	logger := shared.WithLogger(r.logger, "stage", "diff")
	logger.Info("diffing wishlist feeds", "feeds", len(config.Wishlist.Feeds))

	result, err := engine.Diff(ctx, nil)
	if err != nil {
		return err
	}

	for _, feedErr := range result.FeedErrors {
		logger.Warn("feed skipped", "url", feedErr.URL, "error", feedErr.Err)
	}
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	switch {
	case cmd.String("output") != "":
		path, err := formatter.WriteMissingExport(result.Missing, cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlain("✓ %d missing entries written to %s\n", len(result.Missing), path)
		return nil

	case cmd.Bool("csv"):
		data, err := formatter.MissingToCSV(result.Missing)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)

	case cmd.Bool("json"):
		return r.writeJSON(result, true)

	default:
		return r.writePlain("%s", ui.RenderMissing(result.Missing))
	}
}

// AcquireRun diffs the wishlist and submits matches to the download client.
func (r *Runner) AcquireRun(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if config.Search.BaseURL == "" {
		return fmt.Errorf("%w: search.base_url is not configured", shared.ErrMissingConfig)
	}
	dryRun := cmd.Bool("dry-run")
	if !dryRun && config.Downloader.BaseURL == "" {
		return fmt.Errorf("%w: downloader.base_url is not configured", shared.ErrMissingConfig)
	}

	engine, closer, err := r.openPipeline(config, func(o *tasks.EngineOpts) {
		if dryRun {
			o.Downloader = discardDownloader{}
		}
	})
	if err != nil {
		return err
	}
	defer closer()

	diff, err := engine.Diff(ctx, nil)
	if err != nil {
		return err
	}
	if len(diff.Missing) == 0 {
		return r.writePlain("%s", ui.RenderMissing(nil))
	}

	shared.WithLogger(r.logger, "stage", "acquire").
		Info("acquiring missing entries", "count", len(diff.Missing), "dry_run", dryRun)

	var progress chan tasks.ProgressUpdate
	var done chan struct{}
	if !cmd.Bool("csv") && !cmd.Bool("json") {
		progress, done = r.reportProgress()
	}

	result, err := engine.Acquire(ctx, progress, diff.Missing)
	if progress != nil {
		close(progress)
		<-done
	}

	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("csv"):
		data, err := formatter.OutcomesToCSV(result.Outcomes)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)

	case cmd.Bool("json"):
		return r.writeJSON(result, true)

	default:
		r.writePlainHeader("Acquisition Results")
		r.writePlain("Submitted: %d\n", result.Submitted)
		r.writePlain("No match: %d\n", result.NoMatch)
		r.writePlain("Search failures: %d\n", result.SearchFailures)
		r.writePlain("Submission failures: %d\n", result.SubmitFailures)
		return nil
	}
}

// SyncRun runs the full batch pipeline and prints the end-of-run summary.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	engine, closer, err := r.openPipeline(config)
	if err != nil {
		return err
	}
	defer closer()

	r.logger.Info("starting batch run")

	var progress chan tasks.ProgressUpdate
	var done chan struct{}
	if !cmd.Bool("quiet") && !cmd.Bool("json") {
		progress, done = r.reportProgress()
	}

	result, runErr := engine.Run(ctx, progress)
	if progress != nil {
		close(progress)
		<-done
	}

	// Completed stages are summarized even when a later stage failed.
	switch {
	case cmd.String("output") != "":
		path, err := formatter.WriteBatchReport(result, cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlain("✓ batch report written to %s\n", path)

	case cmd.Bool("csv"):
		var outcomes []tasks.EntryOutcome
		if result.Acquire != nil {
			outcomes = result.Acquire.Outcomes
		}
		data, err := formatter.OutcomesToCSV(outcomes)
		if err != nil {
			return err
		}
		if err := r.writePlain("%s", data); err != nil {
			return err
		}

	case cmd.Bool("json"):
		data, err := formatter.BatchToJSON(result)
		if err != nil {
			return err
		}
		if err := r.writePlain("%s\n", data); err != nil {
			return err
		}

	default:
		r.writePlainln("%s", ui.RenderSummary(result))
	}

	return runErr
}

// discardDownloader accepts every submission without side effects, used for
// dry runs.
type discardDownloader struct{}

func (discardDownloader) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (discardDownloader) Submit(ctx context.Context, ref models.DownloadRef, category string) error {
	return nil
}

func (discardDownloader) Name() string { return "dry-run" }
