package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JulianCode-PC/oa-docket/internal/batch"
	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/export"
	"github.com/JulianCode-PC/oa-docket/internal/pipeline"
)

const defaultXLSXName = "docket.xlsx"

func batchCmd(a *app) *cobra.Command {
	var (
		pf      pipelineFlags
		dir     string
		xlsx    string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every supported file in a directory into an XLSX docket report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := common.NewValidator().
				Field("dir", dir, common.Required).
				Field("workers", workers, common.NonNegative).
				Error(); err != nil {
				return err
			}
			if err := pf.apply(cmd, a.cfg); err != nil {
				return err
			}
			if xlsx == "" {
				xlsx = defaultXLSXPath(dir)
			}

			paths, scan, err := batch.ScanDirectory(dir, nil, a.cfg.Batch.SkipHidden)
			if err != nil {
				return fmt.Errorf("scan %s: %w", dir, err)
			}
			a.logger.Info("batch.scan.ok", "dir", dir, "scanned", scan.Scanned, "matched", scan.Matched)

			proc, cleanup, err := a.newProcessor(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			r := a.newRunner(proc, workers)
			results, stats := r.Run(cmd.Context(), paths, pipeline.Options{})

			data, err := export.DocketXLSX(entriesFor(results), a.logger)
			if err != nil {
				return fmt.Errorf("build xlsx: %w", err)
			}
			if err := os.WriteFile(xlsx, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", xlsx, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[OK] Processed %d files: %d succeeded, %d duplicates, %d failed\n",
				stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed)
			fmt.Fprintf(out, "[OK] Wrote: %s\n", xlsx)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "directory to process (required)")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "output XLSX path (defaults to docket.xlsx beside --dir)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent files (defaults to batch.workers)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func watchCmd(a *app) *cobra.Command {
	var (
		pf       pipelineFlags
		dir      string
		workers  int
		initial  bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process supported files as they arrive in a drop folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := common.NewValidator().
				Field("dir", dir, common.Required).
				Field("workers", workers, common.NonNegative).
				Error(); err != nil {
				return err
			}
			if err := pf.apply(cmd, a.cfg); err != nil {
				return err
			}
			ctx := cmd.Context()

			proc, cleanup, err := a.newProcessor(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			events, watchErrs, err := batch.Watch(ctx, batch.WatchConfig{
				Roots:       []string{dir},
				InitialScan: initial,
				SkipHidden:  a.cfg.Batch.SkipHidden,
				Debounce:    debounce,
			}, a.logger)
			if err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			go func() {
				for err := range watchErrs {
					printError("[WARN] watcher: %v\n", err)
				}
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[OK] Watching %s (Ctrl-C to stop)\n", dir)
			err = a.newRunner(proc, workers).Serve(ctx, events, pipeline.Options{}, func(res batch.FileResult) {
				fmt.Fprintln(out, resultLine(res))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "drop folder to watch (required)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent files (defaults to batch.workers)")
	cmd.Flags().BoolVar(&initial, "initial", true, "also process files already in the folder")
	cmd.Flags().DurationVar(&debounce, "debounce", batch.DefaultDebounce, "quiet period before a written file is processed")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (a *app) newRunner(proc batch.Processor, workers int) *batch.Runner {
	if workers <= 0 {
		workers = a.cfg.Batch.Workers
	}
	return batch.NewRunner(proc, workers, a.cfg.Batch.FileTimeout, a.logger)
}

// defaultXLSXPath places the report beside dir, outside the scanned tree.
func defaultXLSXPath(dir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(dir)), defaultXLSXName)
}

func entriesFor(results []batch.FileResult) []export.Entry {
	entries := make([]export.Entry, 0, len(results))
	for _, res := range results {
		e := export.Entry{Path: res.Path, Err: res.Err}
		if res.Output != nil {
			e.Result = &res.Output.Result
		}
		if res.Duplicate() {
			e.Err = fmt.Errorf("duplicate of %s", res.DuplicateOf)
		}
		entries = append(entries, e)
	}
	return entries
}

func resultLine(res batch.FileResult) string {
	switch {
	case res.Duplicate():
		return fmt.Sprintf("[SKIP] %s: duplicate of %s", res.Path, res.DuplicateOf)
	case res.Output == nil:
		return fmt.Sprintf("[ERROR] %s: %v", res.Path, res.Err)
	}
	oa := res.Output.Result.OARecord
	due := "-"
	if oa.DueDate != nil {
		due = oa.DueDate.String()
	}
	line := fmt.Sprintf("[OK] %s: type=%s oa=%t due=%s", res.Path, oa.DocumentType, oa.IsOA, due)
	if res.Err != nil {
		line += fmt.Sprintf(" (not saved: %v)", res.Err)
	}
	return line
}
