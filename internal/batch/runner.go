package batch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JulianCode-PC/oa-docket/internal/common"
	"github.com/JulianCode-PC/oa-docket/internal/pipeline"
)

const (
	DefaultWorkers     = 4
	DefaultFileTimeout = 2 * time.Minute
)

// Processor is the single-file pipeline the runner fans out over.
type Processor interface {
	Process(ctx context.Context, path string, opts pipeline.Options) (*pipeline.Output, error)
}

// FileResult is the outcome for one path. Output may be set alongside Err
// when only persistence failed.
type FileResult struct {
	Path        string
	Hash        string
	Output      *pipeline.Output
	Err         error
	DuplicateOf string
	Elapsed     time.Duration
}

// Duplicate reports whether the file was skipped as a copy of an earlier one.
func (r FileResult) Duplicate() bool { return r.DuplicateOf != "" }

// Stats aggregates the results of a run.
type Stats struct {
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Runner processes files concurrently, each in its own Case.
type Runner struct {
	Proc        Processor
	Workers     int
	FileTimeout time.Duration
	Logger      *slog.Logger

	mu   sync.Mutex
	seen map[string]string // content hash -> first path
}

func NewRunner(proc Processor, workers int, fileTimeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if fileTimeout <= 0 {
		fileTimeout = DefaultFileTimeout
	}
	return &Runner{
		Proc:        proc,
		Workers:     workers,
		FileTimeout: fileTimeout,
		Logger:      logger,
		seen:        map[string]string{},
	}
}

// claim records hash for path and returns the path that claimed it first.
func (r *Runner) claim(hash, path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if first, ok := r.seen[hash]; ok {
		return first
	}
	r.seen[hash] = path
	return path
}

// Run processes paths with at most Workers in flight. A failing file never
// aborts the batch; results come back in input order.
func (r *Runner) Run(ctx context.Context, paths []string, opts pipeline.Options) ([]FileResult, Stats) {
	results := make([]FileResult, len(paths))
	var stats Stats
	stats.Matched = uint32(len(paths))

	var succeeded, deduped, failed atomic.Uint32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for i, path := range paths {
		res, fresh := r.prepare(path)
		if !fresh {
			results[i] = res
			if res.Duplicate() {
				deduped.Add(1)
			} else {
				failed.Add(1)
			}
			continue
		}
		g.Go(func() error {
			res := r.execute(gctx, res, opts)
			results[i] = res
			if res.Err != nil {
				failed.Add(1)
			} else {
				succeeded.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Succeeded = succeeded.Load()
	stats.Deduplicated = deduped.Load()
	stats.Failed = failed.Load()
	r.Logger.Info("batch.done",
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats
}

// Serve processes paths as they arrive until the channel closes or ctx is
// done, handing each result to handle. Content already seen by this Runner
// is skipped.
func (r *Runner) Serve(ctx context.Context, paths <-chan string, opts pipeline.Options, handle func(FileResult)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)
	var handleMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case path, ok := <-paths:
			if !ok {
				return g.Wait()
			}
			res, fresh := r.prepare(path)
			if !fresh {
				handleMu.Lock()
				handle(res)
				handleMu.Unlock()
				continue
			}
			g.Go(func() error {
				res := r.execute(gctx, res, opts)
				handleMu.Lock()
				defer handleMu.Unlock()
				handle(res)
				return nil
			})
		}
	}
}

// prepare hashes path and claims its content. fresh is false when the file
// is unreadable or a duplicate; res is then final.
func (r *Runner) prepare(path string) (res FileResult, fresh bool) {
	res.Path = path
	hash, err := HashFile(path)
	if err != nil {
		res.Err = common.ExtractionError(path, err)
		r.Logger.Error("batch.file.failed", "path", path, "err", res.Err)
		return res, false
	}
	res.Hash = hash
	if first := r.claim(hash, path); first != path {
		res.DuplicateOf = first
		r.Logger.Info("batch.file.duplicate", "path", path, "duplicate_of", first)
		return res, false
	}
	return res, true
}

func (r *Runner) execute(ctx context.Context, res FileResult, opts pipeline.Options) FileResult {
	start := time.Now()
	logger := r.Logger.With("path", res.Path)
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	fctx, cancel := context.WithTimeout(ctx, r.FileTimeout)
	defer cancel()
	fctx = common.WithLogger(fctx, logger)

	res.Output, res.Err = r.Proc.Process(fctx, res.Path, opts)
	res.Elapsed = time.Since(start)
	if res.Err != nil {
		logger.Error("batch.file.failed", "err", res.Err, "elapsed_ms", res.Elapsed.Milliseconds())
		return res
	}
	logger.Info("batch.file.ok",
		"is_oa", res.Output.Result.OARecord.IsOA,
		"complete", res.Output.Trace.Complete(),
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	return res
}
