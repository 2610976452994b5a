// Batch driver: discovers the input files, runs clean + import per file with
// bounded concurrency, aggregates rejected rows into the audit artifact, and
// logs the run summary. Package-level function variables exist as test seams.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"ballstats/internal/cleaner"
	"ballstats/internal/config"
	"ballstats/internal/importer"
	"ballstats/internal/metrics"
	csvparser "ballstats/internal/parser/csv"
	"ballstats/internal/records"
	"ballstats/internal/rejectlog"
	"ballstats/internal/storage"
)

// Test seams.
var (
	newRepositoryFn = storage.New
	readDatasetFn   = csvparser.ReadFile
)

const (
	defaultWorkers = 4
	// rejectEchoMax bounds how many rejected rows are echoed to the log at
	// batch end; the full set always lands in the TSV artifact.
	rejectEchoMax = 10
)

// summary aggregates counters across concurrent file workers.
type summary struct {
	filesImported atomic.Int64
	filesSkipped  atomic.Int64
	filesFailed   atomic.Int64

	rowsValidated  atomic.Int64
	rowsRejected   atomic.Int64
	rowsDropped    atomic.Int64
	rowsDuplicates atomic.Int64
	rowsInserted   atomic.Int64
}

// runBatch executes one full import run described by b. A per-file problem
// never fails the batch; only setup errors (storage, file discovery, audit
// artifact) are returned.
func runBatch(ctx context.Context, b config.Batch, verify bool) error {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind: b.Storage.Kind,
		DSN:  b.Storage.DB.DSN,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	files, err := discoverFiles(b.Source)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Printf("no input files found: dir=%s", b.Source.Dir)
		return nil
	}

	workers := pickInt(b.Runtime.Workers, getenvInt("BALLSTATS_WORKERS"), defaultWorkers)
	fileTimeout := time.Duration(pickInt(b.Runtime.FileTimeoutSeconds, getenvInt("BALLSTATS_FILE_TIMEOUT_SECONDS"), 0)) * time.Second

	log.Printf("batch start: job=%s files=%d workers=%d storage=%s", b.Job, len(files), workers, b.Storage.Kind)

	imp := importer.New(repo)
	rl := rejectlog.New()
	var sum summary

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range files {
		path := path
		g.Go(func() error {
			processFile(gctx, b, imp, rl, &sum, path, fileTimeout)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if b.RejectLog != "" {
		if err := rl.WriteTSV(b.RejectLog); err != nil {
			return err
		}
		log.Printf("reject log written: path=%s rows=%d", b.RejectLog, rl.Len())
	}
	echoRejects(rl)

	logSummary(b.Job, &sum)

	if verify {
		if err := verifyTables(ctx, repo); err != nil {
			return err
		}
	}
	return nil
}

// processFile runs one file through read, clean, and import, and folds the
// result into the shared counters. All failure modes are logged and counted;
// nothing propagates to the batch.
func processFile(ctx context.Context, b config.Batch, imp *importer.Importer, rl *rejectlog.Logger, sum *summary, path string, timeout time.Duration) {
	start := time.Now()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// Read and clean run in their own goroutine so the per-file deadline
	// bounds a stall in parsing, not just the storage round-trip.
	type cleaned struct {
		res   cleaner.Result
		err   error
		stage string
	}
	ch := make(chan cleaned, 1)
	go func() {
		ds, err := readDatasetFn(path, csvparser.Options{
			Comma:     b.Parser.CommaRune(),
			TrimSpace: b.Parser.TrimSpace,
		})
		if err != nil {
			ch <- cleaned{err: err, stage: "read"}
			return
		}
		res, err := cleaner.Clean(ds)
		ch <- cleaned{res: res, err: err, stage: "clean"}
	}()

	var c cleaned
	select {
	case <-ctx.Done():
		sum.filesFailed.Add(1)
		metrics.RecordFile(b.Job, "failed", time.Since(start))
		log.Printf("file failed: file=%s reason=timeout error=%v", path, ctx.Err())
		return
	case c = <-ch:
	}
	if c.err != nil {
		var missing *cleaner.MissingColumnError
		if errors.As(c.err, &missing) {
			sum.filesSkipped.Add(1)
			metrics.RecordFile(b.Job, importer.SkippedMissingKey.String(), time.Since(start))
			log.Printf("file skipped: file=%s reason=%q", path, c.err)
			return
		}
		sum.filesFailed.Add(1)
		metrics.RecordFile(b.Job, "failed", time.Since(start))
		log.Printf("file failed: file=%s reason=%s error=%v", path, c.stage, c.err)
		return
	}
	res := c.res

	for _, r := range res.Rejected {
		rl.Add(r)
	}
	sum.rowsRejected.Add(int64(len(res.Rejected)))
	sum.rowsDropped.Add(int64(res.Drops.Total()))
	sum.rowsValidated.Add(int64(len(res.Dataset.Records)))
	metrics.RecordRows(b.Job, "rejected", int64(len(res.Rejected)))
	metrics.RecordRows(b.Job, "dropped", int64(res.Drops.Total()))
	metrics.RecordRows(b.Job, "validated", int64(len(res.Dataset.Records)))

	if res.Drops.Total() > 0 {
		log.Printf("rows dropped: file=%s year_unparseable=%d metric_unparseable=%d metric_non_positive=%d",
			path, res.Drops.YearUnparseable, res.Drops.MetricUnparseable, res.Drops.MetricNonPositive)
	}

	if len(res.Dataset.Records) == 0 {
		sum.filesSkipped.Add(1)
		metrics.RecordFile(b.Job, "skipped_empty", time.Since(start))
		log.Printf("file skipped: file=%s reason=\"no valid rows after cleaning\"", path)
		return
	}

	out := imp.Import(ctx, res.Dataset, func(r records.RejectedRecord) {
		rl.Add(r)
		sum.rowsRejected.Add(1)
		metrics.RecordRows(b.Job, "rejected", 1)
	})

	sum.rowsDuplicates.Add(int64(out.Duplicates))
	sum.rowsInserted.Add(out.Inserted)
	metrics.RecordRows(b.Job, "duplicates", int64(out.Duplicates))
	metrics.RecordRows(b.Job, "inserted", out.Inserted)
	metrics.RecordFile(b.Job, out.State.String(), time.Since(start))

	switch out.State {
	case importer.Imported:
		sum.filesImported.Add(1)
		log.Printf("file imported: file=%s table=%s inserted=%d duplicates=%d elapsed=%s",
			path, out.Table, out.Inserted, out.Duplicates, time.Since(start).Truncate(time.Millisecond))

	case importer.SkippedMissingKey, importer.SkippedNullKey:
		sum.filesSkipped.Add(1)
		log.Printf("file skipped: file=%s table=%s state=%s reason=%q", path, out.Table, out.State, out.Reason)

	case importer.Failed:
		sum.filesFailed.Add(1)
		reason := out.Reason
		if errors.Is(out.Err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		log.Printf("file failed: file=%s table=%s reason=%q error=%v", path, out.Table, reason, out.Err)
	}
}

// discoverFiles resolves the batch's input set. Explicit files are taken in
// config order; otherwise every *.csv in dir is processed in name order.
func discoverFiles(src config.Source) ([]string, error) {
	if len(src.Files) > 0 {
		out := make([]string, len(src.Files))
		for i, f := range src.Files {
			out[i] = filepath.Join(src.Dir, f)
		}
		return out, nil
	}

	matches, err := filepath.Glob(filepath.Join(src.Dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// echoRejects prints the first few rejected rows so operators see what kind
// of data is being excluded without opening the artifact.
func echoRejects(rl *rejectlog.Logger) {
	n := rl.Len()
	if n == 0 {
		return
	}
	log.Printf("rejected rows: total=%d (showing up to %d)", n, rejectEchoMax)
	for _, r := range rl.Sample(rejectEchoMax) {
		var fields []string
		for _, c := range r.Columns {
			fields = append(fields, fmt.Sprintf("%s=%q", c, r.Fields[c]))
		}
		log.Printf("  reject: file=%s line=%d reason=%q %s", r.SourceFile, r.Line, r.Reason, strings.Join(fields, " "))
	}
}

func logSummary(job string, sum *summary) {
	log.Printf("batch summary: job=%s files_imported=%d files_skipped=%d files_failed=%d", job,
		sum.filesImported.Load(), sum.filesSkipped.Load(), sum.filesFailed.Load())
	log.Printf("batch summary: job=%s rows_validated=%d rows_rejected=%d rows_dropped=%d rows_duplicates=%d rows_inserted=%d", job,
		sum.rowsValidated.Load(), sum.rowsRejected.Load(), sum.rowsDropped.Load(),
		sum.rowsDuplicates.Load(), sum.rowsInserted.Load())
}

// verifyTables reads back every table's primary key and logs it, confirming
// the key constraint actually landed in the store.
func verifyTables(ctx context.Context, repo storage.Repository) error {
	tables, err := repo.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("verify: list tables: %w", err)
	}
	for _, t := range tables {
		pk, err := repo.PrimaryKey(ctx, t)
		if err != nil {
			return fmt.Errorf("verify: primary key of %s: %w", t, err)
		}
		log.Printf("verify: table=%s primary_key=%v", t, pk)
	}
	return nil
}

// pickInt returns the first positive value, falling back to def.
func pickInt(vals ...int) int {
	for _, v := range vals[:len(vals)-1] {
		if v > 0 {
			return v
		}
	}
	return vals[len(vals)-1]
}

// getenvInt reads an integer environment variable, returning 0 when unset or
// malformed.
func getenvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
