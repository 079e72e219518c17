// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the analysis stages: normalize, extract,
// classify, dedup, rank, report. Data flows strictly forward; every stage
// produces a new collection, so a run is deterministic and replay-safe.
package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/postlens/internal/classify"
	"github.com/pdiddy/postlens/internal/dedup"
	"github.com/pdiddy/postlens/internal/extract"
	"github.com/pdiddy/postlens/internal/normalize"
	"github.com/pdiddy/postlens/internal/rank"
	"github.com/pdiddy/postlens/internal/report"
	"github.com/pdiddy/postlens/pkg/types"
)

// ErrEmptyInput is returned when zero valid posts survive normalization.
// The CLI maps it to exit code 1.
var ErrEmptyInput = errors.New("no valid posts after normalization")

const defaultTopN = 10

// entropy feeds run-ID generation. Run IDs only label audit output; they
// never influence analysis results.
var entropy = ulid.Monotonic(rand.Reader, 0)

// Result holds every stage's frozen output for one run.
type Result struct {
	Posts       []types.Post
	Statements  []types.Statement
	Memberships []types.Membership
	Groups      []types.DedupGroup
	Global      []types.RankedEntry
	PerBucket   map[string][]types.RankedEntry
	Diags       types.Diagnostics
}

// Run executes the full pipeline over the raw records and writes the output
// artifacts. Progress and warnings go to w. Extraction and classification
// fan out over a worker pool; dedup and rank run single-threaded so their
// tie-break rules stay deterministic.
func Run(ctx context.Context, records []types.RawRecord, oracle extract.Oracle, cfg types.PipelineConfig, w io.Writer) (*Result, error) {
	diags := types.Diagnostics{RunID: ulid.MustNew(ulid.Now(), entropy).String()}
	fmt.Fprintf(w, "run %s\n", diags.RunID)

	if len(cfg.Classify.Buckets) == 0 {
		cfg.Classify.Buckets = types.DefaultBuckets()
	}
	if err := classify.Validate(cfg.Classify.Buckets); err != nil {
		return nil, err
	}

	posts := normalize.Normalize(records, cfg.Normalize, &diags)
	if diags.SkippedRecords > 0 {
		fmt.Fprintf(w, "warning: skipped %d malformed record(s)\n", diags.SkippedRecords)
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%d record(s) read: %w", len(records), ErrEmptyInput)
	}

	statements, memberships, err := analyzePosts(ctx, posts, oracle, cfg, &diags)
	if err != nil {
		return nil, err
	}

	groups := dedup.Group(statements, posts, cfg.Dedup)

	topN := cfg.Rank.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	global := rank.Posts(posts, 0)
	perBucket := rank.ByBucket(posts, memberships, topN)

	if err := report.Emit(ctx, report.Input{
		Buckets:     cfg.Classify.Buckets,
		Posts:       posts,
		Memberships: memberships,
		Statements:  statements,
		Groups:      groups,
		Global:      global,
		PerBucket:   perBucket,
		Diags:       &diags,
	}, cfg.Report); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "analyzed %d post(s): %d statement(s), %d after dedup, %d skipped, %d unclassifiable, %d ambiguous\n",
		len(posts), len(statements), len(groups),
		diags.SkippedRecords, diags.UnclassifiablePosts, diags.AmbiguousExtractions)

	return &Result{
		Posts:       posts,
		Statements:  statements,
		Memberships: memberships,
		Groups:      groups,
		Global:      global,
		PerBucket:   perBucket,
		Diags:       diags,
	}, nil
}

// postResult is one worker's output for a single post. Workers share no
// mutable state; diagnostics are merged by the coordinator in post order so
// the run report is independent of scheduling.
type postResult struct {
	statements []types.Statement
	membership types.Membership
	diags      types.Diagnostics
	err        error
}

// analyzePosts runs extraction and classification across a worker pool.
// Results are collected per post index, then flattened in ingestion order.
func analyzePosts(ctx context.Context, posts []types.Post, oracle extract.Oracle, cfg types.PipelineConfig, diags *types.Diagnostics) ([]types.Statement, []types.Membership, error) {
	workers := cfg.Extract.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(posts) {
		workers = len(posts)
	}

	results := make([]postResult, len(posts))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = analyzePost(ctx, posts[i], oracle, cfg.Classify)
			}
		}()
	}

	feed := func() error {
		defer close(jobs)
		for i := range posts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- i:
			}
		}
		return nil
	}
	feedErr := feed()
	wg.Wait()
	if feedErr != nil {
		return nil, nil, feedErr
	}

	var statements []types.Statement
	memberships := make([]types.Membership, 0, len(posts))
	for i := range results {
		if results[i].err != nil {
			return nil, nil, results[i].err
		}
		statements = append(statements, results[i].statements...)
		memberships = append(memberships, results[i].membership)
		for _, p := range results[i].diags.Problems {
			diags.Add(p.Class, p.Detail)
		}
	}
	return statements, memberships, nil
}

func analyzePost(ctx context.Context, post types.Post, oracle extract.Oracle, cfg types.ClassifyConfig) postResult {
	var r postResult
	r.statements, r.err = extract.ExtractPost(ctx, oracle, post, &r.diags)
	if r.err != nil {
		return r
	}
	r.membership = classify.Post(post, cfg, &r.diags)
	return r
}

// WriteDiagnostics exports the run diagnostics as YAML.
func WriteDiagnostics(path string, diags types.Diagnostics) error {
	data, err := yaml.Marshal(diags)
	if err != nil {
		return fmt.Errorf("encoding diagnostics: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing diagnostics: %w", err)
	}
	return nil
}
