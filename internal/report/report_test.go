package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/postlens/pkg/types"
)

func testInput() Input {
	posts := []types.Post{
		{
			ID: 0, Date: time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
			Body:      "I believe consistency beats intensity.",
			Tags:      []string{"career"},
			Reactions: 15, Comments: 5, Shares: 1, EngagementRate: 28,
		},
		{
			ID: 1, Date: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
			Body:      "Quiet week, nothing to report.",
			Reactions: 2, EngagementRate: 2,
		},
	}
	statements := []types.Statement{
		{
			ID: "aaa", Kind: types.KindBelief,
			Text: "consistency beats intensity", Normalized: "consistency beats intensity",
			PostID: 0,
		},
		{
			ID: "bbb", Kind: types.KindPreference,
			Text: "tabs over spaces", Normalized: "tabs over spaces", PostID: 0,
			Pair: &types.PreferencePair{Preferred: "tabs", Over: "spaces"},
		},
	}
	buckets := []types.Bucket{
		{Name: "career_insights", Title: "Career Insights"},
		{Name: "general_insights", Title: "General Insights", Fallback: true},
	}
	return Input{
		Buckets: buckets,
		Posts:   posts,
		Memberships: []types.Membership{
			{PostID: 0, Buckets: []string{"career_insights"}, Scores: []float64{3}, Top: "career_insights"},
			{PostID: 1, Buckets: []string{"general_insights"}, Scores: []float64{0}, Top: "general_insights"},
		},
		Statements: statements,
		Groups: []types.DedupGroup{
			{Canonical: 0, Members: []types.Statement{statements[0]}},
			{Canonical: 0, Members: []types.Statement{statements[1]}},
		},
		Global: []types.RankedEntry{
			{PostID: 0, Score: 28, Rank: 1},
			{PostID: 1, Score: 2, Rank: 2},
		},
		PerBucket: map[string][]types.RankedEntry{
			"career_insights":  {{PostID: 0, Score: 28, Rank: 1}},
			"general_insights": {{PostID: 1, Score: 2, Rank: 1}},
		},
		Diags: &types.Diagnostics{RunID: "01TESTRUN", SkippedRecords: 1},
	}
}

func testReportConfig(dir string) types.ReportConfig {
	return types.ReportConfig{
		OutputDir:   dir,
		GeneratedAt: "2024-06-01T00:00:00Z",
	}
}

func readArtifact(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err, name)
	return string(data)
}

func TestEmitWritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Emit(context.Background(), testInput(), testReportConfig(dir)))

	for _, name := range []string{
		"career_insights.md", "general_insights.md",
		"beliefs.md", "preferences.md", "summary.md",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	// No stranded temp files after success.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEmitBucketContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Emit(context.Background(), testInput(), testReportConfig(dir)))

	content := readArtifact(t, dir, "career_insights.md")

	assert.Contains(t, content, "# Career Insights")
	assert.Contains(t, content, "_Generated at 2024-06-01T00:00:00Z_")
	assert.Contains(t, content, "### 1. 2024-05-12")
	assert.Contains(t, content, "**Engagement:** 15 reactions, 5 comments, 1 shares (28.0% rate)")
	assert.Contains(t, content, "**Tags:** #career")
	assert.Contains(t, content, "**Extracted Beliefs:**\n- consistency beats intensity")
	assert.Contains(t, content, "**Extracted Preferences:**\n- \"tabs\" over \"spaces\"")
}

func TestEmitListingsUseCanonicalsOnly(t *testing.T) {
	in := testInput()
	// Add a non-canonical member; it must not surface in the listing.
	in.Groups[0].Members = append(in.Groups[0].Members, types.Statement{
		ID: "ccc", Kind: types.KindBelief,
		Text: "consistency beats raw intensity", Normalized: "consistency beats raw intensity",
		PostID: 1,
	})

	dir := t.TempDir()
	require.NoError(t, Emit(context.Background(), in, testReportConfig(dir)))

	beliefs := readArtifact(t, dir, "beliefs.md")
	assert.Contains(t, beliefs, "1. consistency beats intensity — 2024-05-12 (28.0% rate)")
	assert.NotContains(t, beliefs, "raw intensity")

	preferences := readArtifact(t, dir, "preferences.md")
	assert.Contains(t, preferences, `1. "tabs" over "spaces" — 2024-05-12 (28.0% rate)`)
}

func TestEmitSummary(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Emit(context.Background(), testInput(), testReportConfig(dir)))

	summary := readArtifact(t, dir, "summary.md")

	assert.Contains(t, summary, "**Total posts analyzed:** 2")
	assert.Contains(t, summary, "**Total comments analyzed:** 5")
	assert.Contains(t, summary, "**Total statements extracted:** 2")
	assert.Contains(t, summary, "**Average engagement rate:** 15.0%")
	assert.Contains(t, summary, "| Career Insights | 1 | 1 |")
	assert.Contains(t, summary, "| General Insights | 1 | 1 |")
	assert.Contains(t, summary, "## Top 10 by Engagement")
	assert.Contains(t, summary, "**Skipped malformed records:** 1")
	// Run IDs vary between runs and must stay out of artifacts.
	assert.NotContains(t, summary, "01TESTRUN")
}

func TestEmitDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	in := testInput()
	cfgA, cfgB := testReportConfig(dirA), testReportConfig(dirB)

	require.NoError(t, Emit(context.Background(), in, cfgA))
	require.NoError(t, Emit(context.Background(), in, cfgB))

	entries, err := os.ReadDir(dirA)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		a := readArtifact(t, dirA, e.Name())
		b := readArtifact(t, dirB, e.Name())
		assert.Equal(t, a, b, "artifact %s differs between identical runs", e.Name())
	}
}

func TestEmitWriteFailure(t *testing.T) {
	// Using an existing file as the output directory makes MkdirAll fail.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	err := Emit(context.Background(), testInput(), testReportConfig(blocked))
	require.Error(t, err)

	var wf *WriteFailure
	assert.ErrorAs(t, err, &wf)
}

func TestEmitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	err := Emit(ctx, testInput(), testReportConfig(dir))
	require.Error(t, err)

	// Nothing half-written.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "stranded temp file %s", e.Name())
	}
}

// errAfterContext reports cancellation after a fixed number of Err checks,
// which lands mid-emission.
type errAfterContext struct {
	context.Context
	mu    sync.Mutex
	allow int
}

func (c *errAfterContext) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.allow <= 0 {
		return context.Canceled
	}
	c.allow--
	return nil
}

func TestEmitCancelledMidRun(t *testing.T) {
	dir := t.TempDir()
	ctx := &errAfterContext{Context: context.Background(), allow: 1}

	err := Emit(ctx, testInput(), testReportConfig(dir))
	require.ErrorIs(t, err, context.Canceled)

	// Every writer launched before the cancellation has finished by the
	// time Emit returns: nothing half-written, no stranded temps, and no
	// artifacts beyond the ones already in flight.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "stranded temp file %s", e.Name())
	}
	assert.Less(t, len(entries), 5, "cancellation must stop further artifacts")
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("abcde ", 100)
	got := excerpt(long, 50)
	assert.Len(t, []rune(got), 50)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short", excerpt("short", 50))
}
