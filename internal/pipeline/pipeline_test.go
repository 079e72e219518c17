package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/postlens/internal/extract"
	"github.com/pdiddy/postlens/pkg/types"
)

func testRecords() []types.RawRecord {
	return []types.RawRecord{
		{
			Body:      "I believe the key to a good career is compounding skills. #career",
			Date:      "2024-05-12",
			Reactions: 15, Comments: 5, Shares: 1,
		},
		{
			Body: "I prefer modular monoliths, but at times it might be better to switch to microservices",
			Date: "2024-05-14",
			Reactions: 8, Comments: 2,
		},
		{
			Body: "The key is to build with scalability in mind from the outset.",
			Date: "2024-05-16",
			Reactions: 15, Comments: 5, Shares: 1,
		},
		{
			Body: "The key is to build with scalability in mind from the outset.",
			Date: "2024-05-18",
			Reactions: 10,
		},
		{
			Body: "Quiet musings with no particular topic at all.",
			Date: "2024-05-20",
			Reactions: 1,
		},
		{
			Body: "no date on this one",
		},
	}
}

func testConfig(outputDir string) types.PipelineConfig {
	return types.PipelineConfig{
		Dedup: types.DedupConfig{Threshold: 0.8},
		Rank:  types.RankConfig{TopN: 10},
		Report: types.ReportConfig{
			OutputDir:   outputDir,
			GeneratedAt: "2024-06-01T00:00:00Z",
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()

	result, err := Run(context.Background(), testRecords(), extract.RuleOracle{}, testConfig(dir), io.Discard)
	require.NoError(t, err)

	assert.Len(t, result.Posts, 5)
	assert.Equal(t, 1, result.Diags.SkippedRecords)
	assert.NotEmpty(t, result.Diags.RunID)

	// Every post lands in at least one bucket, fallback included.
	require.Len(t, result.Memberships, 5)
	for _, m := range result.Memberships {
		assert.NotEmpty(t, m.Buckets, "post %d has no bucket", m.PostID)
	}

	// All artifacts present: one per default bucket plus the three listings.
	wantFiles := len(types.DefaultBuckets()) + 3
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, wantFiles)
}

func TestRunDedupScenario(t *testing.T) {
	// Identical belief text at rates 28 and 10 must collapse to one group
	// whose canonical member is the rate-28 post.
	dir := t.TempDir()
	result, err := Run(context.Background(), testRecords(), extract.RuleOracle{}, testConfig(dir), io.Discard)
	require.NoError(t, err)

	var found bool
	for _, g := range result.Groups {
		rep := g.Representative()
		if rep.Normalized == "to build with scalability in mind from the outset" {
			found = true
			assert.Len(t, g.Members, 2)
			assert.Equal(t, 28.0, postByID(result.Posts, rep.PostID).EngagementRate)
		}
	}
	assert.True(t, found, "scalability belief group missing")
}

func TestRunPreferenceCapture(t *testing.T) {
	dir := t.TempDir()
	result, err := Run(context.Background(), testRecords(), extract.RuleOracle{}, testConfig(dir), io.Discard)
	require.NoError(t, err)

	var pair *types.PreferencePair
	for _, st := range result.Statements {
		if st.Kind == types.KindPreference {
			pair = st.Pair
		}
	}
	require.NotNil(t, pair)
	assert.Equal(t, "modular monoliths", pair.Preferred)
	assert.Equal(t, "switch to microservices", pair.Over)
}

func TestRunDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	_, err := Run(context.Background(), testRecords(), extract.RuleOracle{}, testConfig(dirA), io.Discard)
	require.NoError(t, err)
	_, err = Run(context.Background(), testRecords(), extract.RuleOracle{}, testConfig(dirB), io.Discard)
	require.NoError(t, err)

	entries, err := os.ReadDir(dirA)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		a, err := os.ReadFile(filepath.Join(dirA, e.Name()))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, e.Name()))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), "artifact %s differs between runs", e.Name())
	}
}

func TestRunEmptyInput(t *testing.T) {
	records := []types.RawRecord{
		{Body: "", Date: "2024-01-01"},
		{Body: "no date"},
	}

	_, err := Run(context.Background(), records, extract.RuleOracle{}, testConfig(t.TempDir()), io.Discard)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testRecords(), extract.RuleOracle{}, testConfig(t.TempDir()), io.Discard)
	require.Error(t, err)
}

func TestRunRanksMonotonically(t *testing.T) {
	dir := t.TempDir()
	result, err := Run(context.Background(), testRecords(), extract.RuleOracle{}, testConfig(dir), io.Discard)
	require.NoError(t, err)

	for i := 1; i < len(result.Global); i++ {
		assert.GreaterOrEqual(t, result.Global[i-1].Score, result.Global[i].Score)
	}
	for name, entries := range result.PerBucket {
		for i := 1; i < len(entries); i++ {
			assert.GreaterOrEqual(t, entries[i-1].Score, entries[i].Score, "bucket %s", name)
		}
	}
}

func TestWriteDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagnostics.yaml")
	diags := types.Diagnostics{RunID: "01TEST", SkippedRecords: 2}
	diags.Add(types.DiagMalformedRecord, "record 4: missing date")

	require.NoError(t, WriteDiagnostics(path, diags))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id: 01TEST")
	assert.Contains(t, string(data), "malformed_record")
}

func postByID(posts []types.Post, id int) types.Post {
	for _, p := range posts {
		if p.ID == id {
			return p
		}
	}
	return types.Post{}
}
