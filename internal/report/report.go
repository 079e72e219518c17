// Package report renders the analyzed archive into markdown artifacts: one
// file per category bucket, belief and preference listings built from
// canonical representatives, and a master summary. Rendering is a pure
// function of its input, so identical upstream data produces byte-identical
// files.
package report

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/postlens/pkg/types"
)

const defaultExcerptLen = 280

// Input is the frozen upstream data an emission run renders.
type Input struct {
	Buckets     []types.Bucket
	Posts       []types.Post
	Memberships []types.Membership
	Statements  []types.Statement
	Groups      []types.DedupGroup
	Global      []types.RankedEntry
	PerBucket   map[string][]types.RankedEntry
	Diags       *types.Diagnostics
}

// Emit renders and writes all artifacts. Files render independently from the
// frozen input, so they are written concurrently; the first failure wins.
// On any failure no partially written artifact remains.
func Emit(ctx context.Context, in Input, cfg types.ReportConfig) error {
	if err := ensureDir(cfg.OutputDir); err != nil {
		return err
	}

	artifacts := renderAll(in, cfg)

	var wg sync.WaitGroup
	errs := make(chan error, len(artifacts))
	for name, content := range artifacts {
		if err := ctx.Err(); err != nil {
			// Let in-flight writers finish before reporting cancellation,
			// so no write outlives the call.
			wg.Wait()
			cleanupTemps(cfg.OutputDir)
			return err
		}
		wg.Add(1)
		go func(name, content string) {
			defer wg.Done()
			errs <- writeAtomic(filepath.Join(cfg.OutputDir, name), content, cfg.MaxWriteRetries)
		}(name, content)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			cleanupTemps(cfg.OutputDir)
			return err
		}
	}
	return nil
}

// renderAll produces every artifact's content keyed by file name.
func renderAll(in Input, cfg types.ReportConfig) map[string]string {
	artifacts := make(map[string]string, len(in.Buckets)+3)
	for _, bucket := range in.Buckets {
		artifacts[bucket.Name+".md"] = renderBucket(in, bucket, cfg)
	}
	artifacts["beliefs.md"] = renderStatementListing(in, types.KindBelief, cfg)
	artifacts["preferences.md"] = renderStatementListing(in, types.KindPreference, cfg)
	artifacts["summary.md"] = renderSummary(in, cfg)
	return artifacts
}

func renderBucket(in Input, bucket types.Bucket, cfg types.ReportConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", bucket.Title)
	writeGenerated(&b, cfg)

	entries := in.PerBucket[bucket.Name]
	if len(entries) == 0 {
		b.WriteString("No posts in this category.\n")
		return b.String()
	}

	posts := postIndex(in.Posts)
	statements := statementsByPost(in.Statements)

	for _, entry := range entries {
		post := posts[entry.PostID]
		fmt.Fprintf(&b, "### %d. %s\n\n", entry.Rank, post.Date.Format("2006-01-02"))
		fmt.Fprintf(&b, "**Engagement:** %d reactions, %d comments, %d shares (%.1f%% rate)\n",
			post.Reactions, post.Comments, post.Shares, post.EngagementRate)
		if line := tagLine(post); line != "" {
			fmt.Fprintf(&b, "**Tags:** %s\n", line)
		}
		fmt.Fprintf(&b, "\n%s\n", excerpt(post.Body, cfg.ExcerptLen))
		writeStatementSublist(&b, statements[post.ID])
		b.WriteString("\n")
	}
	return b.String()
}

func writeStatementSublist(b *strings.Builder, statements []types.Statement) {
	var beliefs, preferences []types.Statement
	for _, st := range statements {
		switch st.Kind {
		case types.KindBelief:
			beliefs = append(beliefs, st)
		case types.KindPreference:
			preferences = append(preferences, st)
		}
	}

	if len(beliefs) > 0 {
		b.WriteString("\n**Extracted Beliefs:**\n")
		for _, st := range beliefs {
			fmt.Fprintf(b, "- %s\n", st.Text)
		}
	}
	if len(preferences) > 0 {
		b.WriteString("\n**Extracted Preferences:**\n")
		for _, st := range preferences {
			fmt.Fprintf(b, "- %q over %q\n", st.Pair.Preferred, st.Pair.Over)
		}
	}
}

// renderStatementListing builds beliefs.md or preferences.md purely from
// canonical group representatives, ordered by originating-post engagement.
func renderStatementListing(in Input, kind types.StatementKind, cfg types.ReportConfig) string {
	var b strings.Builder
	switch kind {
	case types.KindBelief:
		b.WriteString("# Extracted Beliefs\n\n")
	case types.KindPreference:
		b.WriteString("# Extracted Preferences\n\n")
	}
	writeGenerated(&b, cfg)

	posts := postIndex(in.Posts)

	var reps []types.Statement
	for _, g := range in.Groups {
		rep := g.Representative()
		if rep.Kind == kind {
			reps = append(reps, rep)
		}
	}
	sort.SliceStable(reps, func(i, j int) bool {
		return lessByEngagement(posts[reps[i].PostID], posts[reps[j].PostID])
	})

	if len(reps) == 0 {
		b.WriteString("None extracted.\n")
		return b.String()
	}

	for i, rep := range reps {
		post := posts[rep.PostID]
		switch kind {
		case types.KindBelief:
			fmt.Fprintf(&b, "%d. %s — %s (%.1f%% rate)\n",
				i+1, rep.Text, post.Date.Format("2006-01-02"), post.EngagementRate)
		case types.KindPreference:
			fmt.Fprintf(&b, "%d. %q over %q — %s (%.1f%% rate)\n",
				i+1, rep.Pair.Preferred, rep.Pair.Over,
				post.Date.Format("2006-01-02"), post.EngagementRate)
		}
	}
	return b.String()
}

func renderSummary(in Input, cfg types.ReportConfig) string {
	var b strings.Builder
	b.WriteString("# Analysis Summary\n\n")
	writeGenerated(&b, cfg)

	totalComments := 0
	totalRate := 0.0
	for _, p := range in.Posts {
		totalComments += p.Comments
		totalRate += p.EngagementRate
	}
	avgRate := 0.0
	if len(in.Posts) > 0 {
		avgRate = totalRate / float64(len(in.Posts))
	}

	fmt.Fprintf(&b, "- **Total posts analyzed:** %d\n", len(in.Posts))
	fmt.Fprintf(&b, "- **Total comments analyzed:** %d\n", totalComments)
	fmt.Fprintf(&b, "- **Total statements extracted:** %d\n", len(in.Statements))
	fmt.Fprintf(&b, "- **Distinct statements after dedup:** %d\n", len(in.Groups))
	fmt.Fprintf(&b, "- **Average engagement rate:** %.1f%%\n", avgRate)

	// "Top for" counts posts whose single best bucket this is, as opposed
	// to overall membership, which is multi-bucket by design.
	b.WriteString("\n## Category Distribution\n\n")
	b.WriteString("| Category | Posts | Top for |\n|----------|-------|---------|\n")
	counts := bucketCounts(in.Memberships)
	tops := topCounts(in.Memberships)
	for _, bucket := range in.Buckets {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", bucket.Title, counts[bucket.Name], tops[bucket.Name])
	}

	b.WriteString("\n## Top 10 by Engagement\n\n")
	posts := postIndex(in.Posts)
	top := in.Global
	if len(top) > 10 {
		top = top[:10]
	}
	if len(top) == 0 {
		b.WriteString("No posts.\n")
	}
	for _, entry := range top {
		post := posts[entry.PostID]
		fmt.Fprintf(&b, "%d. %s — %s (%.1f%% rate)\n",
			entry.Rank, post.Date.Format("2006-01-02"), excerpt(post.Body, 80), entry.Score)
	}

	// The run ID stays out of the markdown artifacts: identical input must
	// produce byte-identical files across runs.
	if d := in.Diags; d != nil {
		b.WriteString("\n## Run Diagnostics\n\n")
		fmt.Fprintf(&b, "- **Skipped malformed records:** %d\n", d.SkippedRecords)
		fmt.Fprintf(&b, "- **Unclassifiable posts:** %d\n", d.UnclassifiablePosts)
		fmt.Fprintf(&b, "- **Ambiguous extractions:** %d\n", d.AmbiguousExtractions)
	}
	return b.String()
}

func writeGenerated(b *strings.Builder, cfg types.ReportConfig) {
	if cfg.GeneratedAt != "" {
		fmt.Fprintf(b, "_Generated at %s_\n\n", cfg.GeneratedAt)
	}
}

// tagLine renders the post's explicit tags and stripped hashtags as one
// hash-prefixed line.
func tagLine(post types.Post) string {
	var parts []string
	for _, t := range post.Tags {
		parts = append(parts, "#"+t)
	}
	for _, h := range post.Hashtags {
		parts = append(parts, "#"+h)
	}
	return strings.Join(parts, " ")
}

func bucketCounts(memberships []types.Membership) map[string]int {
	counts := make(map[string]int)
	for _, m := range memberships {
		for _, name := range m.Buckets {
			counts[name]++
		}
	}
	return counts
}

func topCounts(memberships []types.Membership) map[string]int {
	counts := make(map[string]int)
	for _, m := range memberships {
		counts[m.Top]++
	}
	return counts
}

func postIndex(posts []types.Post) map[int]types.Post {
	byID := make(map[int]types.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	return byID
}

func statementsByPost(statements []types.Statement) map[int][]types.Statement {
	byPost := make(map[int][]types.Statement)
	for _, st := range statements {
		byPost[st.PostID] = append(byPost[st.PostID], st)
	}
	return byPost
}

// lessByEngagement mirrors the ranker's total order: rate descending, date
// descending, ID ascending.
func lessByEngagement(a, b types.Post) bool {
	if a.EngagementRate != b.EngagementRate {
		return a.EngagementRate > b.EngagementRate
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID < b.ID
}

func excerpt(body string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = defaultExcerptLen
	}
	runes := []rune(body)
	if len(runes) <= maxLen {
		return body
	}
	return string(runes[:maxLen-3]) + "..."
}
