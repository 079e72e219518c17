// Package dedup merges near-duplicate statements into groups with one
// canonical representative each.
package dedup

import (
	"strings"
	"unicode"

	"github.com/pdiddy/postlens/pkg/types"
)

const defaultThreshold = 0.8

// Tokens returns the lowercased, punctuation-stripped word set of a clause.
func Tokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[tok] = true
	}
	return set
}

// Similarity is the Jaccard similarity of two token sets.
func Similarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// group accumulates members during clustering. The seed (first member, so
// the lowest ingestion order) is the comparison anchor, which keeps joins
// independent of later arrivals.
type group struct {
	kind       types.StatementKind
	seedTokens map[string]bool
	members    []types.Statement
}

// Group partitions statements into DedupGroups. Statements only merge within
// the same kind. Within a group the canonical member is the one whose post
// has the highest engagement rate, with ties broken by earliest date, then
// lowest post ID (a total order, so repeated runs pick the same member).
// The emitted canonicals are pairwise below the threshold, so feeding them
// back through Group is a fixed point.
func Group(statements []types.Statement, posts []types.Post, cfg types.DedupConfig) []types.DedupGroup {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	byID := make(map[int]types.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	var groups []*group
	for _, st := range statements {
		tokens := Tokens(st.Normalized)

		joined := false
		for _, g := range groups {
			if g.kind != st.Kind {
				continue
			}
			if Similarity(tokens, g.seedTokens) >= threshold {
				g.members = append(g.members, st)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, &group{
				kind:       st.Kind,
				seedTokens: tokens,
				members:    []types.Statement{st},
			})
		}
	}

	groups = mergeClosure(groups, byID, threshold)

	out := make([]types.DedupGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, types.DedupGroup{
			Canonical: canonicalIndex(g.members, byID),
			Members:   g.members,
		})
	}
	return out
}

// mergeClosure folds together any two same-kind groups whose canonical
// members still sit at or above the threshold. The seed pass anchors joins
// on each group's first member, so a bridge statement can land in one group
// while its canonical remains near another group's canonical; this pass
// closes that gap. Groups are scanned in creation order and the loop runs
// until no merge applies, so the result is deterministic.
func mergeClosure(groups []*group, posts map[int]types.Post, threshold float64) []*group {
	canonTokens := func(g *group) map[string]bool {
		return Tokens(g.members[canonicalIndex(g.members, posts)].Normalized)
	}

	for again := true; again; {
		again = false
		for i := 0; i < len(groups); i++ {
			ti := canonTokens(groups[i])
			for j := i + 1; j < len(groups); j++ {
				if groups[j].kind != groups[i].kind {
					continue
				}
				if Similarity(ti, canonTokens(groups[j])) < threshold {
					continue
				}
				groups[i].members = append(groups[i].members, groups[j].members...)
				groups = append(groups[:j], groups[j+1:]...)
				ti = canonTokens(groups[i])
				j--
				again = true
			}
		}
	}
	return groups
}

// Canonicals returns the canonical representative of each group, in group
// order.
func Canonicals(groups []types.DedupGroup) []types.Statement {
	reps := make([]types.Statement, 0, len(groups))
	for _, g := range groups {
		reps = append(reps, g.Representative())
	}
	return reps
}

func canonicalIndex(members []types.Statement, posts map[int]types.Post) int {
	best := 0
	for i := 1; i < len(members); i++ {
		if lessCanonical(posts[members[i].PostID], posts[members[best].PostID]) {
			best = i
		}
	}
	return best
}

// lessCanonical reports whether a's post outranks b's for canonical
// selection: higher engagement, then earlier date, then lower ID.
func lessCanonical(a, b types.Post) bool {
	if a.EngagementRate != b.EngagementRate {
		return a.EngagementRate > b.EngagementRate
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}
