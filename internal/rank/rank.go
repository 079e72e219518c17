// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank produces stable engagement orderings of posts.
package rank

import (
	"sort"

	"github.com/pdiddy/postlens/pkg/types"
)

// Posts returns a ranked view of the posts: descending engagement rate,
// ties broken by date descending then ingestion ID ascending. The input
// slice is not modified; ranks are 1-based. topN > 0 truncates the view.
func Posts(posts []types.Post, topN int) []types.RankedEntry {
	ordered := make([]types.Post, len(posts))
	copy(ordered, posts)

	sort.SliceStable(ordered, func(i, j int) bool {
		return less(ordered[i], ordered[j])
	})

	if topN > 0 && len(ordered) > topN {
		ordered = ordered[:topN]
	}

	entries := make([]types.RankedEntry, len(ordered))
	for i, p := range ordered {
		entries[i] = types.RankedEntry{PostID: p.ID, Score: p.EngagementRate, Rank: i + 1}
	}
	return entries
}

// ByBucket ranks each bucket's member posts separately. Bucket membership
// comes from the classifier; the map is keyed by bucket name.
func ByBucket(posts []types.Post, memberships []types.Membership, topN int) map[string][]types.RankedEntry {
	byID := make(map[int]types.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	buckets := make(map[string][]types.Post)
	for _, m := range memberships {
		post, ok := byID[m.PostID]
		if !ok {
			continue
		}
		for _, name := range m.Buckets {
			buckets[name] = append(buckets[name], post)
		}
	}

	ranked := make(map[string][]types.RankedEntry, len(buckets))
	for name, members := range buckets {
		ranked[name] = Posts(members, topN)
	}
	return ranked
}

// less orders posts for ranking: rate descending, date descending, ID
// ascending. The order is total, so repeated runs produce identical ranks.
func less(a, b types.Post) bool {
	if a.EngagementRate != b.EngagementRate {
		return a.EngagementRate > b.EngagementRate
	}
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID < b.ID
}
