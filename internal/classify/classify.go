// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns posts to category buckets by weighted keyword
// scoring. The bucket set is configuration, not code: the classifier walks
// whatever declaration-ordered set it is given.
package classify

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/postlens/pkg/types"
)

const (
	defaultMinScore = 1.0
	defaultTagBoost = 2.0
)

// LoadBuckets reads a bucket set from a YAML file.
func LoadBuckets(path string) ([]types.Bucket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bucket config: %w", err)
	}
	var buckets []types.Bucket
	if err := yaml.Unmarshal(data, &buckets); err != nil {
		return nil, fmt.Errorf("parsing bucket config: %w", err)
	}
	if err := Validate(buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// Validate checks that the bucket set is non-empty, has unique names, and
// declares exactly one fallback bucket.
func Validate(buckets []types.Bucket) error {
	if len(buckets) == 0 {
		return fmt.Errorf("bucket set is empty")
	}
	seen := make(map[string]bool)
	fallbacks := 0
	for _, b := range buckets {
		if b.Name == "" {
			return fmt.Errorf("bucket with empty name")
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate bucket %q", b.Name)
		}
		seen[b.Name] = true
		if b.Fallback {
			fallbacks++
		}
	}
	if fallbacks != 1 {
		return fmt.Errorf("bucket set declares %d fallback buckets, want exactly 1", fallbacks)
	}
	return nil
}

// Classify assigns each post to every bucket whose score clears the
// threshold, in declaration order. Posts matching nothing land in the
// fallback bucket and are recorded as unclassifiable. Statements inherit
// their post's membership, so only posts are classified here.
func Classify(posts []types.Post, cfg types.ClassifyConfig, diags *types.Diagnostics) []types.Membership {
	memberships := make([]types.Membership, 0, len(posts))
	for _, post := range posts {
		memberships = append(memberships, Post(post, cfg, diags))
	}
	return memberships
}

// Post classifies a single post. It is pure apart from the diagnostics
// sink, so posts can be classified concurrently with per-worker sinks.
func Post(post types.Post, cfg types.ClassifyConfig, diags *types.Diagnostics) types.Membership {
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	tagBoost := cfg.TagBoost
	if tagBoost <= 0 {
		tagBoost = defaultTagBoost
	}
	return classifyPost(post, cfg.Buckets, minScore, tagBoost, diags)
}

func classifyPost(post types.Post, buckets []types.Bucket, minScore, tagBoost float64, diags *types.Diagnostics) types.Membership {
	body := strings.ToLower(post.Body)
	tokens := tokenSet(body)
	tags := normalizedTags(post)

	m := types.Membership{PostID: post.ID}
	topScore := -1.0

	for _, bucket := range buckets {
		if bucket.Fallback {
			continue
		}

		score := 0.0
		for _, kw := range bucket.Keywords {
			term := strings.ToLower(kw.Term)
			if strings.ContainsRune(term, ' ') {
				if strings.Contains(body, term) {
					score += kw.Weight
				}
			} else if tokens[term] {
				score += kw.Weight
			}
		}
		if tags[topicName(bucket.Name)] {
			score += tagBoost
		}

		admitted := score >= minScore
		if bucket.MinEngagementRate > 0 && post.EngagementRate >= bucket.MinEngagementRate {
			admitted = true
		}
		if !admitted {
			continue
		}

		m.Buckets = append(m.Buckets, bucket.Name)
		m.Scores = append(m.Scores, score)
		// Strictly greater keeps declaration order as the tie-break.
		if score > topScore {
			topScore = score
			m.Top = bucket.Name
		}
	}

	if len(m.Buckets) == 0 {
		fallback := fallbackName(buckets)
		m.Buckets = []string{fallback}
		m.Scores = []float64{0}
		m.Top = fallback
		if diags != nil {
			diags.Add(types.DiagUnclassifiablePost,
				fmt.Sprintf("post %d: no bucket above threshold", post.ID))
		}
	}

	return m
}

func fallbackName(buckets []types.Bucket) string {
	for _, b := range buckets {
		if b.Fallback {
			return b.Name
		}
	}
	// Validate guarantees a fallback; this is a safety net for ad-hoc sets.
	return "general_insights"
}

// topicName converts a bucket name to its tag form: underscores to spaces.
func topicName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", " ")
}

// normalizedTags returns the post's explicit tags and hashtags, lowercased
// with hyphens and underscores folded to spaces.
func normalizedTags(post types.Post) map[string]bool {
	set := make(map[string]bool)
	for _, t := range append(append([]string{}, post.Tags...), post.Hashtags...) {
		t = strings.ToLower(t)
		t = strings.ReplaceAll(t, "-", " ")
		t = strings.ReplaceAll(t, "_", " ")
		set[strings.TrimSpace(t)] = true
	}
	return set
}

// tokenSet splits lowercased text on non-alphanumeric runes.
func tokenSet(body string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(body, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[tok] = true
	}
	return set
}
