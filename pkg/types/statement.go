// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StatementKind categorizes an extracted statement.
type StatementKind string

const (
	KindBelief     StatementKind = "belief"
	KindPreference StatementKind = "preference"
)

// PreferencePair is the (preferred, over) clause pair captured from a
// comparative sentence.
type PreferencePair struct {
	// Preferred is the favored clause.
	Preferred string `json:"preferred" yaml:"preferred"`

	// Over is the disfavored clause.
	Over string `json:"over" yaml:"over"`
}

// Statement is a belief or preference clause extracted from a Post's body.
type Statement struct {
	// ID is a stable identifier derived from the post ID, kind, and
	// normalized text, consistent across re-runs on unchanged input.
	ID string `json:"id" yaml:"id"`

	// Kind is belief or preference.
	Kind StatementKind `json:"kind" yaml:"kind"`

	// Text is the captured clause as it appears in the sentence, trimmed
	// of the marker and trailing punctuation.
	Text string `json:"text" yaml:"text"`

	// Normalized is the lowercased, whitespace-collapsed form of Text used
	// for deduplication.
	Normalized string `json:"normalized" yaml:"normalized"`

	// PostID is the ingestion-order ID of the originating Post.
	PostID int `json:"post_id" yaml:"post_id"`

	// Pair holds the (preferred, over) clauses for preference statements.
	// Nil for beliefs.
	Pair *PreferencePair `json:"pair,omitempty" yaml:"pair,omitempty"`
}

// DedupGroup is a cluster of near-duplicate Statements of the same kind.
// Exactly one member is canonical.
type DedupGroup struct {
	// Canonical is the index into Members of the chosen representative.
	Canonical int `json:"canonical" yaml:"canonical"`

	// Members holds the grouped statements in ingestion order.
	Members []Statement `json:"members" yaml:"members"`
}

// Representative returns the canonical member.
func (g DedupGroup) Representative() Statement {
	return g.Members[g.Canonical]
}

// RankedEntry is one row of a ranked view. Entries are read-only and
// ordered by descending score.
type RankedEntry struct {
	// PostID identifies the ranked post.
	PostID int `json:"post_id" yaml:"post_id"`

	// Score is the post's engagement rate at ranking time.
	Score float64 `json:"score" yaml:"score"`

	// Rank is the 1-based position within the view.
	Rank int `json:"rank" yaml:"rank"`
}
