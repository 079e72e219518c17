// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// WeightedKeyword is one scoring term in a bucket definition. Phrase terms
// (containing spaces) are matched as substrings of the normalized body;
// single words are matched against the token set.
type WeightedKeyword struct {
	Term   string  `json:"term" yaml:"term"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Bucket defines one category in the closed set. Buckets are configuration,
// not code: the classifier iterates whatever set it is given, in declaration
// order.
type Bucket struct {
	// Name is the bucket identifier used for output file names
	// (e.g. "career_insights").
	Name string `json:"name" yaml:"name"`

	// Title is the human-readable heading used in reports.
	Title string `json:"title" yaml:"title"`

	// Keywords are the weighted scoring terms for this bucket.
	Keywords []WeightedKeyword `json:"keywords" yaml:"keywords"`

	// MinEngagementRate, when positive, additionally admits any post whose
	// engagement rate meets it, regardless of keyword score. Used by the
	// engagement_winners bucket.
	MinEngagementRate float64 `json:"min_engagement_rate,omitempty" yaml:"min_engagement_rate,omitempty"`

	// Fallback marks the bucket that collects posts matching nothing else.
	// Exactly one bucket in a valid set is the fallback.
	Fallback bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// Membership records which buckets a post belongs to, with per-bucket
// scores. Buckets appear in declaration order.
type Membership struct {
	// PostID identifies the classified post.
	PostID int `json:"post_id" yaml:"post_id"`

	// Buckets lists the names of every bucket the post was assigned to.
	Buckets []string `json:"buckets" yaml:"buckets"`

	// Scores holds the raw keyword score per assigned bucket, parallel to
	// Buckets.
	Scores []float64 `json:"scores" yaml:"scores"`

	// Top is the single best bucket, used for single-bucket summaries.
	// Ties break by highest score, then declaration order.
	Top string `json:"top" yaml:"top"`
}

// DefaultBuckets returns the built-in category set. Callers may replace it
// wholesale with a YAML bucket file; the classifier treats both the same way.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{
			Name:  "career_insights",
			Title: "Career Insights",
			Keywords: []WeightedKeyword{
				{Term: "career", Weight: 2}, {Term: "job", Weight: 1.5},
				{Term: "promotion", Weight: 2}, {Term: "interview", Weight: 1.5},
				{Term: "salary", Weight: 1.5}, {Term: "hiring", Weight: 1.5},
				{Term: "resume", Weight: 1.5}, {Term: "growth", Weight: 1},
				{Term: "mentor", Weight: 1.5},
			},
		},
		{
			Name:              "engagement_winners",
			Title:             "Engagement Winners",
			MinEngagementRate: 25,
		},
		{
			Name:  "management_philosophy",
			Title: "Management Philosophy",
			Keywords: []WeightedKeyword{
				{Term: "manager", Weight: 2}, {Term: "management", Weight: 2},
				{Term: "leadership", Weight: 2}, {Term: "team", Weight: 1},
				{Term: "delegate", Weight: 1.5}, {Term: "one on one", Weight: 2},
				{Term: "report", Weight: 0.5}, {Term: "feedback", Weight: 1},
			},
		},
		{
			Name:  "technical_beliefs",
			Title: "Technical Beliefs",
			Keywords: []WeightedKeyword{
				{Term: "code", Weight: 1}, {Term: "software", Weight: 1},
				{Term: "engineering", Weight: 1}, {Term: "technical", Weight: 1.5},
				{Term: "scalability", Weight: 1.5}, {Term: "performance", Weight: 1},
				{Term: "testing", Weight: 1}, {Term: "debt", Weight: 1.5},
			},
		},
		{
			Name:  "learning_approaches",
			Title: "Learning Approaches",
			Keywords: []WeightedKeyword{
				{Term: "learn", Weight: 2}, {Term: "learning", Weight: 2},
				{Term: "study", Weight: 1.5}, {Term: "course", Weight: 1},
				{Term: "practice", Weight: 1}, {Term: "book", Weight: 1},
				{Term: "teach", Weight: 1.5},
			},
		},
		{
			Name:  "architecture_opinions",
			Title: "Architecture Opinions",
			Keywords: []WeightedKeyword{
				{Term: "architecture", Weight: 2}, {Term: "microservices", Weight: 2},
				{Term: "monolith", Weight: 2}, {Term: "monoliths", Weight: 2},
				{Term: "distributed", Weight: 1.5}, {Term: "design", Weight: 1},
				{Term: "system", Weight: 0.5}, {Term: "api", Weight: 1},
			},
		},
		{
			Name:  "development_practices",
			Title: "Development Practices",
			Keywords: []WeightedKeyword{
				{Term: "review", Weight: 1.5}, {Term: "deploy", Weight: 1.5},
				{Term: "ci", Weight: 1}, {Term: "pair programming", Weight: 2},
				{Term: "refactor", Weight: 1.5}, {Term: "agile", Weight: 1.5},
				{Term: "standup", Weight: 1.5}, {Term: "sprint", Weight: 1.5},
			},
		},
		{
			Name:  "personal_stories",
			Title: "Personal Stories",
			Keywords: []WeightedKeyword{
				{Term: "i remember", Weight: 2}, {Term: "years ago", Weight: 2},
				{Term: "my first", Weight: 2}, {Term: "when i started", Weight: 2},
				{Term: "story", Weight: 1.5}, {Term: "failed", Weight: 1},
				{Term: "mistake", Weight: 1.5},
			},
		},
		{
			Name:  "controversial_takes",
			Title: "Controversial Takes",
			Keywords: []WeightedKeyword{
				{Term: "unpopular opinion", Weight: 3}, {Term: "hot take", Weight: 3},
				{Term: "controversial", Weight: 2.5}, {Term: "nobody wants to hear", Weight: 2.5},
				{Term: "wrong", Weight: 1}, {Term: "overrated", Weight: 2},
			},
		},
		{
			Name:  "tool_preferences",
			Title: "Tool Preferences",
			Keywords: []WeightedKeyword{
				{Term: "tool", Weight: 1.5}, {Term: "editor", Weight: 1.5},
				{Term: "ide", Weight: 1.5}, {Term: "vim", Weight: 1.5},
				{Term: "vscode", Weight: 1.5}, {Term: "framework", Weight: 1},
				{Term: "library", Weight: 1}, {Term: "terminal", Weight: 1.5},
			},
		},
		{
			Name:     "general_insights",
			Title:    "General Insights",
			Fallback: true,
		},
	}
}
