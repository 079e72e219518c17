// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RawRecord is one post record as read from an archive file, before
// normalization. Only Body and Date are required; counters default to zero.
type RawRecord struct {
	// Body is the raw post text.
	Body string `json:"body" yaml:"body"`

	// Date is the publication date string (ISO-8601 or platform-native).
	Date string `json:"date" yaml:"date"`

	// Reactions is the reaction count.
	Reactions int `json:"reactions" yaml:"reactions"`

	// Comments is the comment count.
	Comments int `json:"comments" yaml:"comments"`

	// Shares is the share count.
	Shares int `json:"shares" yaml:"shares"`

	// Tags is the optional list of tags attached to the post.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Post is a normalized archive post. Posts are immutable once ingested;
// every downstream stage derives new collections rather than mutating them.
type Post struct {
	// ID is the zero-based ingestion-order index of the post. It is the
	// final tie-break for canonical selection and ranking.
	ID int `json:"id" yaml:"id"`

	// Date is the parsed publication date.
	Date time.Time `json:"date" yaml:"date"`

	// Body is the whitespace-normalized post text with hashtags and emoji
	// stripped out.
	Body string `json:"body" yaml:"body"`

	// Hashtags lists hashtag tokens found in the raw body, in order,
	// without the leading '#'.
	Hashtags []string `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`

	// Emoji lists emoji runes stripped from the raw body, in order.
	Emoji []string `json:"emoji,omitempty" yaml:"emoji,omitempty"`

	// Tags carries the record's explicit tag list.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Reactions, Comments, and Shares are the engagement counters.
	Reactions int `json:"reactions" yaml:"reactions"`
	Comments  int `json:"comments" yaml:"comments"`
	Shares    int `json:"shares" yaml:"shares"`

	// EngagementRate is (reactions + 2*comments + 3*shares) / baseline,
	// computed once at ingestion and never mutated.
	EngagementRate float64 `json:"engagement_rate" yaml:"engagement_rate"`
}
