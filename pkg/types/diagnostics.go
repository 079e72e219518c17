// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Diagnostic is one recoverable problem observed during a run.
type Diagnostic struct {
	// Class is the problem category: malformed_record, unclassifiable_post,
	// or extraction_ambiguous.
	Class string `json:"class" yaml:"class"`

	// Detail describes the problem (record index, post ID, sentence).
	Detail string `json:"detail" yaml:"detail"`
}

// Diagnostic class names.
const (
	DiagMalformedRecord     = "malformed_record"
	DiagUnclassifiablePost  = "unclassifiable_post"
	DiagExtractionAmbiguous = "extraction_ambiguous"
)

// Diagnostics is the run-level report of recoverable problems. Fatal errors
// abort the run and never appear here.
type Diagnostics struct {
	// RunID is a ULID identifying this analysis run in audit output.
	RunID string `json:"run_id" yaml:"run_id"`

	// SkippedRecords counts raw records dropped as malformed.
	SkippedRecords int `json:"skipped_records" yaml:"skipped_records"`

	// UnclassifiablePosts counts posts routed to the fallback bucket.
	UnclassifiablePosts int `json:"unclassifiable_posts" yaml:"unclassifiable_posts"`

	// AmbiguousExtractions counts sentences where overlapping markers
	// produced both a belief and a preference.
	AmbiguousExtractions int `json:"ambiguous_extractions" yaml:"ambiguous_extractions"`

	// Problems lists the individual diagnostics in occurrence order.
	Problems []Diagnostic `json:"problems,omitempty" yaml:"problems,omitempty"`
}

// Add appends a diagnostic and bumps the matching counter.
func (d *Diagnostics) Add(class, detail string) {
	switch class {
	case DiagMalformedRecord:
		d.SkippedRecords++
	case DiagUnclassifiablePost:
		d.UnclassifiablePosts++
	case DiagExtractionAmbiguous:
		d.AmbiguousExtractions++
	}
	d.Problems = append(d.Problems, Diagnostic{Class: class, Detail: detail})
}
