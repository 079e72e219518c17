package types

// NormalizeConfig holds settings for the normalization stage.
type NormalizeConfig struct {
	// Baseline is the audience-size constant dividing the weighted
	// engagement score. Default 1, which yields the raw weighted score.
	Baseline float64 `json:"baseline" yaml:"baseline"`
}

// ClassifyConfig holds settings for the classification stage.
type ClassifyConfig struct {
	// Buckets is the closed category set, in declaration order.
	Buckets []Bucket `json:"buckets" yaml:"buckets"`

	// MinScore is the keyword score a post must reach to join a bucket
	// (default 1.0).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// TagBoost is added to a bucket's score when an explicit tag names the
	// bucket topic (default 2.0).
	TagBoost float64 `json:"tag_boost" yaml:"tag_boost"`
}

// DedupConfig holds settings for the deduplication stage.
type DedupConfig struct {
	// Threshold is the minimum Jaccard token-set similarity for two
	// statements to merge (default 0.8).
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// RankConfig holds settings for the ranking stage.
type RankConfig struct {
	// TopN truncates per-category and global ranked views (default 10;
	// 0 means no truncation).
	TopN int `json:"top_n" yaml:"top_n"`
}

// ReportConfig holds settings for the report emission stage.
type ReportConfig struct {
	// OutputDir is the directory receiving the markdown artifacts.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// GeneratedAt is the caller-supplied timestamp stamped once into each
	// artifact. Supplied externally so output stays byte-deterministic.
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`

	// MaxWriteRetries bounds retries of a failed artifact write (default 3).
	MaxWriteRetries int `json:"max_write_retries" yaml:"max_write_retries"`

	// ExcerptLen truncates post bodies in per-bucket reports (default 280;
	// 0 means no truncation).
	ExcerptLen int `json:"excerpt_len" yaml:"excerpt_len"`
}

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	// CachePath is the optional SQLite file pinning oracle results per
	// input text. Empty disables the persistent cache.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty"`

	// Workers sizes the extraction/classification worker pool (default
	// runtime.NumCPU, capped at the post count).
	Workers int `json:"workers" yaml:"workers"`
}

// PipelineConfig groups all stage configurations for an analysis run.
type PipelineConfig struct {
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize"`
	Extract   ExtractConfig   `json:"extract" yaml:"extract"`
	Classify  ClassifyConfig  `json:"classify" yaml:"classify"`
	Dedup     DedupConfig     `json:"dedup" yaml:"dedup"`
	Rank      RankConfig      `json:"rank" yaml:"rank"`
	Report    ReportConfig    `json:"report" yaml:"report"`
}
