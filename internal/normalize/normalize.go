// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize parses raw archive records into canonical Post entities.
package normalize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/postlens/pkg/types"
)

// dateLayouts are tried in order when parsing a record's date string.
// ISO-8601 variants first, then platform-native formats seen in archives.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
}

// LoadRecords reads raw post records from a YAML or JSON file, or from
// every .yaml/.yml/.json file in a directory (lexical order, so repeated
// runs see the same record order).
func LoadRecords(path string) ([]types.RawRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", path, err)
	}

	if !info.IsDir() {
		return loadRecordFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", path, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".json":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var records []types.RawRecord
	for _, name := range names {
		recs, err := loadRecordFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func loadRecordFile(path string) ([]types.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []types.RawRecord
	if filepath.Ext(path) == ".json" {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return records, nil
	}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// Normalize converts raw records into Posts in ingestion order. Records with
// a missing or unparsable date or body are skipped and recorded in diags;
// the run continues. Post IDs are assigned from the surviving order.
func Normalize(records []types.RawRecord, cfg types.NormalizeConfig, diags *types.Diagnostics) []types.Post {
	baseline := cfg.Baseline
	if baseline <= 0 {
		baseline = 1
	}

	posts := make([]types.Post, 0, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Body) == "" {
			diags.Add(types.DiagMalformedRecord, fmt.Sprintf("record %d: empty body", i))
			continue
		}
		date, err := parseDate(rec.Date)
		if err != nil {
			diags.Add(types.DiagMalformedRecord, fmt.Sprintf("record %d: %v", i, err))
			continue
		}

		body, hashtags, emoji := cleanBody(rec.Body)

		posts = append(posts, types.Post{
			ID:             len(posts),
			Date:           date,
			Body:           body,
			Hashtags:       hashtags,
			Emoji:          emoji,
			Tags:           rec.Tags,
			Reactions:      rec.Reactions,
			Comments:       rec.Comments,
			Shares:         rec.Shares,
			EngagementRate: EngagementRate(rec.Reactions, rec.Comments, rec.Shares, baseline),
		})
	}
	return posts
}

// EngagementRate is the weighted engagement score:
// (reactions + 2*comments + 3*shares) / baseline.
func EngagementRate(reactions, comments, shares int, baseline float64) float64 {
	return float64(reactions+2*comments+3*shares) / baseline
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// cleanBody normalizes whitespace and strips hashtag tokens and emoji from
// the body, returning them separately in order of appearance.
func cleanBody(raw string) (body string, hashtags, emoji []string) {
	var kept []string
	for _, field := range strings.Fields(raw) {
		if strings.HasPrefix(field, "#") && len(field) > 1 {
			hashtags = append(hashtags, strings.TrimLeft(field, "#"))
			continue
		}

		var b strings.Builder
		for _, r := range field {
			if isEmoji(r) {
				emoji = append(emoji, string(r))
				continue
			}
			b.WriteRune(r)
		}
		if b.Len() > 0 {
			kept = append(kept, b.String())
		}
	}
	return strings.Join(kept, " "), hashtags, emoji
}

// isEmoji reports whether the rune falls in the common emoji blocks.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // pictographs, transport, supplemental
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r == 0xFE0F || r == 0x200D: // variation selector, ZWJ
		return true
	case unicode.Is(unicode.So, r) && r > 0x2000:
		return true
	}
	return false
}
