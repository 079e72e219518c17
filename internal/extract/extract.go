// Package extract identifies belief and preference statements within post text.
package extract

import (
	"context"
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/postlens/pkg/types"
)

// Finding is one statement located in a text, before attribution to a post.
// Findings carry no post identity so oracle results can be cached per input
// text alone.
type Finding struct {
	Kind     types.StatementKind   `json:"kind" yaml:"kind"`
	Text     string                `json:"text" yaml:"text"`
	Pair     *types.PreferencePair `json:"pair,omitempty" yaml:"pair,omitempty"`
	Sentence string                `json:"sentence" yaml:"sentence"`
}

// Oracle abstracts the statement-finding capability so a rule-based matcher
// and a model-backed analyzer are interchangeable. Implementations must be
// deterministic for the pipeline's replay guarantees; non-deterministic
// backends get wrapped in a Cache to pin results per input.
type Oracle interface {
	Extract(ctx context.Context, text string) ([]Finding, error)
}

// beliefMarker matches belief-bearing sentence templates and captures the
// clause following the marker. Alternatives are ordered longest-first so the
// capture never retains a marker suffix.
var beliefMarker = regexp.MustCompile(`(?i)\b(?:i believe that|i believe|i think that|i think|i've learned that|i've learned|it's important to|the key is|the truth is)\s+(.+)$`)

// preferencePatterns are tried in order; the first match wins. The contrast
// form runs first because the generic "prefer X to Y" form would otherwise
// split its clauses at the wrong boundary.
var preferencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bprefer\s+([^,]+),\s*but\b.*?\bbetter to\s+(.+)$`),
	regexp.MustCompile(`(?i)\bprefer(?:s|red)?\s+(.+?)\s+(?:to|over)\s+(.+)$`),
	regexp.MustCompile(`(?i)(.+?)\s+is better than\s+(.+)$`),
	regexp.MustCompile(`(?i)(.+?)\s+rather than\s+(.+)$`),
	regexp.MustCompile(`(?i)(.+?)\s+over\s+(.+)$`),
}

// clauseLead strips subject framing from the front of a captured clause
// ("I believe", "I'd choose", ...) so the clause stands alone.
var clauseLead = regexp.MustCompile(`(?i)^(?:i\s+(?:truly\s+|honestly\s+)?(?:believe|think|feel)\s+(?:that\s+)?|i(?:'d| would| always)?\s+(?:like|choose|pick|take|want)\s+|personally,?\s+)`)

// RuleOracle is the deterministic pattern-matching Oracle.
type RuleOracle struct{}

// Extract segments text into sentences and scans each for belief markers
// and preference templates. A sentence with nested markers yields both a
// belief and a preference finding.
func (RuleOracle) Extract(_ context.Context, text string) ([]Finding, error) {
	var findings []Finding
	for _, sentence := range SplitSentences(text) {
		s := strings.ReplaceAll(sentence, "’", "'")

		if m := beliefMarker.FindStringSubmatch(s); m != nil {
			clause := trimClause(m[1])
			if clause != "" {
				findings = append(findings, Finding{
					Kind:     types.KindBelief,
					Text:     clause,
					Sentence: sentence,
				})
			}
		}

		for _, pat := range preferencePatterns {
			m := pat.FindStringSubmatch(s)
			if m == nil {
				continue
			}
			preferred := trimClause(stripLead(m[1]))
			over := trimClause(stripLead(m[2]))
			if preferred == "" || over == "" {
				break
			}
			findings = append(findings, Finding{
				Kind:     types.KindPreference,
				Text:     preferred + " over " + over,
				Pair:     &types.PreferencePair{Preferred: preferred, Over: over},
				Sentence: sentence,
			})
			break
		}
	}
	return findings, nil
}

// ExtractPost runs the oracle on one post and attributes the findings.
// Sentences that produced both a belief and a preference are recorded as
// ambiguous; both interpretations are kept.
func ExtractPost(ctx context.Context, oracle Oracle, post types.Post, diags *types.Diagnostics) ([]types.Statement, error) {
	findings, err := oracle.Extract(ctx, post.Body)
	if err != nil {
		return nil, fmt.Errorf("extracting post %d: %w", post.ID, err)
	}

	kinds := make(map[string]map[types.StatementKind]bool)
	statements := make([]types.Statement, 0, len(findings))
	for _, f := range findings {
		norm := NormalizeText(f.Text)
		statements = append(statements, types.Statement{
			ID:         stableID(post.ID, f.Kind, norm),
			Kind:       f.Kind,
			Text:       f.Text,
			Normalized: norm,
			PostID:     post.ID,
			Pair:       f.Pair,
		})
		if kinds[f.Sentence] == nil {
			kinds[f.Sentence] = make(map[types.StatementKind]bool)
		}
		kinds[f.Sentence][f.Kind] = true
	}

	if diags != nil {
		for _, f := range findings {
			if f.Kind == types.KindBelief && kinds[f.Sentence][types.KindPreference] {
				diags.Add(types.DiagExtractionAmbiguous,
					fmt.Sprintf("post %d: overlapping markers in %q", post.ID, f.Sentence))
			}
		}
	}

	return statements, nil
}

// SplitSentences breaks text at sentence-ending punctuation and newlines.
// The splitter is intentionally simple; it only needs to be deterministic.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	for _, r := range text {
		switch r {
		case '.', '!', '?':
			b.WriteRune(r)
			flush()
		case '\n':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return sentences
}

// NormalizeText lowercases a clause and collapses internal whitespace.
// Deduplication compares these forms.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// stableID derives a deterministic statement ID from the post ID, kind, and
// normalized clause: the first 12 hex characters of their SHA-256.
func stableID(postID int, kind types.StatementKind, normalized string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s", postID, kind, normalized)
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

func stripLead(s string) string {
	for {
		trimmed := clauseLead.ReplaceAllString(s, "")
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func trimClause(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,;:!?\"'")
}
