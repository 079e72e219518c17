package extract

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/pdiddy/postlens/pkg/types"
)

func findings(t *testing.T, text string) []Finding {
	t.Helper()
	got, err := RuleOracle{}.Extract(context.Background(), text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return got
}

func TestBeliefMarkers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "i believe",
			text: "I believe consistency beats intensity.",
			want: "consistency beats intensity",
		},
		{
			name: "i think that",
			text: "Honestly, I think that code review is a teaching tool.",
			want: "code review is a teaching tool",
		},
		{
			name: "the key is",
			text: "The key is to build with scalability in mind from the outset.",
			want: "to build with scalability in mind from the outset",
		},
		{
			name: "its important to",
			text: "It's important to write things down.",
			want: "write things down",
		},
		{
			name: "ive learned",
			text: "After ten years I've learned that titles matter less than scope.",
			want: "titles matter less than scope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findings(t, tt.text)
			if len(got) != 1 {
				t.Fatalf("got %d findings, want 1: %+v", len(got), got)
			}
			if got[0].Kind != types.KindBelief {
				t.Errorf("kind = %s, want belief", got[0].Kind)
			}
			if got[0].Text != tt.want {
				t.Errorf("text = %q, want %q", got[0].Text, tt.want)
			}
		})
	}
}

func TestPreferencePatterns(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		preferred     string
		over          string
	}{
		{
			name:      "prefer to",
			text:      "I prefer boring technology to shiny new frameworks.",
			preferred: "boring technology",
			over:      "shiny new frameworks",
		},
		{
			name:      "prefer over",
			text:      "We prefer composition over inheritance.",
			preferred: "composition",
			over:      "inheritance",
		},
		{
			name:      "rather than",
			text:      "Ship small changes rather than big-bang releases.",
			preferred: "Ship small changes",
			over:      "big-bang releases",
		},
		{
			name:      "over",
			text:      "Tabs over spaces, always.",
			preferred: "Tabs",
			over:      "spaces, always",
		},
		{
			name:      "contrast clause boundaries",
			text:      "I prefer modular monoliths, but at times it might be better to switch to microservices",
			preferred: "modular monoliths",
			over:      "switch to microservices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findings(t, tt.text)
			if len(got) != 1 {
				t.Fatalf("got %d findings, want 1: %+v", len(got), got)
			}
			f := got[0]
			if f.Kind != types.KindPreference || f.Pair == nil {
				t.Fatalf("not a preference finding: %+v", f)
			}
			if f.Pair.Preferred != tt.preferred {
				t.Errorf("preferred = %q, want %q", f.Pair.Preferred, tt.preferred)
			}
			if f.Pair.Over != tt.over {
				t.Errorf("over = %q, want %q", f.Pair.Over, tt.over)
			}
		})
	}
}

func TestNestedMarkersYieldBoth(t *testing.T) {
	got := findings(t, "I believe pairing is better than solo debugging.")

	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(got), got)
	}
	if got[0].Kind != types.KindBelief || got[1].Kind != types.KindPreference {
		t.Fatalf("kinds = %s, %s", got[0].Kind, got[1].Kind)
	}
	if got[0].Text != "pairing is better than solo debugging" {
		t.Errorf("belief text = %q", got[0].Text)
	}
	if got[1].Pair.Preferred != "pairing" || got[1].Pair.Over != "solo debugging" {
		t.Errorf("pair = %+v", got[1].Pair)
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "I think remote work rewards writers. I prefer async updates to standing meetings.\nThe key is trust."

	first := findings(t, text)
	for i := 0; i < 10; i++ {
		if again := findings(t, text); !reflect.DeepEqual(first, again) {
			t.Fatalf("non-deterministic extraction:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"periods", "One. Two. Three.", []string{"One.", "Two.", "Three."}},
		{"mixed punctuation", "Really? Yes! Fine.", []string{"Really?", "Yes!", "Fine."}},
		{"newlines", "line one\nline two", []string{"line one", "line two"}},
		{"trailing fragment", "Done. almost", []string{"Done.", "almost"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitSentences(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractPost(t *testing.T) {
	post := types.Post{
		ID:   7,
		Body: "I believe pairing is better than solo debugging. Unrelated sentence.",
	}

	var diags types.Diagnostics
	statements, err := ExtractPost(context.Background(), RuleOracle{}, post, &diags)
	if err != nil {
		t.Fatalf("ExtractPost: %v", err)
	}

	if len(statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(statements))
	}
	for _, st := range statements {
		if st.PostID != 7 {
			t.Errorf("PostID = %d, want 7", st.PostID)
		}
		if st.ID == "" || len(st.ID) != 12 {
			t.Errorf("ID = %q, want 12 hex chars", st.ID)
		}
		if st.Normalized != NormalizeText(st.Text) {
			t.Errorf("Normalized = %q, want %q", st.Normalized, NormalizeText(st.Text))
		}
	}
	if diags.AmbiguousExtractions != 1 {
		t.Errorf("AmbiguousExtractions = %d, want 1", diags.AmbiguousExtractions)
	}
}

type failingOracle struct{}

func (failingOracle) Extract(context.Context, string) ([]Finding, error) {
	return nil, fmt.Errorf("oracle unavailable")
}

func TestExtractPostOracleError(t *testing.T) {
	_, err := ExtractPost(context.Background(), failingOracle{}, types.Post{ID: 1, Body: "x"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}
