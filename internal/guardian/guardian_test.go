package guardian

import (
	"reflect"
	"testing"

	"github.com/outcrop-ai/pipeline-governor/internal/run"
)

func TestEvaluateApproves(t *testing.T) {
	g := NewGuardian(DefaultConfig())
	res := g.Evaluate(run.Result{QualityScore: 7.5, DurationMs: 1200, Reasoning: "drafted"})

	if !res.OK || res.Vetoed {
		t.Fatalf("expected approval, got ok=%v vetoed=%v", res.OK, res.Vetoed)
	}
	if len(res.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", res.Issues)
	}
	if res.Reasoning != "drafted | Guardian approved result." {
		t.Fatalf("unexpected reasoning: %q", res.Reasoning)
	}
}

func TestEvaluateQualityBreach(t *testing.T) {
	g := NewGuardian(DefaultConfig())
	res := g.Evaluate(run.Result{QualityScore: 4, DurationMs: 1000})

	if res.OK || !res.Vetoed {
		t.Fatalf("expected veto, got ok=%v vetoed=%v", res.OK, res.Vetoed)
	}
	want := []string{"qualityScore 4 < 5"}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Fatalf("issues = %v, want %v", res.Issues, want)
	}
	if res.Reasoning != " | Guardian vetoed result." {
		t.Fatalf("unexpected reasoning: %q", res.Reasoning)
	}
}

func TestEvaluateDurationBreach(t *testing.T) {
	g := NewGuardian(DefaultConfig())
	res := g.Evaluate(run.Result{QualityScore: 8, DurationMs: 45000})

	want := []string{"duration 45000ms > 30000ms"}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Fatalf("issues = %v, want %v", res.Issues, want)
	}
	if !res.Vetoed {
		t.Fatal("expected veto on duration breach")
	}
}

func TestEvaluateBothBreachesQualityFirst(t *testing.T) {
	g := NewGuardian(DefaultConfig())
	res := g.Evaluate(run.Result{QualityScore: 2.5, DurationMs: 60000})

	want := []string{"qualityScore 2.5 < 5", "duration 60000ms > 30000ms"}
	if !reflect.DeepEqual(res.Issues, want) {
		t.Fatalf("issues = %v, want %v", res.Issues, want)
	}
}

func TestEvaluateBoundaryValues(t *testing.T) {
	g := NewGuardian(DefaultConfig())

	// Exactly at the floors: no breach.
	res := g.Evaluate(run.Result{QualityScore: 5.0, DurationMs: 30000})
	if !res.OK {
		t.Fatalf("boundary values must pass, got issues %v", res.Issues)
	}
}

func TestEvaluatePassesThroughFields(t *testing.T) {
	g := NewGuardian(DefaultConfig())
	in := run.Result{
		ID:           "r-42",
		Content:      "generated text",
		QualityScore: 9.1,
		DurationMs:   800,
		Reasoning:    "two passes",
	}
	res := g.Evaluate(in)

	if res.ID != in.ID || res.Content != in.Content ||
		res.QualityScore != in.QualityScore || res.DurationMs != in.DurationMs {
		t.Fatalf("input fields must pass through unchanged: %+v", res.Result)
	}
}

func TestEvaluateOkVetoedInvariant(t *testing.T) {
	g := NewGuardian(DefaultConfig())
	cases := []run.Result{
		{QualityScore: 0, DurationMs: 0},
		{QualityScore: 10, DurationMs: 0},
		{QualityScore: 10, DurationMs: 100000},
		{QualityScore: 5, DurationMs: 30000},
		{QualityScore: 4.99, DurationMs: 30001},
	}
	for _, in := range cases {
		res := g.Evaluate(in)
		breach := in.QualityScore < 5 || in.DurationMs > 30000
		if res.OK != !breach {
			t.Errorf("ok invariant violated for %+v: ok=%v", in, res.OK)
		}
		if res.Vetoed != !res.OK {
			t.Errorf("vetoed must be the negation of ok for %+v", in)
		}
	}
}
