package classify

import (
	"context"
	"errors"
	"testing"

	"missionforge/internal/llm"
)

func TestClassifyUsesLLMWhenValid(t *testing.T) {
	fake := llm.NewFakeClient().Script("classifying", map[string]any{
		"intent":     "audit the site for search ranking issues",
		"domain":     "seo",
		"complexity": "complex",
		"confidence": 0.9,
	})
	c := NewClassifier(fake)

	got := c.Classify(context.Background(), "please audit example.com")
	if got.Domain != DomainSEO {
		t.Fatalf("domain = %s, want seo", got.Domain)
	}
	if got.Complexity != Complex {
		t.Fatalf("complexity = %s, want complex", got.Complexity)
	}
}

func TestClassifyFallsBackOnGenerationError(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Err = errors.New("boom")
	c := NewClassifier(fake)

	got := c.Classify(context.Background(), "run an seo keyword audit for my shop")
	if got.Domain != DomainSEO {
		t.Fatalf("heuristic domain = %s, want seo", got.Domain)
	}
	if got.Intent == "" {
		t.Fatal("heuristic must always produce an intent")
	}
}

func TestClassifyFallsBackOnMalformedJSON(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Default = []byte("```\nnot json\n```")
	c := NewClassifier(fake)

	got := c.Classify(context.Background(), "write marketing ad copy for launch")
	if got.Domain != DomainMarketing {
		t.Fatalf("domain = %s, want marketing", got.Domain)
	}
}

func TestClassifyRejectsUnknownDomain(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Default = []byte(`{"intent":"x","domain":"astrology","complexity":"simple"}`)
	c := NewClassifier(fake)

	got := c.Classify(context.Background(), "automate my browser workflow")
	if got.Domain != DomainAutomation {
		t.Fatalf("domain = %s, want automation fallback", got.Domain)
	}
}

func TestClassifyCachesByMissionText(t *testing.T) {
	fake := llm.NewFakeClient().Script("classifying", map[string]any{
		"intent": "x", "domain": "code", "complexity": "simple", "confidence": 0.5,
	})
	c := NewClassifier(fake)

	_ = c.Classify(context.Background(), "fix the api bug")
	_ = c.Classify(context.Background(), "fix the api bug")
	if len(fake.Calls) != 1 {
		t.Fatalf("LLM called %d times, want 1 (cache miss then hit)", len(fake.Calls))
	}
}

func TestClassifyDoesNotCacheHeuristicFallback(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Err = errors.New("model offline")
	c := NewClassifier(fake)

	first := c.Classify(context.Background(), "run an seo keyword audit")
	if first.Confidence >= 0.5 {
		t.Fatalf("fallback confidence = %v, want a heuristic answer", first.Confidence)
	}

	fake.Err = nil
	fake.Script("classifying", map[string]any{
		"intent": "audit keywords", "domain": "seo", "complexity": "moderate", "confidence": 0.9,
	})
	second := c.Classify(context.Background(), "run an seo keyword audit")
	if len(fake.Calls) != 2 {
		t.Fatalf("LLM called %d times, want 2 (fallback must not pin the cache)", len(fake.Calls))
	}
	if second.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want the recovered generation, not the cached fallback", second.Confidence)
	}
}

func TestHeuristicComplexityMarkers(t *testing.T) {
	got := Heuristic("build the entire pipeline from scratch")
	if got.Complexity != Complex {
		t.Fatalf("complexity = %s, want complex", got.Complexity)
	}
}
