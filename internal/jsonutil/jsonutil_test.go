package jsonutil

import "testing"

func TestStripFencesPlain(t *testing.T) {
	out := StripFences([]byte("  {\"a\":1}  "))
	if string(out) != `{"a":1}` {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestStripFencesWithLanguageTag(t *testing.T) {
	raw := "Here you go:\n```json\n{\"a\": 1}\n```\nanything after"
	out := StripFences([]byte(raw))
	if string(out) != `{"a": 1}` {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestUnmarshalLooseDirect(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	if err := UnmarshalLoose([]byte(`{"a":2}`), &v); err != nil {
		t.Fatalf("UnmarshalLoose() error = %v", err)
	}
	if v.A != 2 {
		t.Fatalf("a = %d, want 2", v.A)
	}
}

func TestUnmarshalLooseEmbeddedObject(t *testing.T) {
	var v struct {
		Tool string `json:"tool"`
	}
	raw := []byte("The answer is {\"tool\": \"doc_convert\"} as requested.")
	if err := UnmarshalLoose(raw, &v); err != nil {
		t.Fatalf("UnmarshalLoose() error = %v", err)
	}
	if v.Tool != "doc_convert" {
		t.Fatalf("tool = %q", v.Tool)
	}
}

func TestUnmarshalLooseGarbage(t *testing.T) {
	var v map[string]any
	if err := UnmarshalLoose([]byte("no json here at all"), &v); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}
