package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	body := `agents:
  - name: translator
    description: translates marketing copy
    capabilities: [marketing, documents]
    prompt: |
      You translate copy into the requested locale.
skills:
  - agent: translator
    name: glossary_lookup
    description: looks up approved terminology
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(r.Agents) != 1 || r.Agents[0].Name != "translator" {
		t.Fatalf("agents = %+v", r.Agents)
	}
	if len(r.Agents[0].Capabilities) != 2 {
		t.Fatalf("capabilities = %v", r.Agents[0].Capabilities)
	}
	if len(r.Skills) != 1 || r.Skills[0].Agent != "translator" {
		t.Fatalf("skills = %+v", r.Skills)
	}
}

func TestLoadRosterRejectsBadEntries(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"missing_name":   "agents:\n  - description: anonymous\n    prompt: hi\n",
		"missing_prompt": "agents:\n  - name: mute\n",
		"missing_skill":  "skills:\n  - description: floating\n",
		"not_yaml":       "{{{",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadRoster(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadRosterMissingFile(t *testing.T) {
	if _, err := LoadRoster(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Fatalf("got %q", got)
	}
	if got := firstNonEmpty("", "  "); got != "" {
		t.Fatalf("got %q", got)
	}
}
