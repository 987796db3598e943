package classify

import (
	"context"
	"log"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"missionforge/internal/jsonutil"
	"missionforge/internal/llm"
)

// Domain is the closed set of mission domain tags.
type Domain string

const (
	DomainMarketing  Domain = "marketing"
	DomainSEO        Domain = "seo"
	DomainCode       Domain = "code"
	DomainDesign     Domain = "design"
	DomainResearch   Domain = "research"
	DomainDocuments  Domain = "documents"
	DomainData       Domain = "data"
	DomainAutomation Domain = "automation"
	DomainFinance    Domain = "finance"
	DomainGeneral    Domain = "general"
)

// Domains lists every valid domain tag.
var Domains = []Domain{
	DomainMarketing, DomainSEO, DomainCode, DomainDesign, DomainResearch,
	DomainDocuments, DomainData, DomainAutomation, DomainFinance, DomainGeneral,
}

// Complexity is a 5-level ordinal.
type Complexity int

const (
	Trivial Complexity = iota
	Simple
	Moderate
	Complex
	Revolutionary
)

func (c Complexity) String() string {
	switch c {
	case Trivial:
		return "trivial"
	case Simple:
		return "simple"
	case Moderate:
		return "moderate"
	case Complex:
		return "complex"
	case Revolutionary:
		return "revolutionary"
	}
	return "unknown"
}

// ParseComplexity maps a label to its ordinal; unknown labels map to Moderate.
func ParseComplexity(s string) Complexity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trivial":
		return Trivial
	case "simple":
		return Simple
	case "moderate":
		return Moderate
	case "complex":
		return Complex
	case "revolutionary":
		return Revolutionary
	}
	return Moderate
}

// Classification is the structured understanding of a free-text mission.
type Classification struct {
	Intent          string     `json:"intent"`
	Domain          Domain     `json:"domain"`
	Entities        []string   `json:"entities,omitempty"`
	Constraints     []string   `json:"constraints,omitempty"`
	SuccessCriteria []string   `json:"success_criteria,omitempty"`
	Complexity      Complexity `json:"-"`
	Confidence      float64    `json:"confidence"`
}

const promptClassify = `You are classifying a user mission for an agent orchestrator.

Return STRICT JSON:
{
  "intent":           "string",   // one short sentence
  "domain":           "string",   // one of: marketing, seo, code, design, research, documents, data, automation, finance, general
  "entities":         ["string"],
  "constraints":      ["string"],
  "success_criteria": ["string"],
  "complexity":       "string",   // one of: trivial, simple, moderate, complex, revolutionary
  "confidence":       0.0
}

Rules:
- JSON only; no comments or trailing commas.
- Pick "general" when no other domain clearly applies.
- Keep lists short and concrete.`

// Classifier turns mission text into a Classification. Generation failures
// never surface: the keyword heuristic answers instead.
type Classifier struct {
	llm   llm.Client
	cache *lru.Cache[string, Classification]
}

func NewClassifier(cli llm.Client) *Classifier {
	cache, _ := lru.New[string, Classification](512)
	return &Classifier{llm: cli, cache: cache}
}

// Classify never fails the mission. LLM output is validated strictly; any
// failure falls back to Heuristic.
func (c *Classifier) Classify(ctx context.Context, missionText string) Classification {
	if c.cache != nil {
		if cached, ok := c.cache.Get(missionText); ok {
			return cached
		}
	}
	out, err := c.classifyLLM(ctx, missionText)
	if err != nil {
		// Heuristic answers are low confidence; caching one would pin it
		// past the outage that produced it.
		log.Printf("classify: generation failed, using heuristic: %v", err)
		return Heuristic(missionText)
	}
	if c.cache != nil {
		c.cache.Add(missionText, out)
	}
	return out
}

func (c *Classifier) classifyLLM(ctx context.Context, missionText string) (Classification, error) {
	var zero Classification
	if c.llm == nil {
		return zero, llm.ErrInvalidJSON
	}
	raw, err := c.llm.GenerateJSON(ctx, promptClassify, map[string]any{"mission": missionText})
	if err != nil {
		return zero, err
	}
	var wire struct {
		Intent          string   `json:"intent"`
		Domain          string   `json:"domain"`
		Entities        []string `json:"entities"`
		Constraints     []string `json:"constraints"`
		SuccessCriteria []string `json:"success_criteria"`
		Complexity      string   `json:"complexity"`
		Confidence      float64  `json:"confidence"`
	}
	if err := jsonutil.UnmarshalLoose(raw, &wire); err != nil {
		return zero, err
	}
	dom, ok := parseDomain(wire.Domain)
	if !ok || wire.Intent == "" {
		return zero, llm.ErrInvalidJSON
	}
	return Classification{
		Intent:          wire.Intent,
		Domain:          dom,
		Entities:        wire.Entities,
		Constraints:     wire.Constraints,
		SuccessCriteria: wire.SuccessCriteria,
		Complexity:      ParseComplexity(wire.Complexity),
		Confidence:      clamp01(wire.Confidence),
	}, nil
}

func parseDomain(s string) (Domain, bool) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Domains {
		if d == known {
			return d, true
		}
	}
	return "", false
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// domainKeywords drive the deterministic fallback. Substring checks against
// the lowercased mission text, first hit wins in declaration order.
var domainKeywords = []struct {
	domain Domain
	words  []string
}{
	{DomainSEO, []string{"seo", "search ranking", "keyword", "backlink"}},
	{DomainMarketing, []string{"marketing", "campaign", "ad copy", "landing page", "social media"}},
	{DomainCode, []string{"code", "bug", "refactor", "api", "function", "deploy"}},
	{DomainDesign, []string{"design", "logo", "mockup", "visual", "banner"}},
	{DomainResearch, []string{"research", "investigate", "compare", "analyz", "summar"}},
	{DomainDocuments, []string{"document", "pdf", "report", "slide", "spreadsheet"}},
	{DomainData, []string{"data", "csv", "dataset", "dashboard", "metric"}},
	{DomainAutomation, []string{"automate", "workflow", "schedule", "scrape", "browser"}},
	{DomainFinance, []string{"invoice", "budget", "finance", "revenue", "pricing"}},
}

// Heuristic is the deterministic keyword classifier used when generation is
// unavailable or malformed.
func Heuristic(missionText string) Classification {
	lower := strings.ToLower(missionText)
	domain := DomainGeneral
	for _, dk := range domainKeywords {
		for _, w := range dk.words {
			if strings.Contains(lower, w) {
				domain = dk.domain
				break
			}
		}
		if domain != DomainGeneral {
			break
		}
	}

	complexity := Simple
	words := len(strings.Fields(missionText))
	switch {
	case words > 60:
		complexity = Complex
	case words > 25:
		complexity = Moderate
	}
	for _, marker := range []string{"end-to-end", "entire", "from scratch", "multi-step", "everything"} {
		if strings.Contains(lower, marker) {
			complexity = Complex
			break
		}
	}

	return Classification{
		Intent:     firstSentence(missionText),
		Domain:     domain,
		Complexity: complexity,
		Confidence: 0.3,
	}
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?\n"); i > 0 {
		return s[:i]
	}
	if len(s) > 120 {
		return s[:120]
	}
	return s
}
