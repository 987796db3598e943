package evolve

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"missionforge/internal/classify"
)

// Solution records which capabilities answered a mission, split between
// pre-existing and synthesized ones.
type Solution struct {
	Agents          []string `json:"agents,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	GeneratedAgents []string `json:"generated_agents,omitempty"`
	GeneratedSkills []string `json:"generated_skills,omitempty"`
}

// PatternRecord is one entry of the evolution memory used to bias future
// capability routing. SuccessRate is an exponential moving average.
type PatternRecord struct {
	ID            string          `json:"id"`
	TriggerPhrase string          `json:"trigger_phrase"`
	Domain        classify.Domain `json:"domain"`
	Solution      Solution        `json:"solution"`
	SuccessRate   float64         `json:"success_rate"`
	Learnings     []string        `json:"learnings,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// EMA decay weights: old evidence keeps 0.8, new outcomes contribute 0.2.
const (
	emaOld = 0.8
	emaNew = 0.2
)

// PatternStore holds pattern records. Implementations must make List
// return records for exactly one domain.
type PatternStore interface {
	List(ctx context.Context, domain classify.Domain) ([]PatternRecord, error)
	Put(ctx context.Context, rec PatternRecord) error
}

// MemoryPatternStore is the in-process reference store. Lifetime is the
// process; production deployments should prefer the Redis store.
type MemoryPatternStore struct {
	mu   sync.RWMutex
	recs map[classify.Domain][]PatternRecord
}

func NewMemoryPatternStore() *MemoryPatternStore {
	return &MemoryPatternStore{recs: map[classify.Domain][]PatternRecord{}}
}

func (s *MemoryPatternStore) List(ctx context.Context, domain classify.Domain) ([]PatternRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PatternRecord, len(s.recs[domain]))
	copy(out, s.recs[domain])
	return out, nil
}

func (s *MemoryPatternStore) Put(ctx context.Context, rec PatternRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.recs[rec.Domain] {
		if r.ID == rec.ID {
			s.recs[rec.Domain][i] = rec
			return nil
		}
	}
	s.recs[rec.Domain] = append(s.recs[rec.Domain], rec)
	return nil
}

// RecordPattern folds a mission outcome into pattern memory. An existing
// record is updated when it shares the domain and the new intent's first
// word appears in its trigger phrase; otherwise a new record is inserted.
//
// The substring key is approximate and can conflate unrelated missions that
// share a common first word; it is kept as-is, see DESIGN.md.
func RecordPattern(ctx context.Context, store PatternStore, c classify.Classification, sol Solution, success bool, learnings []string) (PatternRecord, error) {
	var zero PatternRecord
	outcome := 0.0
	if success {
		outcome = 1.0
	}

	recs, err := store.List(ctx, c.Domain)
	if err != nil {
		return zero, err
	}
	firstWord := firstWordOf(c.Intent)
	for _, r := range recs {
		if firstWord != "" && strings.Contains(strings.ToLower(r.TriggerPhrase), firstWord) {
			r.SuccessRate = emaOld*r.SuccessRate + emaNew*outcome
			r.Solution = sol
			r.Learnings = append(r.Learnings, learnings...)
			r.Timestamp = time.Now().UTC()
			if err := store.Put(ctx, r); err != nil {
				return zero, err
			}
			return r, nil
		}
	}

	rec := PatternRecord{
		ID:            uuid.NewString(),
		TriggerPhrase: c.Intent,
		Domain:        c.Domain,
		Solution:      sol,
		SuccessRate:   outcome,
		Learnings:     learnings,
		Timestamp:     time.Now().UTC(),
	}
	if err := store.Put(ctx, rec); err != nil {
		return zero, err
	}
	return rec, nil
}

func firstWordOf(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,!?\"'")
}
