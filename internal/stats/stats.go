// Package stats tracks per-session generation metrics: latency to the first
// fragment, total latency, fragment counts and outcomes. Records live in
// memory for the lifetime of the session.
package stats

import (
	"sort"
	"sync"
	"time"
)

const maxRecords = 1000

// Outcomes a generation can end with.
const (
	OutcomeComplete = "complete"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Record is a single instrumented generation.
type Record struct {
	Timestamp     time.Time     `json:"timestamp"`
	Model         string        `json:"model"`
	Fragments     int           `json:"fragments"`
	Chars         int           `json:"chars"`
	Latency       time.Duration `json:"latency_ns"`
	FirstFragment time.Duration `json:"first_fragment_ns,omitempty"`
	Outcome       string        `json:"outcome"`
}

// Summary is the aggregated view over all records.
type Summary struct {
	Total              int            `json:"total"`
	SuccessRate        float64        `json:"success_rate"`
	AvgLatencyMs       int64          `json:"avg_latency_ms"`
	AvgFirstFragmentMs int64          `json:"avg_first_fragment_ms"`
	TotalChars         int            `json:"total_chars"`
	ModelBreakdown     map[string]int `json:"model_breakdown"`
	OutcomeBreakdown   map[string]int `json:"outcome_breakdown"`
	TopModels          []ModelCount   `json:"top_models"`
}

// ModelCount pairs a model with its usage count.
type ModelCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

// Tracker collects records. The zero value is ready to use.
type Tracker struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add appends a record, stamping it with the current time.
func (t *Tracker) Add(r Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.now != nil {
		r.Timestamp = t.now()
	} else {
		r.Timestamp = time.Now()
	}
	t.records = append(t.records, r)

	// Keep the most recent records only.
	if len(t.records) > maxRecords {
		t.records = t.records[len(t.records)-maxRecords:]
	}
}

// Records returns a copy of all stored records, oldest first.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of stored records.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Summarize computes aggregated stats from all records.
func (t *Tracker) Summarize() *Summary {
	records := t.Records()

	s := &Summary{
		Total:            len(records),
		ModelBreakdown:   map[string]int{},
		OutcomeBreakdown: map[string]int{},
	}
	if len(records) == 0 {
		return s
	}

	var totalLatency, totalFirst time.Duration
	var firstCount, successCount int
	for _, r := range records {
		if r.Outcome == OutcomeComplete {
			successCount++
		}
		totalLatency += r.Latency
		if r.FirstFragment > 0 {
			totalFirst += r.FirstFragment
			firstCount++
		}
		s.TotalChars += r.Chars
		if r.Model != "" {
			s.ModelBreakdown[r.Model]++
		}
		if r.Outcome != "" {
			s.OutcomeBreakdown[r.Outcome]++
		}
	}

	s.SuccessRate = float64(successCount) / float64(len(records)) * 100
	s.AvgLatencyMs = (totalLatency / time.Duration(len(records))).Milliseconds()
	if firstCount > 0 {
		s.AvgFirstFragmentMs = (totalFirst / time.Duration(firstCount)).Milliseconds()
	}
	s.TopModels = topN(s.ModelBreakdown, 5)

	return s
}

func topN(freq map[string]int, n int) []ModelCount {
	all := make([]ModelCount, 0, len(freq))
	for model, count := range freq {
		all = append(all, ModelCount{Model: model, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Model < all[j].Model
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
