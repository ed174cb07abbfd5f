package stats

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestAddAndRecords(t *testing.T) {
	tr := NewTracker()
	tr.Add(Record{Model: "gpt-4o", Fragments: 3, Chars: 12, Latency: 500 * time.Millisecond, Outcome: OutcomeComplete})

	records := tr.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Model != "gpt-4o" {
		t.Errorf("unexpected model: %s", records[0].Model)
	}
	if records[0].Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}
}

func TestAdd_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	tr := &Tracker{now: func() time.Time { return fixed }}
	tr.Add(Record{Outcome: OutcomeComplete})

	if got := tr.Records()[0].Timestamp; !got.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, got)
	}
}

func TestAdd_CapsRecords(t *testing.T) {
	var tr Tracker
	for i := 0; i < maxRecords+10; i++ {
		tr.Add(Record{Fragments: i, Outcome: OutcomeComplete})
	}
	if tr.Len() != maxRecords {
		t.Fatalf("expected %d records, got %d", maxRecords, tr.Len())
	}
	// Oldest records are dropped first.
	if first := tr.Records()[0].Fragments; first != 10 {
		t.Errorf("expected oldest kept record to be #10, got #%d", first)
	}
}

func TestRecords_ReturnsCopy(t *testing.T) {
	tr := NewTracker()
	tr.Add(Record{Model: "gpt-4o"})
	recs := tr.Records()
	recs[0].Model = "mutated"

	if tr.Records()[0].Model != "gpt-4o" {
		t.Error("Records should return a copy")
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := NewTracker().Summarize()
	if s.Total != 0 {
		t.Errorf("expected 0 total, got %d", s.Total)
	}
	if s.ModelBreakdown == nil || s.OutcomeBreakdown == nil {
		t.Error("breakdowns should be non-nil maps")
	}
}

func TestSummarize_WithData(t *testing.T) {
	tr := NewTracker()
	tr.Add(Record{Model: "gpt-4o", Chars: 10, Latency: 200 * time.Millisecond, FirstFragment: 100 * time.Millisecond, Outcome: OutcomeComplete})
	tr.Add(Record{Model: "gpt-4o", Chars: 20, Latency: 400 * time.Millisecond, FirstFragment: 300 * time.Millisecond, Outcome: OutcomeComplete})
	tr.Add(Record{Model: "gpt-3.5-turbo", Latency: 300 * time.Millisecond, Outcome: OutcomeError})
	tr.Add(Record{Model: "gpt-3.5-turbo", Outcome: OutcomeRejected})

	s := tr.Summarize()
	if s.Total != 4 {
		t.Errorf("expected 4 total, got %d", s.Total)
	}
	if s.SuccessRate != 50 {
		t.Errorf("expected 50%% success, got %.1f", s.SuccessRate)
	}
	if s.AvgLatencyMs != 225 {
		t.Errorf("expected 225ms avg latency, got %d", s.AvgLatencyMs)
	}
	if s.AvgFirstFragmentMs != 200 {
		t.Errorf("expected 200ms avg first fragment, got %d", s.AvgFirstFragmentMs)
	}
	if s.TotalChars != 30 {
		t.Errorf("expected 30 chars, got %d", s.TotalChars)
	}
	if s.ModelBreakdown["gpt-4o"] != 2 || s.ModelBreakdown["gpt-3.5-turbo"] != 2 {
		t.Errorf("unexpected model breakdown: %v", s.ModelBreakdown)
	}
	if s.OutcomeBreakdown[OutcomeRejected] != 1 {
		t.Errorf("unexpected outcome breakdown: %v", s.OutcomeBreakdown)
	}
	if len(s.TopModels) != 2 || s.TopModels[0].Model != "gpt-3.5-turbo" {
		t.Errorf("expected ties broken by name, got %v", s.TopModels)
	}
}

func TestTopN(t *testing.T) {
	freq := map[string]int{"a": 1, "b": 5, "c": 3, "d": 2, "e": 4, "f": 6}
	top := topN(freq, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3, got %d", len(top))
	}
	if top[0].Model != "f" || top[1].Model != "b" || top[2].Model != "e" {
		t.Errorf("unexpected order: %v", top)
	}
}

func TestTracker_ConcurrentAdd(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(Record{Outcome: OutcomeComplete})
		}()
	}
	wg.Wait()
	if tr.Len() != 50 {
		t.Errorf("expected 50 records, got %d", tr.Len())
	}
}

func TestRecord_JSONDurationsAreNanoseconds(t *testing.T) {
	data, err := json.Marshal(Record{Latency: 2 * time.Millisecond, FirstFragment: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["latency_ns"] != float64(2_000_000) || got["first_fragment_ns"] != float64(1_000_000) {
		t.Errorf("unexpected encoding %s", data)
	}
	if _, ok := got["latency_ms"]; ok {
		t.Errorf("latency must not be labelled as milliseconds: %s", data)
	}
}
