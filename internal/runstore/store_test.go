package runstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"newsvendor-mcp/internal/simulation"
)

func sampleRun(n int) simulation.PolicyRun {
	seed := int64(42)
	e := simulation.NewEngine(simulation.DefaultParameters())
	return e.RunPolicy(simulation.Policy{Name: "Policy 1", OrderQuantity: 7000}, n, &seed)
}

func TestStore_PutGet(t *testing.T) {
	s := New()
	rec := s.Put(sampleRun(20), nil, simulation.SeedModeLegacy)

	if rec.ID == "" {
		t.Fatal("expected generated run ID")
	}
	if rec.Stats.TotalSimulations != 20 {
		t.Errorf("expected stats for 20 trials, got %d", rec.Stats.TotalSimulations)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Run.PolicyName != "Policy 1" {
		t.Errorf("unexpected policy %q", got.Run.PolicyName)
	}

	if _, err := s.Get("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStore_Page(t *testing.T) {
	s := New()
	rec := s.Put(sampleRun(25), nil, "")

	tests := []struct {
		name      string
		offset    int
		limit     int
		wantLen   int
		wantFirst int
		wantMore  bool
	}{
		{"FirstPage", 0, 10, 10, 1, true},
		{"LastPartial", 20, 10, 5, 21, false},
		{"All", 0, 0, 25, 1, false},
		{"PastEnd", 40, 10, 0, 0, false},
		{"NegativeOffset", -5, 3, 3, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Page(rec.ID, tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("Page failed: %v", err)
			}
			if len(page.Results) != tt.wantLen {
				t.Fatalf("expected %d results, got %d", tt.wantLen, len(page.Results))
			}
			if tt.wantLen > 0 && page.Results[0].SimulationNumber != tt.wantFirst {
				t.Errorf("expected first simulation %d, got %d", tt.wantFirst, page.Results[0].SimulationNumber)
			}
			if page.HasMore != tt.wantMore {
				t.Errorf("expected has_more %v, got %v", tt.wantMore, page.HasMore)
			}
			if page.Total != 25 {
				t.Errorf("expected total 25, got %d", page.Total)
			}
		})
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	seed := int64(42)

	s := New()
	rec := s.Put(sampleRun(15), &seed, simulation.SeedModeReproducible)
	s.Put(sampleRun(5), nil, simulation.SeedModeLegacy)

	if err := s.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := New()
	if err := restored.Load(dir); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if restored.Count() != 2 {
		t.Fatalf("expected 2 runs after load, got %d", restored.Count())
	}

	got, err := restored.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get after load failed: %v", err)
	}
	if got.Seed == nil || *got.Seed != 42 || got.SeedMode != simulation.SeedModeReproducible {
		t.Errorf("seed metadata not restored: %+v", got)
	}
	if len(got.Run.Results) != 15 || got.Run.Results[14] != rec.Run.Results[14] {
		t.Error("trial results not restored")
	}
}

func TestStore_LoadSkipsInvalidLines(t *testing.T) {
	dir := t.TempDir()

	s := New()
	s.Put(sampleRun(3), nil, "")
	if err := s.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(dir, cacheFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if _, err := f.WriteString("{not json\n{}\n"); err != nil {
		t.Fatalf("append garbage: %v", err)
	}
	f.Close()

	restored := New()
	if err := restored.Load(dir); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if restored.Count() != 1 {
		t.Errorf("expected 1 valid run, got %d", restored.Count())
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	if err := New().Load(t.TempDir()); err != nil {
		t.Errorf("expected no error for missing cache, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	s := New()
	s.Put(sampleRun(1), nil, "")
	s.Put(sampleRun(2), nil, "")
	if got := len(s.List()); got != 2 {
		t.Errorf("expected 2 summaries, got %d", got)
	}
}

func TestStore_EvictsOldestRuns(t *testing.T) {
	s := NewWithLimit(2)
	first := s.Put(sampleRun(1), nil, "")
	second := s.Put(sampleRun(2), nil, "")
	third := s.Put(sampleRun(3), nil, "")

	if got := s.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}
	if _, err := s.Get(first.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected oldest run to be evicted, got %v", err)
	}
	for _, rec := range []Record{second, third} {
		if _, err := s.Get(rec.ID); err != nil {
			t.Errorf("run %s should be kept: %v", rec.ID, err)
		}
	}

	list := s.List()
	if list[0].ID != second.ID || list[1].ID != third.ID {
		t.Errorf("List() order = %s, %s, want %s, %s", list[0].ID, list[1].ID, second.ID, third.ID)
	}
}

func TestStore_LoadRespectsLimit(t *testing.T) {
	dir := t.TempDir()
	s := New()
	var ids []string
	for i := 1; i <= 5; i++ {
		ids = append(ids, s.Put(sampleRun(i), nil, "").ID)
	}
	if err := s.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	bounded := NewWithLimit(3)
	if err := bounded.Load(dir); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := bounded.Count(); got != 3 {
		t.Fatalf("Count() = %d, want 3", got)
	}
	for _, id := range ids[:2] {
		if _, err := bounded.Get(id); err == nil {
			t.Errorf("run %s should have been evicted on load", id)
		}
	}
	for _, id := range ids[2:] {
		if _, err := bounded.Get(id); err != nil {
			t.Errorf("run %s should be kept: %v", id, err)
		}
	}
}

func TestStore_UnboundedKeepsEverything(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Put(sampleRun(1), nil, "")
	}
	if got := s.Count(); got != 10 {
		t.Errorf("Count() = %d, want 10", got)
	}
}
