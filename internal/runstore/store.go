package runstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"newsvendor-mcp/internal/simulation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const cacheFile = "runs.jsonl"

// ErrRunNotFound is returned when a run ID is unknown to the store.
var ErrRunNotFound = errors.New("simulation run not found")

// Record is a stored policy run together with its metadata.
type Record struct {
	ID        string                      `json:"id"`
	CreatedAt time.Time                   `json:"created_at"`
	Seed      *int64                      `json:"seed,omitempty"`
	SeedMode  simulation.SeedMode         `json:"seed_mode,omitempty"`
	Stats     simulation.PolicyStatistics `json:"stats"`
	Run       simulation.PolicyRun        `json:"run"`
}

// Summary describes a stored run without its trials.
type Summary struct {
	ID        string                      `json:"id"`
	CreatedAt time.Time                   `json:"created_at"`
	Stats     simulation.PolicyStatistics `json:"stats"`
}

// Page is a window of scenario results from a stored run.
type Page struct {
	RunID   string                      `json:"run_id"`
	Offset  int                         `json:"offset"`
	Total   int                         `json:"total"`
	HasMore bool                        `json:"has_more"`
	Results []simulation.ScenarioResult `json:"results"`
}

// Store provides thread-safe storage for simulation runs, keyed by run ID.
// A bounded store evicts the oldest runs once it holds more than maxRuns.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]Record
	order   map[string]uint64 // insertion sequence, breaks CreatedAt ties
	nextSeq uint64
	maxRuns int
}

// New creates a new empty, unbounded Store.
func New() *Store {
	return NewWithLimit(0)
}

// NewWithLimit creates a Store holding at most maxRuns runs. A non-positive
// maxRuns means no limit.
func NewWithLimit(maxRuns int) *Store {
	return &Store{
		runs:    make(map[string]Record),
		order:   make(map[string]uint64),
		maxRuns: maxRuns,
	}
}

// insert must be called with mu held.
func (s *Store) insert(rec Record) {
	s.runs[rec.ID] = rec
	s.order[rec.ID] = s.nextSeq
	s.nextSeq++
}

// evict drops the oldest runs until the limit holds. Must be called with mu held.
func (s *Store) evict() []string {
	if s.maxRuns <= 0 {
		return nil
	}
	var evicted []string
	for len(s.runs) > s.maxRuns {
		oldest := ""
		for id, rec := range s.runs {
			if oldest == "" || s.older(rec, s.runs[oldest]) {
				oldest = id
			}
		}
		delete(s.runs, oldest)
		delete(s.order, oldest)
		evicted = append(evicted, oldest)
	}
	return evicted
}

func (s *Store) older(a, b Record) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return s.order[a.ID] < s.order[b.ID]
}

// Put stores run and returns its record. On a bounded store the oldest runs
// are evicted to make room.
func (s *Store) Put(run simulation.PolicyRun, seed *int64, mode simulation.SeedMode) Record {
	rec := Record{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Seed:      seed,
		SeedMode:  mode,
		Stats:     simulation.AggregateRun(run),
		Run:       run,
	}

	s.mu.Lock()
	s.insert(rec)
	evicted := s.evict()
	s.mu.Unlock()

	log.Debug().Str("runId", rec.ID).Str("policy", run.PolicyName).Int("trials", len(run.Results)).Msg("Stored simulation run")
	if len(evicted) > 0 {
		log.Debug().Strs("runIds", evicted).Msg("Evicted oldest simulation runs")
	}
	return rec
}

// Get returns the stored run with the given ID.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return rec, nil
}

// Page returns up to limit results starting at offset. A non-positive limit
// returns everything from offset on.
func (s *Store) Page(id string, offset, limit int) (Page, error) {
	rec, err := s.Get(id)
	if err != nil {
		return Page{}, err
	}

	results := rec.Run.Results
	total := len(results)
	offset = min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}

	return Page{
		RunID:   id,
		Offset:  offset,
		Total:   total,
		HasMore: end < total,
		Results: append(make([]simulation.ScenarioResult, 0, end-offset), results[offset:end]...),
	}, nil
}

// List returns summaries of all stored runs, oldest first.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, Summary{ID: rec.ID, CreatedAt: rec.CreatedAt, Stats: rec.Stats})
	}
	sort.Slice(out, func(i, j int) bool {
		return s.older(s.runs[out[i].ID], s.runs[out[j].ID])
	})
	return out
}

// Count returns the number of stored runs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Load reads runs from the JSONL cache file in cacheDir. A missing file is not an error.
func (s *Store) Load(cacheDir string) error {
	path := filepath.Join(cacheDir, cacheFile)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open run cache: %w", err)
	}
	defer file.Close()

	loaded := 0
	scanner := bufio.NewScanner(file)
	// Runs with many trials produce long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil || rec.ID == "" {
			log.Warn().Err(err).Str("path", path).Msg("Skipping invalid JSON line in run cache")
			continue
		}
		s.mu.Lock()
		s.insert(rec)
		s.mu.Unlock()
		loaded++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading run cache: %w", err)
	}

	s.mu.Lock()
	evicted := s.evict()
	s.mu.Unlock()
	loaded -= len(evicted)

	log.Info().Str("path", path).Int("count", loaded).Msg("Loaded simulation runs from cache")
	return nil
}

// Save persists all runs to the JSONL cache file in cacheDir.
func (s *Store) Save(cacheDir string) error {
	s.mu.RLock()
	records := make([]Record, 0, len(s.runs))
	for _, rec := range s.runs {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return s.older(records[i], records[j])
	})
	s.mu.RUnlock()

	if len(records) == 0 {
		return nil
	}

	path := filepath.Join(cacheDir, cacheFile)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode run: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	log.Info().Str("path", path).Int("count", len(records)).Msg("Simulation runs saved to cache")
	return nil
}
