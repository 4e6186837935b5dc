package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MonthlyStats represents usage counters for a specific month
type MonthlyStats struct {
	KeywordResearches     int       `json:"keyword_researches"`
	SEOAnalyses           int       `json:"seo_analyses"`
	SuggestionCacheHits   int       `json:"suggestion_cache_hits"`
	SuggestionCacheMisses int       `json:"suggestion_cache_misses"`
	ModelFailures         int       `json:"model_failures"`
	FetchFailures         int       `json:"fetch_failures"`
	LastUpdated           time.Time `json:"last_updated"`
}

// Storage handles persistent storage of usage statistics.
// A nil *Storage is valid and records nothing.
type Storage struct {
	mutex       sync.RWMutex
	saveMu      sync.Mutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
}

// NewStorage creates a new statistics storage instance
func NewStorage(dataDir string) (*Storage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "stats.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes through a temporary file so readers never see a partial file
func (s *Storage) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), "stats-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temporary file: %w", errors.Join(writeErr, closeErr))
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (s *Storage) backgroundWriter() {
	defer close(s.stopped)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			s.saveAndLog()
		case <-ticker.C:
			s.saveAndLog()
		case <-s.done:
			return
		}
	}
}

func (s *Storage) saveAndLog() {
	if err := s.save(); err != nil {
		log.Printf("stats: %v", err)
	}
}

func currentMonth() string {
	return time.Now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// IncrementStats adds delta to the current month's counters
func (s *Storage) IncrementStats(delta MonthlyStats) {
	if s == nil {
		return
	}
	month := currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}

	stats.KeywordResearches += delta.KeywordResearches
	stats.SEOAnalyses += delta.SEOAnalyses
	stats.SuggestionCacheHits += delta.SuggestionCacheHits
	stats.SuggestionCacheMisses += delta.SuggestionCacheMisses
	stats.ModelFailures += delta.ModelFailures
	stats.FetchFailures += delta.FetchFailures
	stats.LastUpdated = time.Now()

	if time.Since(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = time.Now()
	}
}

// RecordCacheLookup counts a suggestion cache hit or miss
func (s *Storage) RecordCacheLookup(hit bool) {
	if hit {
		s.IncrementStats(MonthlyStats{SuggestionCacheHits: 1})
		return
	}
	s.IncrementStats(MonthlyStats{SuggestionCacheMisses: 1})
}

// RecordModelFailure counts a failed or unavailable suggestion call
func (s *Storage) RecordModelFailure() {
	s.IncrementStats(MonthlyStats{ModelFailures: 1})
}

// RecordFetchFailure counts a page that could not be fetched
func (s *Storage) RecordFetchFailure() {
	s.IncrementStats(MonthlyStats{FetchFailures: 1})
}

// RecordKeywordResearch counts a completed keyword research
func (s *Storage) RecordKeywordResearch() {
	s.IncrementStats(MonthlyStats{KeywordResearches: 1})
}

// RecordSEOAnalysis counts a completed SEO report
func (s *Storage) RecordSEOAnalysis() {
	s.IncrementStats(MonthlyStats{SEOAnalyses: 1})
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() MonthlyStats {
	if s == nil {
		return MonthlyStats{}
	}
	month := currentMonth()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[month]; exists {
		return *stats
	}
	return MonthlyStats{}
}

// Cleanup drops every month older than the newest retainMonths months
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	now := time.Now()
	keep := make(map[string]bool, retainMonths)
	for i := 0; i < retainMonths; i++ {
		month := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, now.Location())
		keep[month.Format("2006-01")] = true
	}

	s.mutex.Lock()
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
		}
	}
	s.mutex.Unlock()

	s.requestWrite()
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	if s == nil {
		return MonthlyStats{}, false
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns all months with statistics, newest first
func (s *Storage) GetAllMonths() []string {
	if s == nil {
		return nil
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}

// Shutdown stops the background writer and persists the final state
func (s *Storage) Shutdown() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		close(s.done)
	})
	<-s.stopped
	return s.save()
}
