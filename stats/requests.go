package stats

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// RequestStats collects in-memory request statistics for the API
type RequestStats struct {
	mutex            sync.RWMutex
	uniqueVisitors   map[string]time.Time // IP -> last visit
	analysisRequests int
	errorCount       int
	popularURLs      map[string]int
	totalLatency     float64
	devMode          bool
	now              func() time.Time
}

// NewRequestStats creates empty request statistics. devMode exposes popular URLs.
func NewRequestStats(devMode bool) *RequestStats {
	return &RequestStats{
		uniqueVisitors: make(map[string]time.Time),
		popularURLs:    make(map[string]int),
		devMode:        devMode,
		now:            time.Now,
	}
}

// TrackVisitor records a visitor by IP
func (s *RequestStats) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.uniqueVisitors[ip] = s.now()
}

// cleanURL keeps scheme, host and path; local and API URLs are dropped
func cleanURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	clean := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		clean += u.Path
	}
	return strings.TrimSuffix(clean, "/")
}

// TrackAnalysis records one analysis request. target is the analysed URL, if any.
func (s *RequestStats) TrackAnalysis(target string, latencyMs float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.analysisRequests++
	if cleaned := cleanURL(target); cleaned != "" {
		s.popularURLs[cleaned]++
	}
	if hasError {
		s.errorCount++
	}
	s.totalLatency += latencyMs
}

func (s *RequestStats) uniqueVisitorsLocked() int {
	count := 0
	cutoff := s.now().Add(-24 * time.Hour)
	for _, lastVisit := range s.uniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

func (s *RequestStats) errorRateLocked() float64 {
	if s.analysisRequests == 0 {
		return 0
	}
	return float64(s.errorCount) / float64(s.analysisRequests) * 100
}

func (s *RequestStats) averageLatencyLocked() float64 {
	if s.analysisRequests == 0 {
		return 0
	}
	return s.totalLatency / float64(s.analysisRequests)
}

// PopularURLs returns the n most analysed URLs, most frequent first
func (s *RequestStats) PopularURLs(n int) map[string]int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.popularURLsLocked(n)
}

func (s *RequestStats) popularURLsLocked(n int) map[string]int {
	urls := make([]string, 0, len(s.popularURLs))
	for u := range s.popularURLs {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool {
		if s.popularURLs[urls[i]] != s.popularURLs[urls[j]] {
			return s.popularURLs[urls[i]] > s.popularURLs[urls[j]]
		}
		return urls[i] < urls[j]
	})
	if len(urls) > n {
		urls = urls[:n]
	}

	result := make(map[string]int, len(urls))
	for _, u := range urls {
		result[u] = s.popularURLs[u]
	}
	return result
}

// PruneVisitors forgets visitors not seen in the last 24 hours
func (s *RequestStats) PruneVisitors() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-24 * time.Hour)
	for ip, lastVisit := range s.uniqueVisitors {
		if !lastVisit.After(cutoff) {
			delete(s.uniqueVisitors, ip)
		}
	}
}

// Snapshot returns the public statistics; popular URLs only in dev mode
func (s *RequestStats) Snapshot() map[string]interface{} {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := map[string]interface{}{
		"uniqueVisitors24h": s.uniqueVisitorsLocked(),
		"totalRequests":     s.analysisRequests,
		"errorRate":         s.errorRateLocked(),
		"averageLoadTime":   s.averageLatencyLocked(),
	}
	if s.devMode {
		result["popularUrls"] = s.popularURLsLocked(5)
	}
	return result
}
