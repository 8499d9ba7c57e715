package performance

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// maxRecentFetches bounds the per-request history kept for /metrics.
const maxRecentFetches = 200

// Tracker tracks odds requests: outcomes, scrape timings and browser page usage.
type Tracker struct {
	mu sync.RWMutex

	// Overall metrics
	TotalRequests int
	TotalRows     int
	Outcomes      map[string]int

	// Timing metrics
	TotalDuration time.Duration
	FetchDuration time.Duration
	MaxDuration   time.Duration

	// Page metrics
	PagesOpened int
	PagesClosed int

	// Recent fetches, oldest first
	Fetches []FetchTiming
}

// FetchTiming tracks a single /odds request
type FetchTiming struct {
	RaceID    string
	Outcome   string
	Stage     string // failing stage for fetch errors, empty otherwise
	Rows      int
	Fetch     time.Duration
	Total     time.Duration
	Timestamp time.Time
}

// NewTracker returns an empty tracker. Each service owns its own.
func NewTracker() *Tracker {
	return &Tracker{
		Outcomes: make(map[string]int),
		Fetches:  make([]FetchTiming, 0, maxRecentFetches),
	}
}

// Reset resets all metrics
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.TotalRequests = 0
	t.TotalRows = 0
	t.Outcomes = make(map[string]int)
	t.TotalDuration = 0
	t.FetchDuration = 0
	t.MaxDuration = 0
	t.PagesOpened = 0
	t.PagesClosed = 0
	t.Fetches = t.Fetches[:0]
}

// RecordFetch records a completed request
func (t *Tracker) RecordFetch(ft FetchTiming) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ft.Timestamp.IsZero() {
		ft.Timestamp = time.Now()
	}

	t.TotalRequests++
	t.TotalRows += ft.Rows
	t.Outcomes[ft.Outcome]++
	t.TotalDuration += ft.Total
	t.FetchDuration += ft.Fetch
	if ft.Total > t.MaxDuration {
		t.MaxDuration = ft.Total
	}

	if len(t.Fetches) == maxRecentFetches {
		copy(t.Fetches, t.Fetches[1:])
		t.Fetches = t.Fetches[:maxRecentFetches-1]
	}
	t.Fetches = append(t.Fetches, ft)
}

// PageOpened records a browser tab being opened
func (t *Tracker) PageOpened() {
	t.mu.Lock()
	t.PagesOpened++
	t.mu.Unlock()
}

// PageClosed records a browser tab being closed
func (t *Tracker) PageClosed() {
	t.mu.Lock()
	t.PagesClosed++
	t.mu.Unlock()
}

// OpenPages is the number of tabs opened and not yet closed.
func (t *Tracker) OpenPages() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.PagesOpened - t.PagesClosed
}

// MetricsResponse represents metrics in JSON format
type MetricsResponse struct {
	Overall struct {
		TotalRequests int            `json:"total_requests"`
		TotalRows     int            `json:"total_rows"`
		Outcomes      map[string]int `json:"outcomes"`
	} `json:"overall"`

	Timing struct {
		AvgTotal string `json:"avg_total"`
		AvgFetch string `json:"avg_fetch"`
		Max      string `json:"max"`
	} `json:"timing"`

	Pages struct {
		Opened int `json:"opened"`
		Closed int `json:"closed"`
		Open   int `json:"open"`
	} `json:"pages"`

	SlowestFetches []struct {
		RaceID   string `json:"race_id"`
		Outcome  string `json:"outcome"`
		Stage    string `json:"stage,omitempty"`
		Duration string `json:"duration"`
	} `json:"slowest_fetches"`
}

// GetMetrics returns structured metrics for JSON API
func (t *Tracker) GetMetrics() MetricsResponse {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var resp MetricsResponse

	resp.Overall.TotalRequests = t.TotalRequests
	resp.Overall.TotalRows = t.TotalRows
	resp.Overall.Outcomes = make(map[string]int, len(t.Outcomes))
	for k, v := range t.Outcomes {
		resp.Overall.Outcomes[k] = v
	}

	if t.TotalRequests > 0 {
		resp.Timing.AvgTotal = (t.TotalDuration / time.Duration(t.TotalRequests)).String()
		resp.Timing.AvgFetch = (t.FetchDuration / time.Duration(t.TotalRequests)).String()
		resp.Timing.Max = t.MaxDuration.String()
	}

	resp.Pages.Opened = t.PagesOpened
	resp.Pages.Closed = t.PagesClosed
	resp.Pages.Open = t.PagesOpened - t.PagesClosed

	// Slowest fetches (top 5)
	if len(t.Fetches) > 0 {
		sorted := make([]FetchTiming, len(t.Fetches))
		copy(sorted, t.Fetches)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Total > sorted[j].Total
		})

		limit := min(5, len(sorted))
		resp.SlowestFetches = make([]struct {
			RaceID   string `json:"race_id"`
			Outcome  string `json:"outcome"`
			Stage    string `json:"stage,omitempty"`
			Duration string `json:"duration"`
		}, limit)
		for i := 0; i < limit; i++ {
			resp.SlowestFetches[i].RaceID = sorted[i].RaceID
			resp.SlowestFetches[i].Outcome = sorted[i].Outcome
			resp.SlowestFetches[i].Stage = sorted[i].Stage
			resp.SlowestFetches[i].Duration = sorted[i].Total.String()
		}
	}

	return resp
}

// PrintSummary logs a short summary, used on shutdown
func (t *Tracker) PrintSummary(log logrus.FieldLogger) {
	m := t.GetMetrics()
	if m.Overall.TotalRequests == 0 {
		log.Info("No odds requests served")
		return
	}

	fields := logrus.Fields{
		"total_requests": m.Overall.TotalRequests,
		"total_rows":     m.Overall.TotalRows,
		"avg_total":      m.Timing.AvgTotal,
		"avg_fetch":      m.Timing.AvgFetch,
		"max":            m.Timing.Max,
		"pages_open":     m.Pages.Open,
	}
	for outcome, n := range m.Overall.Outcomes {
		fields["outcome_"+outcome] = n
	}
	log.WithFields(fields).Info("Odds request summary")
}
