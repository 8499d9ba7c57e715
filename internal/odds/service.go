package odds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/Vodeneev/keirin-odds/internal/odds/venues"
	"github.com/Vodeneev/keirin-odds/internal/pkg/performance"
)

// Browser opens pages in a long-lived browser owned by the caller.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}

// Page is a single tab. The deadline and cancellation of each ctx bound the
// call. Close must be safe to call once on every path.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Options configures a Service. Zero durations and sizes fall back to the
// defaults of the upstream contract (10s load, 5s table wait, 100 rows).
type Options struct {
	Window        Window
	Location      *time.Location
	URL           URLBuilder
	TableSelector string
	MaxRows       int

	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	ExtractTimeout    time.Duration

	// MaxPages bounds how many tabs may be open in the shared browser.
	MaxPages int

	Now func() time.Time
}

const (
	defaultTableSelector     = "table.OddsTable"
	defaultMaxRows           = 100
	defaultNavigationTimeout = 10 * time.Second
	defaultSelectorTimeout   = 5 * time.Second
	defaultExtractTimeout    = 5 * time.Second
	defaultMaxPages          = 4
)

func (o *Options) setDefaults() {
	if o.Window == (Window{}) {
		o.Window = DefaultWindow
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.URL.BaseURL == "" {
		o.URL.BaseURL = "https://keirin.netkeiba.com/race/odds/"
	}
	if o.URL.OddsType == "" {
		o.URL.OddsType = "odds3tan"
	}
	if o.TableSelector == "" {
		o.TableSelector = defaultTableSelector
	}
	if o.MaxRows <= 0 {
		o.MaxRows = defaultMaxRows
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = defaultNavigationTimeout
	}
	if o.SelectorTimeout <= 0 {
		o.SelectorTimeout = defaultSelectorTimeout
	}
	if o.ExtractTimeout <= 0 {
		o.ExtractTimeout = defaultExtractTimeout
	}
	if o.MaxPages <= 0 {
		o.MaxPages = defaultMaxPages
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Service answers odds requests using a shared browser.
type Service struct {
	venues  *venues.Table
	browser Browser
	opts    Options
	pages   *semaphore.Weighted
	tracker *performance.Tracker
	log     logrus.FieldLogger
}

// NewService wires the pipeline. The browser stays owned by the caller, who
// must keep it open for the lifetime of the service and close it afterwards.
func NewService(table *venues.Table, browser Browser, opts Options, tracker *performance.Tracker, log logrus.FieldLogger) *Service {
	opts.setDefaults()
	if tracker == nil {
		tracker = performance.NewTracker()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		venues:  table,
		browser: browser,
		opts:    opts,
		pages:   semaphore.NewWeighted(int64(opts.MaxPages)),
		tracker: tracker,
		log:     log,
	}
}

// Tracker exposes the request metrics of this service.
func (s *Service) Tracker() *performance.Tracker {
	return s.tracker
}

// Venues exposes the venue table the service resolves names against.
func (s *Service) Venues() *venues.Table {
	return s.venues
}

// Odds runs the full pipeline for one request. It returns a *ClosedError,
// *UnknownVenueError, *FetchError or ErrNoOdds on failure; Render turns any
// of them into the response text.
func (s *Service) Odds(ctx context.Context, venue, race string) (rows []Row, err error) {
	start := time.Now()
	var (
		raceID     string
		fetchStart time.Time
		fetchTime  time.Duration
	)
	defer func() {
		if !fetchStart.IsZero() {
			fetchTime = time.Since(fetchStart)
		}
		s.record(raceID, rows, err, fetchTime, time.Since(start))
	}()

	now := s.opts.Now().In(s.opts.Location)
	if !s.opts.Window.Allows(now) {
		return nil, &ClosedError{Window: s.opts.Window, At: now}
	}

	code, ok := s.venues.Code(venue)
	if !ok {
		return nil, &UnknownVenueError{Venue: venue}
	}

	raceID = RaceID(now, code, race)
	pageURL := s.opts.URL.URL(raceID)

	fetchStart = time.Now()
	rows, err = s.Scrape(ctx, pageURL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"venue":   venue,
			"race_id": raceID,
			"url":     pageURL,
		}).WithError(err).Warn("Odds fetch failed")
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoOdds
	}

	return rows, nil
}

// Scrape opens one page, loads pageURL and extracts the odds table. The page
// is closed before Scrape returns, whatever the outcome.
func (s *Service) Scrape(ctx context.Context, pageURL string) ([]Row, error) {
	if err := s.pages.Acquire(ctx, 1); err != nil {
		return nil, &FetchError{Stage: StageOpen, URL: pageURL, Err: err}
	}
	defer s.pages.Release(1)

	page, err := s.browser.NewPage(ctx)
	if err != nil {
		return nil, &FetchError{Stage: StageOpen, URL: pageURL, Err: err}
	}
	s.tracker.PageOpened()
	defer func() {
		if err := page.Close(); err != nil {
			s.log.WithField("url", pageURL).WithError(err).Warn("Failed to close page")
		}
		s.tracker.PageClosed()
	}()

	if err := runStage(ctx, s.opts.NavigationTimeout, func(ctx context.Context) error {
		return page.Navigate(ctx, pageURL)
	}); err != nil {
		return nil, &FetchError{Stage: StageNavigate, URL: pageURL, Err: err}
	}

	if err := runStage(ctx, s.opts.SelectorTimeout, func(ctx context.Context) error {
		return page.WaitVisible(ctx, s.opts.TableSelector)
	}); err != nil {
		return nil, &FetchError{Stage: StageWait, URL: pageURL, Err: err}
	}

	var html string
	if err := runStage(ctx, s.opts.ExtractTimeout, func(ctx context.Context) error {
		var err error
		html, err = page.HTML(ctx)
		return err
	}); err != nil {
		return nil, &FetchError{Stage: StageExtract, URL: pageURL, Err: err}
	}

	rows, err := ParseTable(html, s.opts.TableSelector, s.opts.MaxRows)
	if err != nil {
		return nil, &FetchError{Stage: StageExtract, URL: pageURL, Err: err}
	}
	return rows, nil
}

func runStage(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return err
	}
	// a page that ignores ctx must not turn a late answer into a success
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stage finished after deadline: %w", err)
	}
	return nil
}

func (s *Service) record(raceID string, rows []Row, err error, fetch, total time.Duration) {
	ft := performance.FetchTiming{
		RaceID:  raceID,
		Outcome: Outcome(err),
		Rows:    len(rows),
		Fetch:   fetch,
		Total:   total,
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		ft.Stage = string(fe.Stage)
	}
	s.tracker.RecordFetch(ft)
}

// Outcome classifies the result of Odds for metrics and logs.
func Outcome(err error) string {
	var (
		unknown *UnknownVenueError
		fe      *FetchError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrOutsideHours):
		return "closed"
	case errors.As(err, &unknown):
		return "unknown_venue"
	case errors.Is(err, ErrNoOdds):
		return "not_found"
	case errors.As(err, &fe) && fe.Timeout():
		return "timeout"
	default:
		return "fetch_error"
	}
}
