package odds

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrOutsideHours is matched by every *ClosedError.
	ErrOutsideHours = errors.New("outside service hours")
	// ErrNoOdds means the page loaded but the table had no usable rows.
	ErrNoOdds = errors.New("no odds rows found")
)

// ClosedError is returned when a request arrives outside the service window.
type ClosedError struct {
	Window Window
	At     time.Time
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("%v: %s is outside %s", ErrOutsideHours, e.At.Format("15:04"), e.Window)
}

func (e *ClosedError) Is(target error) bool {
	return target == ErrOutsideHours
}

// UnknownVenueError is returned for names missing from the venue table.
type UnknownVenueError struct {
	Venue string
}

func (e *UnknownVenueError) Error() string {
	return fmt.Sprintf("unknown venue %q", e.Venue)
}

// Stage names the step of a scrape that failed.
type Stage string

const (
	StageOpen     Stage = "open"     // acquiring a page slot or opening the tab
	StageNavigate Stage = "navigate" // page load
	StageWait     Stage = "wait"     // waiting for the odds table
	StageExtract  Stage = "extract"  // reading and parsing the table
)

// FetchError wraps any failure while talking to the browser.
type FetchError struct {
	Stage Stage
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s %s: timeout: %v", e.Stage, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the stage ran out of time.
func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
