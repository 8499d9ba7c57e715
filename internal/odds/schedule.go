package odds

import (
	"fmt"
	"time"
)

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses "15:04" style values.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// ClockOf returns the time of day of t in t's own location. Seconds are dropped.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// String renders the clock without a leading zero on the hour, e.g. "8:00".
func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d", int(c)/60, int(c)%60)
}

// Window is the daily period during which odds requests are served.
// Both ends are inclusive.
type Window struct {
	Open  Clock
	Close Clock
}

// DefaultWindow is 8:00 to 23:30.
var DefaultWindow = Window{Open: 8 * 60, Close: 23*60 + 30}

// NewWindow parses open and close clock values.
func NewWindow(openAt, closeAt string) (Window, error) {
	o, err := ParseClock(openAt)
	if err != nil {
		return Window{}, err
	}
	c, err := ParseClock(closeAt)
	if err != nil {
		return Window{}, err
	}
	if c < o {
		return Window{}, fmt.Errorf("window closes (%s) before it opens (%s)", c, o)
	}
	return Window{Open: o, Close: c}, nil
}

// Allows reports whether t falls inside the window. Only hour and minute are
// compared, so 23:30:59 is still inside a window closing at 23:30.
func (w Window) Allows(t time.Time) bool {
	c := ClockOf(t)
	return c >= w.Open && c <= w.Close
}

func (w Window) String() string {
	return w.Open.String() + "〜" + w.Close.String()
}
