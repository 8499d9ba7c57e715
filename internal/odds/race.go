package odds

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// RaceID builds the upstream race key: YYYYMMDD of date, the two digit venue
// code, and race left-padded with zeros to two characters. race is not
// validated; a nonsense value yields an id the upstream simply does not know.
func RaceID(date time.Time, venueCode, race string) string {
	return date.Format("20060102") + venueCode + padRace(race)
}

func padRace(race string) string {
	if n := utf8.RuneCountInString(race); n < 2 {
		return strings.Repeat("0", 2-n) + race
	}
	return race
}

// URLBuilder points race ids at the upstream odds page.
type URLBuilder struct {
	BaseURL  string // e.g. https://keirin.netkeiba.com/race/odds/
	OddsType string // e.g. odds3tan
}

// URL returns the odds page for raceID. Parameter order matches what the site
// itself links to: race_id first, then type.
func (b URLBuilder) URL(raceID string) string {
	return fmt.Sprintf("%s?race_id=%s&type=%s", b.BaseURL, url.QueryEscape(raceID), url.QueryEscape(b.OddsType))
}
