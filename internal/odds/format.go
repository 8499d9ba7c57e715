package odds

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Header is the first line of every successful response.
const Header = "順位,組番,オッズ"

const (
	msgClosed       = "❌ 利用可能時間は%sです"
	msgUnknownVenue = "❌ 無効な会場名: "
	msgFetchError   = "❌ オッズ取得エラー: "
	msgNotFound     = "❌ オッズ情報が見つかりませんでした"
)

// Format renders rows as the CSV-like response body: the header line, then
// "rank,combination,odds" per row, joined by newlines.
func Format(rows []Row) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(strconv.Itoa(r.Rank))
		b.WriteByte(',')
		b.WriteString(r.Combination)
		b.WriteByte(',')
		b.WriteString(r.Odds)
	}
	return b.String()
}

// Render maps the outcome of Service.Odds to an HTTP status and plain-text
// body. Only the service window produces a non-200 status; every other
// failure is reported in the body.
func Render(rows []Row, err error) (int, string) {
	if err == nil && len(rows) == 0 {
		err = ErrNoOdds
	}

	var (
		closed  *ClosedError
		unknown *UnknownVenueError
	)
	switch {
	case err == nil:
		return http.StatusOK, Format(rows)
	case errors.As(err, &closed):
		return http.StatusForbidden, fmt.Sprintf(msgClosed, closed.Window)
	case errors.Is(err, ErrOutsideHours):
		return http.StatusForbidden, fmt.Sprintf(msgClosed, DefaultWindow)
	case errors.As(err, &unknown):
		return http.StatusOK, msgUnknownVenue + unknown.Venue
	case errors.Is(err, ErrNoOdds):
		return http.StatusOK, msgNotFound
	default:
		return http.StatusOK, msgFetchError + err.Error()
	}
}
