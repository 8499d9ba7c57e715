package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Vodeneev/keirin-odds/internal/odds"
	"github.com/Vodeneev/keirin-odds/internal/odds/venues"
	"github.com/Vodeneev/keirin-odds/internal/pkg/performance"
)

const textPlain = "text/plain; charset=utf-8"

// OutcomeHeader carries odds.Outcome of the request, for logs and debugging.
const OutcomeHeader = "X-Odds-Outcome"

// OddsService is what the handlers need from odds.Service.
type OddsService interface {
	Odds(ctx context.Context, venue, race string) ([]odds.Row, error)
	Tracker() *performance.Tracker
	Venues() *venues.Table
}

// Handlers serves the odds endpoints.
type Handlers struct {
	svc OddsService
	log logrus.FieldLogger
}

func New(svc OddsService, log logrus.FieldLogger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

// HandleOdds returns the odds table of one race as plain text.
// GET /odds?venue=函館&race=3
func (h *Handlers) HandleOdds(c *gin.Context) {
	var missing []string
	venue, ok := c.GetQuery("venue")
	if !ok {
		missing = append(missing, "venue")
	}
	race, ok := c.GetQuery("race")
	if !ok {
		missing = append(missing, "race")
	}
	if len(missing) > 0 {
		c.Data(http.StatusUnprocessableEntity, textPlain,
			[]byte("missing query parameter: "+strings.Join(missing, ", ")))
		return
	}

	rows, err := h.svc.Odds(c.Request.Context(), venue, race)
	status, body := odds.Render(rows, err)

	c.Header(OutcomeHeader, odds.Outcome(err))
	c.Data(status, textPlain, []byte(body))
}

// HandleVenues lists the known venues as "name,code" lines.
// GET /venues
func (h *Handlers) HandleVenues(c *gin.Context) {
	list := h.svc.Venues().Venues()
	lines := make([]string, 0, len(list))
	for _, v := range list {
		lines = append(lines, v.Name+","+v.Code)
	}
	c.Data(http.StatusOK, textPlain, []byte(strings.Join(lines, "\n")))
}
