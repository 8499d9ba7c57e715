package odds

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// comboSeparator joins car numbers in a combination, "1-2-3".
	comboSeparator = "-"
	// oddsUnit is the suffix on odds values, "12.5倍".
	oddsUnit = "倍"

	minCells = 3
)

// Row is one line of the odds table.
type Row struct {
	Rank        int    // 1-based position of the row in the scraped table
	Combination string // car numbers without separators, "123"
	Odds        string // odds without the unit, "12.5"
}

// ParseTable extracts odds rows from page HTML. It looks at the first
// maxRows rows of every "<tableSelector> tbody tr" and keeps those with at
// least three cells: cell 0 is the combination, cell 2 the odds. Shorter
// rows are skipped but still count towards rank and maxRows.
//
// Cell text is the DOM text content, not the rendered text a browser would
// report: <br> adds no newline and hidden nodes are included. netkeiba odds
// cells hold plain text, so both read the same.
func ParseTable(html, tableSelector string, maxRows int) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	trs := doc.Find(tableSelector + " tbody tr")
	n := trs.Length()
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		cells := trs.Eq(i).Find("td")
		if cells.Length() < minCells {
			continue
		}
		rows = append(rows, Row{
			Rank:        i + 1,
			Combination: strings.ReplaceAll(strings.TrimSpace(cells.Eq(0).Text()), comboSeparator, ""),
			Odds:        strings.ReplaceAll(strings.TrimSpace(cells.Eq(2).Text()), oddsUnit, ""),
		})
	}

	return rows, nil
}
