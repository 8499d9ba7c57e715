package odds

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestParseTable_Fixture(t *testing.T) {
	data, err := os.ReadFile("testdata/odds3tan.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	rows, err := ParseTable(string(data), "table.OddsTable", 100)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	want := []Row{
		{Rank: 1, Combination: "123", Odds: "8.9"},
		{Rank: 2, Combination: "132", Odds: "12.4"},
		{Rank: 4, Combination: "213", Odds: "15.0"},
		{Rank: 5, Combination: "231", Odds: "1,234.5"},
	}
	if len(rows) != len(want) {
		t.Fatalf("len(rows) = %d, want %d: %+v", len(rows), len(want), rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestParseTable_MiddleCellIgnored(t *testing.T) {
	html := tableHTML([][]string{
		{"1-2", "x", "3.5倍"},
		{"3-4", "x", "8.1倍"},
	})

	rows, err := ParseTable(html, "table.OddsTable", 100)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	got := Format(rows)
	want := "順位,組番,オッズ\n1,12,3.5\n2,34,8.1"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestParseTable_ShortRowsSkippedKeepRank(t *testing.T) {
	html := tableHTML([][]string{
		{"1-2", "x", "2.0倍"},
		{"only", "two"},
		{},
		{"3-4", "x", "4.0倍"},
	})

	rows, err := ParseTable(html, "table.OddsTable", 100)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[1].Rank != 4 {
		t.Errorf("rank of row after skipped rows = %d, want 4", rows[1].Rank)
	}
}

func TestParseTable_MaxRows(t *testing.T) {
	cells := make([][]string, 0, 130)
	for i := 0; i < 130; i++ {
		cells = append(cells, []string{fmt.Sprintf("%d-1", i), "x", "1.1倍"})
	}

	rows, err := ParseTable(tableHTML(cells), "table.OddsTable", 100)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(rows) != 100 {
		t.Fatalf("len(rows) = %d, want 100", len(rows))
	}
	if rows[99].Rank != 100 {
		t.Errorf("last rank = %d, want 100", rows[99].Rank)
	}
}

func TestParseTable_MaxRowsCountsSkippedRows(t *testing.T) {
	html := tableHTML([][]string{
		{"short"},
		{"short"},
		{"1-2", "x", "2.0倍"},
	})

	rows, err := ParseTable(html, "table.OddsTable", 2)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0 (third row is past the limit)", len(rows))
	}
}

func TestParseTable_NoTable(t *testing.T) {
	rows, err := ParseTable("<html><body><p>レースが見つかりません</p></body></html>", "table.OddsTable", 100)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestParseTable_RowsWithoutTbody(t *testing.T) {
	// the HTML parser inserts tbody, same as a browser DOM
	html := `<table class="OddsTable"><tr><td>5-6</td><td>x</td><td>7.7倍</td></tr></table>`

	rows, err := ParseTable(html, "table.OddsTable", 100)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Combination != "56" || rows[0].Odds != "7.7" {
		t.Errorf("rows = %+v, want [{1 56 7.7}]", rows)
	}
}

// tableHTML renders rows as an OddsTable, one <td> per cell.
func tableHTML(rows [][]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="OddsTable"><tbody>`)
	for _, cells := range rows {
		b.WriteString("<tr>")
		for _, c := range cells {
			b.WriteString("<td>" + c + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func TestParseTable_NestedCellMarkup(t *testing.T) {
	html := `<table class="OddsTable"><tbody>
<tr><td><span>1</span>-<span>2</span>-<span>3</span></td><td>x</td><td> <span class="Odds">12.5</span>倍 </td></tr>
</tbody></table>`

	rows, err := ParseTable(html, "table.OddsTable", 100)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Combination != "123" || rows[0].Odds != "12.5" {
		t.Errorf("ParseTable() = %+v, want [{1 123 12.5}]", rows)
	}
}
