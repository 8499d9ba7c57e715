package odds

import (
	"testing"
	"time"
)

func TestRaceID(t *testing.T) {
	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		code string
		race string
		want string
	}{
		{"11", "3", "202405011103"},
		{"11", "03", "202405011103"},
		{"87", "12", "202405018712"},
		{"37", "", "202405013700"},
		{"37", "123", "2024050137123"},
		{"37", "x", "20240501370x"},
	}

	for _, tt := range tests {
		if got := RaceID(date, tt.code, tt.race); got != tt.want {
			t.Errorf("RaceID(%s, %q, %q) = %q, want %q", date.Format("2006-01-02"), tt.code, tt.race, got, tt.want)
		}
	}
}

// date (8) + venue code (2) + race padded to 2
func TestRaceID_Length(t *testing.T) {
	date := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	for _, race := range []string{"1", "9", "10", "12"} {
		for _, code := range []string{"11", "87"} {
			if got := RaceID(date, code, race); len(got) != 12 {
				t.Errorf("RaceID(%s, %q, %q) = %q, len %d, want 12", date.Format("2006-01-02"), code, race, got, len(got))
			}
		}
	}
}

func TestPadRace_CountsRunes(t *testing.T) {
	if got := padRace("１"); got != "0１" {
		t.Errorf("padRace(%q) = %q, want %q", "１", got, "0１")
	}
}

func TestURLBuilder(t *testing.T) {
	b := URLBuilder{BaseURL: "https://keirin.netkeiba.com/race/odds/", OddsType: "odds3tan"}

	got := b.URL("202405011103")
	want := "https://keirin.netkeiba.com/race/odds/?race_id=202405011103&type=odds3tan"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}

	// odd race input is escaped, never spliced into the query
	got = b.URL("2024050111a&b")
	want = "https://keirin.netkeiba.com/race/odds/?race_id=2024050111a%26b&type=odds3tan"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
