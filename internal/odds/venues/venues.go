// Package venues holds the static venue name -> venue code table.
package venues

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed venues.yaml
var defaultTable []byte

// Venue is one entry of the table. Code is always two ASCII digits.
type Venue struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

type document struct {
	Venues []Venue `yaml:"venues"`
}

// Table is an immutable exact-match lookup. Build it with Default or Parse;
// it is safe for concurrent use since nothing mutates it after construction.
type Table struct {
	codes  map[string]string
	venues []Venue
}

// Default parses the embedded venue table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Parse builds a Table from a YAML document of the form {venues: [{name, code}]}.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal venue table: %w", err)
	}
	if len(doc.Venues) == 0 {
		return nil, fmt.Errorf("venue table is empty")
	}

	t := &Table{
		codes:  make(map[string]string, len(doc.Venues)),
		venues: make([]Venue, 0, len(doc.Venues)),
	}
	for i, v := range doc.Venues {
		if v.Name == "" {
			return nil, fmt.Errorf("venue #%d: empty name", i)
		}
		if !validCode(v.Code) {
			return nil, fmt.Errorf("venue %q: code %q is not two digits", v.Name, v.Code)
		}
		if _, dup := t.codes[v.Name]; dup {
			return nil, fmt.Errorf("venue %q: duplicate entry", v.Name)
		}
		t.codes[v.Name] = v.Code
		t.venues = append(t.venues, v)
	}

	sort.SliceStable(t.venues, func(i, j int) bool {
		if t.venues[i].Code != t.venues[j].Code {
			return t.venues[i].Code < t.venues[j].Code
		}
		return t.venues[i].Name < t.venues[j].Name
	})

	return t, nil
}

func validCode(code string) bool {
	return len(code) == 2 && code[0] >= '0' && code[0] <= '9' && code[1] >= '0' && code[1] <= '9'
}

// Code returns the venue code for name. Matching is exact: no case folding,
// trimming or alias guessing beyond what the table lists.
func (t *Table) Code(name string) (string, bool) {
	code, ok := t.codes[name]
	return code, ok
}

// Venues returns a copy of all entries ordered by code, then name.
func (t *Table) Venues() []Venue {
	out := make([]Venue, len(t.venues))
	copy(out, t.venues)
	return out
}

// Len reports the number of names in the table.
func (t *Table) Len() int {
	return len(t.venues)
}
