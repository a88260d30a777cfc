package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PeriodDateLayout is the layout used for date-like period keys.
const PeriodDateLayout = "2006-01-02"

// Period identifies one column of a statement table.
type Period struct {
	Key  string
	Date time.Time
}

// NewPeriod builds a Period, parsing the key as a date when it looks like one.
func NewPeriod(key string) Period {
	p := Period{Key: key}
	if d, err := time.Parse(PeriodDateLayout, key); err == nil {
		p.Date = d
	}
	return p
}

// String returns the ISO date for date-like periods, else the raw key.
func (p Period) String() string {
	if !p.Date.IsZero() {
		return p.Date.Format(PeriodDateLayout)
	}
	return p.Key
}

// StatementTable is a labels x periods grid of reported line items.
// Column 0 is the most recent period.
type StatementTable struct {
	Periods []Period
	labels  []string
	rows    map[string][]Num
}

// NewStatementTable creates a table with the given period columns.
func NewStatementTable(periods ...Period) *StatementTable {
	return &StatementTable{
		Periods: periods,
		rows:    make(map[string][]Num),
	}
}

// AddRow adds a line item. A label that already exists keeps its first row.
// Rows shorter than the period count are padded with missing cells.
func (t *StatementTable) AddRow(label string, cells ...Num) bool {
	if t.rows == nil {
		t.rows = make(map[string][]Num)
	}
	if _, exists := t.rows[label]; exists {
		return false
	}
	row := make([]Num, len(t.Periods))
	copy(row, cells)
	t.rows[label] = row
	t.labels = append(t.labels, label)
	return true
}

// Has reports whether the label exists, regardless of its values.
func (t *StatementTable) Has(label string) bool {
	if t == nil {
		return false
	}
	_, ok := t.rows[label]
	return ok
}

// Cell returns the value at (label, col), missing when out of range.
func (t *StatementTable) Cell(label string, col int) Num {
	if t == nil || col < 0 {
		return Missing
	}
	row, ok := t.rows[label]
	if !ok || col >= len(row) {
		return Missing
	}
	return row[col]
}

// Row returns a copy of the cells for label.
func (t *StatementTable) Row(label string) []Num {
	if t == nil {
		return nil
	}
	row, ok := t.rows[label]
	if !ok {
		return nil
	}
	out := make([]Num, len(row))
	copy(out, row)
	return out
}

// Labels returns labels in insertion order.
func (t *StatementTable) Labels() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// PeriodIndex returns the column of the period with the given key, or -1.
func (t *StatementTable) PeriodIndex(key string) int {
	if t == nil {
		return -1
	}
	for i, p := range t.Periods {
		if p.Key == key {
			return i
		}
	}
	return -1
}

// Empty reports whether the table has no periods or no rows.
func (t *StatementTable) Empty() bool {
	return t == nil || len(t.Periods) == 0 || len(t.labels) == 0
}

// Latest returns the most recent period.
func (t *StatementTable) Latest() (Period, bool) {
	if t == nil || len(t.Periods) == 0 {
		return Period{}, false
	}
	return t.Periods[0], true
}

type statementRowJSON struct {
	Label  string `json:"label"`
	Values []Num  `json:"values"`
}

type statementTableJSON struct {
	Periods []string           `json:"periods"`
	Rows    []statementRowJSON `json:"rows"`
}

// MarshalJSON writes the table as ordered periods and rows.
func (t *StatementTable) MarshalJSON() ([]byte, error) {
	out := statementTableJSON{
		Periods: make([]string, 0, len(t.Periods)),
		Rows:    make([]statementRowJSON, 0, len(t.labels)),
	}
	for _, p := range t.Periods {
		out.Periods = append(out.Periods, p.Key)
	}
	for _, label := range t.labels {
		out.Rows = append(out.Rows, statementRowJSON{Label: label, Values: t.rows[label]})
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (t *StatementTable) UnmarshalJSON(data []byte) error {
	var in statementTableJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	periods := make([]Period, 0, len(in.Periods))
	for _, key := range in.Periods {
		periods = append(periods, NewPeriod(key))
	}
	*t = *NewStatementTable(periods...)
	for _, row := range in.Rows {
		if row.Label == "" {
			return fmt.Errorf("statement row without label")
		}
		t.AddRow(row.Label, row.Values...)
	}
	return nil
}
