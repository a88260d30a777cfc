package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod_DateLike(t *testing.T) {
	p := NewPeriod("2023-12-31")
	assert.False(t, p.Date.IsZero())
	assert.Equal(t, "2023-12-31", p.String())

	raw := NewPeriod("FY2023")
	assert.True(t, raw.Date.IsZero())
	assert.Equal(t, "FY2023", raw.String())
}

func TestStatementTable_AddRowKeepsFirstDuplicate(t *testing.T) {
	tbl := NewStatementTable(NewPeriod("2023-12-31"), NewPeriod("2022-12-31"))
	assert.True(t, tbl.AddRow("Total Revenue", Some(100), Some(90)))
	assert.False(t, tbl.AddRow("Total Revenue", Some(1), Some(1)))

	assert.Equal(t, Some(100), tbl.Cell("Total Revenue", 0))
	assert.Equal(t, []string{"Total Revenue"}, tbl.Labels())
}

func TestStatementTable_ShortRowsArePadded(t *testing.T) {
	tbl := NewStatementTable(NewPeriod("2023-12-31"), NewPeriod("2022-12-31"))
	tbl.AddRow("Net Income", Some(5))

	assert.Equal(t, Some(5), tbl.Cell("Net Income", 0))
	assert.True(t, tbl.Cell("Net Income", 1).IsMissing())
	assert.True(t, tbl.Cell("Net Income", 2).IsMissing())
	assert.True(t, tbl.Cell("Gross Profit", 0).IsMissing())
	assert.Len(t, tbl.Row("Net Income"), 2)
}

func TestStatementTable_Empty(t *testing.T) {
	var nilTable *StatementTable
	assert.True(t, nilTable.Empty())
	assert.False(t, nilTable.Has("Total Revenue"))

	noRows := NewStatementTable(NewPeriod("2023-12-31"))
	assert.True(t, noRows.Empty())

	noPeriods := NewStatementTable()
	noPeriods.AddRow("Total Revenue")
	assert.True(t, noPeriods.Empty())

	full := NewStatementTable(NewPeriod("2023-12-31"))
	full.AddRow("Total Revenue", Some(1))
	assert.False(t, full.Empty())

	latest, ok := full.Latest()
	require.True(t, ok)
	assert.Equal(t, "2023-12-31", latest.Key)
	assert.Equal(t, 0, full.PeriodIndex("2023-12-31"))
	assert.Equal(t, -1, full.PeriodIndex("2020-12-31"))
}

func TestStatementTable_JSONRoundTrip(t *testing.T) {
	in := `{"periods":["2023-12-31","2022-12-31"],"rows":[{"label":"Total Revenue","values":[120,null]},{"label":"Net Income","values":[10,8]}]}`

	var tbl StatementTable
	require.NoError(t, json.Unmarshal([]byte(in), &tbl))

	assert.Equal(t, []string{"Total Revenue", "Net Income"}, tbl.Labels())
	assert.Equal(t, Some(120), tbl.Cell("Total Revenue", 0))
	assert.True(t, tbl.Cell("Total Revenue", 1).IsMissing())
	assert.Equal(t, "2023-12-31", tbl.Periods[0].String())

	out, err := json.Marshal(&tbl)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestStatementTable_UnmarshalRejectsUnlabelledRow(t *testing.T) {
	var tbl StatementTable
	err := json.Unmarshal([]byte(`{"periods":["2023"],"rows":[{"values":[1]}]}`), &tbl)
	assert.Error(t, err)
}
