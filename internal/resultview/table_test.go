package resultview

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firePointsPayload(n int) string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf(
			`{"MAPNAME":"map-%d","ID":"%d","EXTRA":"x","NAME":"Fire %d","FIRESEASON":"2024","PRESCRIBEDFIRE":"Y","LATITUDE":64.8378,"LONGITUDE":-147.7164}`,
			i, i, i,
		)
	}
	return `{"results":[` + strings.Join(rows, ",") + `]}`
}

func TestSelectColumns(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		raw      string
		expected []string
	}{
		{
			name:     "fire points preset keeps candidate order and drops absent keys",
			tool:     "search_fire_points",
			raw:      firePointsPayload(1),
			expected: []string{"ID", "NAME", "FIRESEASON", "PRESCRIBEDFIRE", "LATITUDE", "LONGITUDE", "MAPNAME"},
		},
		{
			name:     "preset match is case-insensitive substring",
			tool:     "FireMCP.Search_Fire_Points_v2",
			raw:      `[{"NAME":"a","ID":"1"}]`,
			expected: []string{"ID", "NAME"},
		},
		{
			name:     "generic tool takes first six keys in order",
			tool:     "other",
			raw:      `[{"h":1,"g":2,"f":3,"e":4,"d":5,"c":6,"b":7,"a":8}]`,
			expected: []string{"h", "g", "f", "e", "d", "c"},
		},
		{
			name:     "fewer than six keys",
			tool:     "",
			raw:      `[{"b":1,"a":2}]`,
			expected: []string{"b", "a"},
		},
		{
			name:     "only the first row is inspected",
			tool:     "other",
			raw:      `[{"a":1},{"a":2,"b":3}]`,
			expected: []string{"a"},
		},
		{
			name:     "empty row-set",
			tool:     "search_fire_points",
			raw:      `{"results":[]}`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SelectColumns(tt.tool, records(t, tt.raw)))
		})
	}
}

func TestSelectColumns_NoRows(t *testing.T) {
	assert.Equal(t, []string{}, SelectColumns("anything", nil))
}

func TestBuildTable_RowSet(t *testing.T) {
	c := Classify([]byte(firePointsPayload(25)))
	tv := BuildTable("search_fire_points", c)

	assert.Equal(t, ViewTable, tv.View)
	assert.Equal(t, "rows: 25", tv.Badge)
	assert.Equal(t, "Showing 10 of 25 rows", tv.Summary)
	require.Len(t, tv.Rows, MaxTableRows)
	assert.Equal(t, []string{"0", "Fire 0", "2024", "Y", "64.838", "-147.7164", "map-0"}, tv.Rows[0])
	for _, row := range tv.Rows {
		assert.Len(t, row, len(tv.Columns))
	}
}

func TestBuildTable_MissingKeysRenderEmpty(t *testing.T) {
	c := Classify([]byte(`[{"a":1,"b":2},{"a":3}]`))
	tv := BuildTable("list", c)

	assert.Equal(t, []string{"a", "b"}, tv.Columns)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", ""}}, tv.Rows)
	assert.Equal(t, "Showing 2 of 2 rows", tv.Summary)
}

func TestBuildTable_ScalarSummary(t *testing.T) {
	c := Classify([]byte(`{"year":2024,"count":{"year":2024,"count":469}}`))
	tv := BuildTable("count_by_year", c)

	assert.Equal(t, ViewJSON, tv.View)
	assert.Equal(t, "count: 469", tv.Badge)
	assert.Empty(t, tv.Columns)
	assert.Empty(t, tv.Rows)
	assert.Empty(t, tv.Summary)
}

func TestBuildTable_Opaque(t *testing.T) {
	tv := BuildTable("whatever", Classify([]byte(`{"ok":true}`)))

	assert.Equal(t, ViewJSON, tv.View)
	assert.Empty(t, tv.Badge)
	assert.NotNil(t, tv.Columns)
	assert.NotNil(t, tv.Rows)
}

func TestBadge(t *testing.T) {
	tests := []struct {
		tool     string
		count    *float64
		expected string
	}{
		{tool: "count_by_year", count: ptr(469), expected: "count: 469"},
		{tool: "Incident_COUNT", count: ptr(3), expected: "count: 3"},
		{tool: "search_fire_points", count: ptr(10), expected: "rows: 10"},
		{tool: "stats", count: ptr(2.5), expected: "rows: 2.5"},
		{tool: "count_by_year", count: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			assert.Equal(t, tt.expected, Badge(tt.tool, tt.count))
		})
	}
}
