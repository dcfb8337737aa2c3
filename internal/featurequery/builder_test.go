package featurequery

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_FilterExpression(t *testing.T) {
	tests := []struct {
		name       string
		keyword    string
		regionCode string
		expected   string
	}{
		{name: "no filters", expected: "1=1"},
		{name: "whitespace only", keyword: "   ", regionCode: "\t", expected: "1=1"},
		{name: "keyword", keyword: "CARTER", expected: "1=1 AND IncidentName LIKE '%CARTER%'"},
		{name: "keyword trimmed", keyword: "  Creek ", expected: "1=1 AND IncidentName LIKE '%Creek%'"},
		{name: "keyword case preserved", keyword: "carter", expected: "1=1 AND IncidentName LIKE '%carter%'"},
		{name: "state uppercased", regionCode: " ca ", expected: "1=1 AND POOState = 'US-CA'"},
		{
			name:       "keyword and state",
			keyword:    "Fox",
			regionCode: "ak",
			expected:   "1=1 AND IncidentName LIKE '%Fox%' AND POOState = 'US-AK'",
		},
		{name: "quote doubled", keyword: "O'Brien", expected: "1=1 AND IncidentName LIKE '%O''Brien%'"},
		{
			name:     "injection attempt contained in literal",
			keyword:  "x' OR '1'='1",
			expected: "1=1 AND IncidentName LIKE '%x'' OR ''1''=''1%'",
		},
		{name: "state quote doubled", regionCode: "c'a", expected: "1=1 AND POOState = 'US-C''A'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Build(tt.keyword, tt.regionCode, "")
			assert.Equal(t, tt.expected, q.FilterExpression)
		})
	}
}

func TestBuild_ExpressionAlwaysStartsWithBase(t *testing.T) {
	inputs := []string{"", "a", "'", "''", "%", "'; DROP TABLE x; --", "名前", " US-CA "}
	for _, kw := range inputs {
		for _, st := range inputs {
			q := Build(kw, st, "5")
			assert.True(t, strings.HasPrefix(q.FilterExpression, BaseClause), "keyword=%q state=%q", kw, st)
			assert.Equal(t, 0, strings.Count(q.FilterExpression, "'")%2, "quotes must balance for keyword=%q state=%q", kw, st)
		}
	}
}

func TestBuild_PageSize(t *testing.T) {
	tests := []struct {
		rawLimit string
		expected int
	}{
		{rawLimit: "", expected: 10},
		{rawLimit: "abc", expected: 10},
		{rawLimit: "25", expected: 25},
		{rawLimit: " 7 ", expected: 7},
		{rawLimit: "0", expected: 1},
		{rawLimit: "-5", expected: 1},
		{rawLimit: "1", expected: 1},
		{rawLimit: "50", expected: 50},
		{rawLimit: "51", expected: 50},
		{rawLimit: "1000000000000000000000", expected: 50},
		{rawLimit: "7.9", expected: 7},
		{rawLimit: "12rows", expected: 12},
		{rawLimit: "+3", expected: 3},
		{rawLimit: "-", expected: 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %q", tt.rawLimit), func(t *testing.T) {
			q := Build("", "", tt.rawLimit)
			assert.Equal(t, tt.expected, q.PageSize)
			assert.GreaterOrEqual(t, q.PageSize, MinPageSize)
			assert.LessOrEqual(t, q.PageSize, MaxPageSize)
		})
	}
}

func TestBuild_ConstantsAndSort(t *testing.T) {
	q := Build("Fox", "AK", "10")

	assert.Equal(t, []string{
		"IncidentName", "POOState", "IncidentTypeCategory", "IncidentSize",
		"PercentContained", "ModifiedOnDateTime", "POOCounty", "FireDiscoveryDateTime",
	}, q.Fields)
	assert.Equal(t, "FireDiscoveryDateTime", q.SortField)
	assert.Equal(t, Descending, q.SortDirection)
	assert.Equal(t, "FireDiscoveryDateTime DESC", q.OrderBy())

	q.Fields[0] = "mutated"
	assert.Equal(t, "IncidentName", Build("", "", "").Fields[0], "descriptors must not share the field slice")
}

func TestBuildRequest(t *testing.T) {
	q := BuildRequest(FilterRequest{Keyword: "Oak", RegionCode: "or", Limit: "3"})
	assert.Equal(t, Build("Oak", "or", "3"), q)
}

func TestQueryDescriptor_Values(t *testing.T) {
	q := Build("O'Neil", "ca", "5")
	v := q.Values()

	assert.Equal(t, "json", v.Get("f"))
	assert.Equal(t, "1=1 AND IncidentName LIKE '%O''Neil%' AND POOState = 'US-CA'", v.Get("where"))
	assert.Equal(t, strings.Join(Fields, ","), v.Get("outFields"))
	assert.Equal(t, "false", v.Get("returnGeometry"))
	assert.Equal(t, "5", v.Get("resultRecordCount"))
	assert.Equal(t, "FireDiscoveryDateTime DESC", v.Get("orderByFields"))
	assert.Len(t, v, 6)

	encoded := v.Encode()
	require.NotContains(t, encoded, " ")
	assert.Contains(t, encoded, "where=1%3D1")
}

func TestBuild_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := Build(fmt.Sprintf("kw%d", i), "ak", fmt.Sprintf("%d", i))
			assert.Contains(t, q.FilterExpression, fmt.Sprintf("'%%kw%d%%'", i))
		}(i)
	}
	wg.Wait()
}
