package resultview

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		kind        Kind
		rows        int
		count       *float64
		countSource string
	}{
		{name: "scalar count", raw: `{"count":469}`, kind: KindScalarSummary, count: ptr(469), countSource: "count"},
		{
			name:        "nested count from count_by_year",
			raw:         `{"year":2024,"count":{"year":2024,"count":469}}`,
			kind:        KindScalarSummary,
			count:       ptr(469),
			countSource: "count.count",
		},
		{name: "total", raw: `{"total":12,"page":1}`, kind: KindScalarSummary, count: ptr(12), countSource: "total"},
		{
			name:        "results rows",
			raw:         `{"results":[{"ID":"1"},{"ID":"2"},{"ID":"3"}]}`,
			kind:        KindRowSet,
			rows:        3,
			count:       ptr(3),
			countSource: "rows",
		},
		{
			name:        "items rows",
			raw:         `{"items":[{"a":1}]}`,
			kind:        KindRowSet,
			rows:        1,
			count:       ptr(1),
			countSource: "rows",
		},
		{
			name:        "bare array",
			raw:         `[{"a":1},{"a":2}]`,
			kind:        KindRowSet,
			rows:        2,
			count:       ptr(2),
			countSource: "rows",
		},
		{
			name:        "reported count wins over row length",
			raw:         `{"results":[{"a":1}],"count":40}`,
			kind:        KindRowSet,
			rows:        1,
			count:       ptr(40),
			countSource: "count",
		},
		{
			name:        "results preferred over items",
			raw:         `{"items":[{"a":1},{"a":2}],"results":[{"b":1}]}`,
			kind:        KindRowSet,
			rows:        1,
			count:       ptr(1),
			countSource: "rows",
		},
		{
			name:        "results of scalars falls through to items",
			raw:         `{"results":[1,2,3],"items":[{"a":1}]}`,
			kind:        KindRowSet,
			rows:        1,
			count:       ptr(1),
			countSource: "rows",
		},
		{name: "empty results", raw: `{"results":[]}`, kind: KindRowSet, rows: 0, count: ptr(0), countSource: "rows"},
		{name: "empty array", raw: `[]`, kind: KindRowSet, rows: 0, count: ptr(0), countSource: "rows"},
		{name: "array of scalars", raw: `[1,2,3]`, kind: KindOpaque},
		{name: "mixed array", raw: `[{"a":1},2]`, kind: KindOpaque},
		{name: "string count is ignored", raw: `{"count":"469"}`, kind: KindOpaque},
		{name: "unrelated object", raw: `{"ok":true}`, kind: KindOpaque},
		{name: "bare number", raw: `42`, kind: KindOpaque},
		{name: "null", raw: `null`, kind: KindOpaque},
		{name: "invalid json", raw: `{"results":[`, kind: KindOpaque},
		{name: "empty body", raw: ``, kind: KindOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify([]byte(tt.raw))

			assert.Equal(t, tt.kind, c.Kind)
			assert.Len(t, c.Rows, tt.rows)
			assert.Equal(t, tt.countSource, c.CountSource)
			if tt.count == nil {
				assert.Nil(t, c.Count)
			} else {
				require.NotNil(t, c.Count)
				assert.Equal(t, *tt.count, *c.Count)
			}
			assert.Equal(t, tt.raw, string(c.Raw))
		})
	}
}

func TestClassify_RecordsKeepDocumentOrder(t *testing.T) {
	c := Classify([]byte(`{"results":[{"zeta":1,"alpha":"x","mid":null,"alpha":"y"}]}`))

	require.Len(t, c.Rows, 1)
	row := c.Rows[0]
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, row.Keys)

	v, ok := row.Get("alpha")
	require.True(t, ok)
	assert.JSONEq(t, `"y"`, string(v))
	assert.True(t, row.Has("mid"))
	assert.False(t, row.Has("missing"))
}

func TestClassification_PrettyJSON(t *testing.T) {
	c := Classify([]byte(`{"ok":true,"nested":{"a":[1,2]}}`))
	assert.Equal(t, "{\n  \"ok\": true,\n  \"nested\": {\n    \"a\": [\n      1,\n      2\n    ]\n  }\n}", c.PrettyJSON())

	broken := Classify([]byte(`not json`))
	assert.Equal(t, KindOpaque, broken.Kind)
	assert.Equal(t, "not json", broken.PrettyJSON())
}

func TestClassify_Idempotent(t *testing.T) {
	raw := []byte(`{"year":2024,"count":{"year":2024,"count":7},"results":[{"a":1}]}`)
	first := Classify(raw)
	second := Classify(first.Raw)
	assert.Equal(t, first, second)
}

func TestClassify_DoesNotAliasInput(t *testing.T) {
	raw := []byte(`{"count":1}`)
	c := Classify(raw)
	raw[2] = 'X'
	assert.Equal(t, `{"count":1}`, string(c.Raw))
}

func TestClassify_Concurrent(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"count":1}`),
		[]byte(`[{"a":1}]`),
		[]byte(`oops`),
	}
	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := Classify(payloads[i%len(payloads)])
			_ = BuildTable("tool", c)
		}(i)
	}
	wg.Wait()
}

func ptr(f float64) *float64 { return &f }

func records(t *testing.T, raw string) []Record {
	t.Helper()
	c := Classify([]byte(raw))
	require.Equal(t, KindRowSet, c.Kind, "fixture must be a row-set")
	return c.Rows
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }
