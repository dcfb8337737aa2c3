// Package resultview infers the shape of arbitrary tool responses and projects
// them into a bounded table.
//
// Nothing here fails: payloads that match no known shape are classified
// opaque and rendered as indented JSON. All functions are pure and safe for
// concurrent use.
package resultview

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Kind is the inferred shape of a tool response.
type Kind string

const (
	KindRowSet        Kind = "rowSet"
	KindScalarSummary Kind = "scalarSummary"
	KindOpaque        Kind = "opaque"
)

// Record is one row of a row-set. Keys keep document order.
type Record struct {
	Keys   []string
	Values map[string]json.RawMessage
}

// Get returns the raw value of key.
func (r Record) Get(key string) (json.RawMessage, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.Values[key]
	return ok
}

// Classification is the result of Classify.
type Classification struct {
	Kind Kind
	// Rows is set for KindRowSet only.
	Rows []Record
	// Count is the reported or derived count; nil when none exists.
	Count *float64
	// CountSource names the rule that produced Count ("count", "count.count", "total", "rows").
	CountSource string
	// Raw is the payload as received.
	Raw json.RawMessage
}

// PrettyJSON renders Raw with two-space indentation, or verbatim when it is not valid JSON.
func (c Classification) PrettyJSON() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, c.Raw, "", "  "); err != nil {
		return string(c.Raw)
	}
	return buf.String()
}

type rowRule struct {
	name string
	pick func(doc gjson.Result) (gjson.Result, bool)
}

type countRule struct {
	name string
	pick func(doc gjson.Result) (float64, bool)
}

// rowRules are evaluated in order; the first match wins.
var rowRules = []rowRule{
	{name: "results", pick: func(doc gjson.Result) (gjson.Result, bool) { return objectArrayMember(doc, "results") }},
	{name: "items", pick: func(doc gjson.Result) (gjson.Result, bool) { return objectArrayMember(doc, "items") }},
	{name: "array", pick: func(doc gjson.Result) (gjson.Result, bool) { return doc, isObjectArray(doc) }},
}

// countRules are evaluated in order; the first match wins. The nested
// count.count shape is what count_by_year returns and is not generalised.
var countRules = []countRule{
	{name: "count", pick: func(doc gjson.Result) (float64, bool) { return numberMember(doc, "count") }},
	{name: "count.count", pick: func(doc gjson.Result) (float64, bool) {
		inner, ok := member(doc, "count")
		if !ok || !inner.IsObject() {
			return 0, false
		}
		return numberMember(inner, "count")
	}},
	{name: "total", pick: func(doc gjson.Result) (float64, bool) { return numberMember(doc, "total") }},
}

// Classify inspects a raw tool response.
func Classify(raw []byte) Classification {
	c := Classification{Kind: KindOpaque, Raw: json.RawMessage(append([]byte(nil), raw...))}

	if !gjson.ValidBytes(raw) {
		return c
	}
	doc := gjson.ParseBytes(raw)

	rowsFound := false
	for _, rule := range rowRules {
		if arr, ok := rule.pick(doc); ok {
			c.Rows = toRecords(arr)
			rowsFound = true
			break
		}
	}

	for _, rule := range countRules {
		if n, ok := rule.pick(doc); ok {
			c.Count = &n
			c.CountSource = rule.name
			break
		}
	}
	if c.Count == nil && rowsFound {
		n := float64(len(c.Rows))
		c.Count = &n
		c.CountSource = "rows"
	}

	switch {
	case rowsFound:
		c.Kind = KindRowSet
		if c.Rows == nil {
			c.Rows = []Record{}
		}
	case c.Count != nil:
		c.Kind = KindScalarSummary
	}
	return c
}

// member finds key among the direct members of an object. Later duplicates win.
func member(doc gjson.Result, key string) (gjson.Result, bool) {
	if !doc.IsObject() {
		return gjson.Result{}, false
	}
	var found gjson.Result
	ok := false
	doc.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found, ok = v, true
		}
		return true
	})
	return found, ok
}

func numberMember(doc gjson.Result, key string) (float64, bool) {
	v, ok := member(doc, key)
	if !ok || v.Type != gjson.Number {
		return 0, false
	}
	return v.Float(), true
}

func objectArrayMember(doc gjson.Result, key string) (gjson.Result, bool) {
	v, ok := member(doc, key)
	if !ok || !isObjectArray(v) {
		return gjson.Result{}, false
	}
	return v, true
}

// isObjectArray reports an array whose elements are all objects. An empty array qualifies.
func isObjectArray(v gjson.Result) bool {
	if !v.IsArray() {
		return false
	}
	all := true
	v.ForEach(func(_, el gjson.Result) bool {
		if !el.IsObject() {
			all = false
			return false
		}
		return true
	})
	return all
}

func toRecords(arr gjson.Result) []Record {
	var rows []Record
	arr.ForEach(func(_, el gjson.Result) bool {
		rows = append(rows, toRecord(el))
		return true
	})
	return rows
}

func toRecord(obj gjson.Result) Record {
	rec := Record{Values: make(map[string]json.RawMessage)}
	obj.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if _, seen := rec.Values[key]; !seen {
			rec.Keys = append(rec.Keys, key)
		}
		rec.Values[key] = json.RawMessage(v.Raw)
		return true
	})
	return rec
}
