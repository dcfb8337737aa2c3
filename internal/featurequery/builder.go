// Package featurequery turns dashboard filter inputs into a WFIGS feature-service query.
//
// Build and BuildRequest are pure: they never touch the network and never fail.
// Malformed input falls back to defaults.
package featurequery

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseClause is the tautology every filter expression starts with.
	BaseClause = "1=1"

	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 50

	// SortField is the attribute results are ordered by.
	SortField = "FireDiscoveryDateTime"

	statePrefix = "US-"
)

// SortDirection is the order applied to SortField.
type SortDirection string

const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// Fields are the incident attributes requested from the layer, in request order.
var Fields = []string{
	"IncidentName",
	"POOState",
	"IncidentTypeCategory",
	"IncidentSize",
	"PercentContained",
	"ModifiedOnDateTime",
	"POOCounty",
	"FireDiscoveryDateTime",
}

// FilterRequest is the raw user input.
type FilterRequest struct {
	Keyword    string `json:"keyword"`
	RegionCode string `json:"state"`
	Limit      string `json:"limit"`
}

// QueryDescriptor is a fully resolved feature query.
type QueryDescriptor struct {
	FilterExpression string
	Fields           []string
	SortField        string
	SortDirection    SortDirection
	PageSize         int
}

// Build resolves keyword, region code and limit into a QueryDescriptor.
//
// Keyword matching is a case-sensitive LIKE: the layer stores incident names in
// mixed case and offers no case-insensitive operator.
func Build(keyword, regionCode, rawLimit string) QueryDescriptor {
	clauses := []string{BaseClause}

	if kw := strings.TrimSpace(keyword); kw != "" {
		clauses = append(clauses, "IncidentName LIKE '%"+escapeLiteral(kw)+"%'")
	}

	if code := strings.ToUpper(strings.TrimSpace(regionCode)); code != "" {
		clauses = append(clauses, "POOState = '"+statePrefix+escapeLiteral(code)+"'")
	}

	fields := make([]string, len(Fields))
	copy(fields, Fields)

	return QueryDescriptor{
		FilterExpression: strings.Join(clauses, " AND "),
		Fields:           fields,
		SortField:        SortField,
		SortDirection:    Descending,
		PageSize:         ParseLimit(rawLimit),
	}
}

// BuildRequest is Build for a FilterRequest.
func BuildRequest(req FilterRequest) QueryDescriptor {
	return Build(req.Keyword, req.RegionCode, req.Limit)
}

// ParseLimit parses the leading decimal integer of raw ("25", "-3", "7.5", "12rows"),
// defaulting to DefaultPageSize when there is none, and clamps into [MinPageSize, MaxPageSize].
func ParseLimit(raw string) int {
	n, ok := leadingInt(strings.TrimSpace(raw))
	if !ok {
		n = DefaultPageSize
	}
	return clamp(n, MinPageSize, MaxPageSize)
}

// leadingInt saturates instead of overflowing; anything past MaxPageSize clamps anyway.
func leadingInt(s string) (int, bool) {
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for ; digits < len(s) && s[digits] >= '0' && s[digits] <= '9'; digits++ {
		if n < 1_000_000 {
			n = n*10 + int(s[digits]-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// escapeLiteral doubles single quotes for use inside a quoted SQL-92 literal.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// OrderBy renders the orderByFields parameter.
func (q QueryDescriptor) OrderBy() string {
	return q.SortField + " " + string(q.SortDirection)
}

// Values encodes the descriptor as ArcGIS REST query parameters.
func (q QueryDescriptor) Values() url.Values {
	v := url.Values{}
	v.Set("f", "json")
	v.Set("where", q.FilterExpression)
	v.Set("outFields", strings.Join(q.Fields, ","))
	v.Set("returnGeometry", "false")
	v.Set("resultRecordCount", strconv.Itoa(q.PageSize))
	v.Set("orderByFields", q.OrderBy())
	return v
}
