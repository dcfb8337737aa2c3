// Package toolserver is the FireMCP tool backend: fire-point tools over Mongo
// and the live wildfire search over ArcGIS, served over HTTP and MCP stdio.
package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "fireaid/internal/common/errors"
	"fireaid/internal/common/validation"
	"fireaid/internal/featurequery"
	"fireaid/internal/models"
)

const (
	ToolSearchFirePoints = "search_fire_points"
	ToolCountByYear      = "count_by_year"
	ToolSearchWildfires  = "search_wildfires"

	DefaultFirePointLimit = 20
)

// Tool is one invocable backend tool.
type Tool interface {
	Name() string
	Description() string
	Schema() *validation.Schema
	Execute(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// FirePointStore is satisfied by *firepoints.Store.
type FirePointStore interface {
	Search(ctx context.Context, q models.FirePointQuery) ([]json.RawMessage, error)
	CountByYear(ctx context.Context, year int) (models.YearCount, error)
}

// IncidentSource is satisfied by *arcgis.Client.
type IncidentSource interface {
	Query(ctx context.Context, q featurequery.QueryDescriptor) ([]models.Incident, error)
}

var (
	searchFirePointsSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"year":       {"type": ["integer", "string", "null"], "description": "Fire season, e.g. 2024"},
			"prescribed": {"type": ["string", "null"], "description": "Y or N"},
			"org":        {"type": ["string", "null"], "description": "Management org id (MGMTORGID)"},
			"limit":      {"type": ["integer", "string", "null"], "description": "1-100, default 20"}
		}
	}`)

	countByYearSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"year": {"type": ["integer", "string"], "description": "Fire season, e.g. 2024"}
		},
		"required": ["year"]
	}`)

	searchWildfiresSchema = validation.MustCompile(`{
		"type": "object",
		"properties": {
			"keyword": {"type": ["string", "null"], "description": "Match incident name (contains)"},
			"state":   {"type": ["string", "null"], "description": "State code, e.g. AK or US-AK"},
			"limit":   {"type": ["number", "string", "null"], "description": "1-50, default 10"}
		}
	}`)
)

type searchFirePointsTool struct {
	store FirePointStore
}

func (t *searchFirePointsTool) Name() string { return ToolSearchFirePoints }

func (t *searchFirePointsTool) Description() string {
	return "Search raw Alaska fire location points by year, prescribed flag (Y/N) and management org."
}

func (t *searchFirePointsTool) Schema() *validation.Schema { return searchFirePointsSchema }

func (t *searchFirePointsTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	q := models.FirePointQuery{Limit: DefaultFirePointLimit}

	year, ok, err := intArg(args, "year")
	if err != nil {
		return nil, apperrors.NewInvalidToolArgsError(t.Name(), err.Error())
	}
	if ok {
		q.Year = &year
	}
	if limit, ok, err := intArg(args, "limit"); err != nil {
		return nil, apperrors.NewInvalidToolArgsError(t.Name(), err.Error())
	} else if ok {
		q.Limit = limit
	}
	q.Prescribed = stringArg(args, "prescribed")
	q.Org = stringArg(args, "org")

	docs, err := t.store.Search(ctx, q)
	if err != nil {
		return nil, apperrors.NewStoreFailedError(t.Name(), err)
	}
	return docs, nil
}

type countByYearTool struct {
	store FirePointStore
}

func (t *countByYearTool) Name() string { return ToolCountByYear }

func (t *countByYearTool) Description() string {
	return "Count Alaska fire location points recorded for a fire season."
}

func (t *countByYearTool) Schema() *validation.Schema { return countByYearSchema }

func (t *countByYearTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	year, ok, err := intArg(args, "year")
	if err != nil {
		return nil, apperrors.NewInvalidToolArgsError(t.Name(), err.Error())
	}
	if !ok {
		return nil, apperrors.NewInvalidToolArgsError(t.Name(), "year: required")
	}

	count, err := t.store.CountByYear(ctx, year)
	if err != nil {
		return nil, apperrors.NewStoreFailedError(t.Name(), err)
	}
	return count, nil
}

type searchWildfiresTool struct {
	source IncidentSource
}

func (t *searchWildfiresTool) Name() string { return ToolSearchWildfires }

func (t *searchWildfiresTool) Description() string {
	return "Search current wildland fire incidents (ArcGIS WFIGS). State format is typically 'US-CA'."
}

func (t *searchWildfiresTool) Schema() *validation.Schema { return searchWildfiresSchema }

func (t *searchWildfiresTool) Execute(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	q := featurequery.Build(
		stringArg(args, "keyword"),
		StateCode(stringArg(args, "state")),
		rawArg(args, "limit"),
	)
	return t.source.Query(ctx, q)
}

// StateCode accepts "AK" or "US-AK" and returns the bare code the query builder prefixes.
func StateCode(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 3 && strings.EqualFold(s[:3], "US-") {
		return s[3:]
	}
	return s
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// rawArg renders a scalar argument the way a query string would carry it.
func rawArg(args map[string]interface{}, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

// intArg reads an integer argument given as a JSON number or a decimal string.
// Absent and null report ok=false.
func intArg(args map[string]interface{}, key string) (int, bool, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, false, nil
	case int:
		return v, true, nil
	case int64:
		return int(v), true, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false, fmt.Errorf("%s: must be an integer", key)
		}
		return int(v), true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false, fmt.Errorf("%s: must be an integer", key)
		}
		return n, true, nil
	}
	return 0, false, fmt.Errorf("%s: must be an integer", key)
}
