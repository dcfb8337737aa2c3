// internal/models/incident.go
package models

import (
	"math"
	"time"
)

// ISOMillis is the timestamp layout used for incident dates.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

// maxEpochMillis is the largest representable ECMAScript time value.
const maxEpochMillis = 8.64e15

// Incident is one WFIGS incident as returned by /api/wildfires and search_wildfires.
// Attribute values pass through untyped; absent attributes encode as null.
type Incident struct {
	Name             interface{} `json:"name"`
	State            interface{} `json:"state"`
	Type             interface{} `json:"type"`
	Size             interface{} `json:"size"`
	PercentContained interface{} `json:"percent_contained"`
	County           interface{} `json:"county"`
	Discovered       *string     `json:"discovered"`
	LastUpdated      *string     `json:"last_updated"`
}

// Feature is one element of a feature-service "features" array.
type Feature struct {
	Attributes map[string]interface{} `json:"attributes"`
}

// FeatureSet is the subset of a feature-service query reply the dashboard reads.
type FeatureSet struct {
	Features []Feature   `json:"features"`
	Error    interface{} `json:"error,omitempty"`
}

// IncidentFromAttributes maps WFIGS attribute names onto an Incident.
func IncidentFromAttributes(a map[string]interface{}) Incident {
	return Incident{
		Name:             a["IncidentName"],
		State:            a["POOState"],
		Type:             a["IncidentTypeCategory"],
		Size:             a["IncidentSize"],
		PercentContained: a["PercentContained"],
		County:           a["POOCounty"],
		Discovered:       EpochMillisToISO(a["FireDiscoveryDateTime"]),
		LastUpdated:      EpochMillisToISO(a["ModifiedOnDateTime"]),
	}
}

// EpochMillisToISO converts epoch milliseconds to a UTC timestamp with millisecond
// precision. Missing, zero, non-numeric and out-of-range values yield nil.
func EpochMillisToISO(v interface{}) *string {
	ms, ok := v.(float64)
	if !ok || ms == 0 || math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
		return nil
	}
	s := time.UnixMilli(int64(ms)).UTC().Format(ISOMillis)
	return &s
}
