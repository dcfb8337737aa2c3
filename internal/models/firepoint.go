// internal/models/firepoint.go
package models

// FirePointProjection lists the fields returned by search_fire_points.
var FirePointProjection = []string{
	"ID", "NAME", "FIRESEASON", "MGMTORGID", "PRESCRIBEDFIRE", "LATITUDE", "LONGITUDE", "MAPNAME",
}

// FirePointQuery filters the AK fire location points collection.
type FirePointQuery struct {
	Year       *int   `json:"year,omitempty"`
	Prescribed string `json:"prescribed,omitempty"` // "Y" or "N"; anything else is ignored
	Org        string `json:"org,omitempty"`
	Limit      int    `json:"limit"`
}

// YearCount is the count_by_year result.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}
