// internal/handlers/results/models.go
package results

import "fireaid/internal/resultview"

type Input struct {
	Tool string `json:"tool"`
	Call string `json:"call"`
}

type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary string     `json:"summary"`
}

type Output struct {
	Tool  string          `json:"tool"`
	Call  string          `json:"call"`
	Kind  resultview.Kind `json:"kind"`
	Count *float64        `json:"count"`
	Badge string          `json:"badge,omitempty"`
	View  resultview.View `json:"view"`
	Table Table           `json:"table"`
	Raw   string          `json:"raw"`
}

// SuggestedCall is what a tool card hands to the result panel.
type SuggestedCall struct {
	Tool    string `json:"tool"`
	Call    string `json:"call"`
	Snippet string `json:"snippet"`
}
