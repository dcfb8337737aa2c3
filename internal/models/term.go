// internal/models/term.go
package models

import "time"

// Term is a Terminology Library entry.
type Term struct {
	ID         int64     `json:"id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	CreatedAt  time.Time `json:"createdAt"`
}
