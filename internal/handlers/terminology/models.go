// internal/handlers/terminology/models.go
package terminology

import "fireaid/internal/models"

type AddInput struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type ListOutput struct {
	Terms []models.Term `json:"terms"`
}
