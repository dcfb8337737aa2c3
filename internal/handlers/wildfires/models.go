// internal/handlers/wildfires/models.go
package wildfires

import "fireaid/internal/models"

type Input struct {
	Keyword string `json:"keyword"`
	State   string `json:"state"`
	Limit   string `json:"limit"`
}

type Output struct {
	Result []models.Incident `json:"result"`
}
