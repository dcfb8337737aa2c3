// internal/handlers/wildfires/handler.go
package wildfires

import (
	"context"
	"net/http"

	apperrors "fireaid/internal/common/errors"
	"fireaid/internal/common/logger"
	"fireaid/internal/featurequery"
	"fireaid/internal/models"
)

const (
	Name  = "wildfires"
	Route = "GET /api/wildfires"
)

// IncidentSource is satisfied by *arcgis.Client.
type IncidentSource interface {
	Query(ctx context.Context, q featurequery.QueryDescriptor) ([]models.Incident, error)
}

type Handler struct {
	config *Config
	source IncidentSource
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, source IncidentSource, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"handler": Name})
	return &Handler{
		config: config,
		source: source,
		errors: apperrors.NewErrorHandler(l),
		logger: l,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := Input{
		Keyword: q.Get("keyword"),
		State:   q.Get("state"),
		Limit:   q.Get("limit"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.errors.WriteHTTPError(w, r, err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, output)
}

// Execute builds the feature query for input and runs it.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	q := featurequery.Build(input.Keyword, input.State, input.Limit)

	h.logger.Debug("querying incidents", map[string]interface{}{
		"where":    q.FilterExpression,
		"pageSize": q.PageSize,
	})

	incidents, err := h.source.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}
	return &Output{Result: incidents}, nil
}
