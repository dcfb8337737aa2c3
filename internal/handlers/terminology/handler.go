// internal/handlers/terminology/handler.go
package terminology

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "fireaid/internal/common/errors"
	"fireaid/internal/common/logger"
	"fireaid/internal/models"
	"fireaid/internal/terms"
)

const (
	Name = "terminology"

	RouteList       = "GET /api/terms"
	RouteLegacyList = "GET /api/get_terms"
	RouteAdd        = "POST /api/terms"
	RouteSearch     = "GET /api/terms/search"

	maxBodyBytes = 64 << 10
)

// Store is satisfied by *terms.Store.
type Store interface {
	List(ctx context.Context) ([]models.Term, error)
	Search(ctx context.Context, q string, limit int) ([]models.Term, error)
	Add(ctx context.Context, term, definition string) (*models.Term, error)
}

type Handler struct {
	config *Config
	store  Store
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, store Store, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"handler": Name})
	return &Handler{
		config: config,
		store:  store,
		errors: apperrors.NewErrorHandler(l),
		logger: l,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(RouteList, h.List)
	mux.HandleFunc(RouteAdd, h.Add)
	mux.HandleFunc(RouteSearch, h.Search)
	// The terminology panel reads a bare array from the legacy route.
	mux.HandleFunc(RouteLegacyList, h.LegacyList)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	list, err := h.store.List(ctx)
	if err != nil {
		h.errors.WriteHTTPError(w, r, mapError("list", err))
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, ListOutput{Terms: list})
}

func (h *Handler) LegacyList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	list, err := h.store.List(ctx)
	if err != nil {
		h.errors.WriteHTTPError(w, r, mapError("list", err))
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	list, err := h.store.Search(ctx, r.URL.Query().Get("q"), h.config.SearchLimit)
	if err != nil {
		h.errors.WriteHTTPError(w, r, mapError("search", err))
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, ListOutput{Terms: list})
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var input AddInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		h.errors.WriteHTTPError(w, r, apperrors.NewValidationFailedError(fmt.Sprintf("invalid JSON body: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	term, err := h.store.Add(ctx, input.Term, input.Definition)
	if err != nil {
		h.errors.WriteHTTPError(w, r, mapError("add", err))
		return
	}

	h.logger.Info("term added", map[string]interface{}{"id": term.ID, "term": term.Term})
	apperrors.WriteJSON(w, http.StatusCreated, term)
}

func mapError(operation string, err error) error {
	switch {
	case errors.Is(err, terms.ErrMissingField):
		return apperrors.NewMissingParameterError(fmt.Sprintf("Missing %s", missingField(err)))
	case errors.Is(err, terms.ErrQueryTimeout):
		return apperrors.NewUpstreamTimeoutError("terminology store")
	default:
		return apperrors.NewStoreFailedError(operation, err)
	}
}

// missingField extracts "term" from "MISSING_FIELD: term".
func missingField(err error) string {
	msg := err.Error()
	prefix := terms.ErrMissingField.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return "field"
}
