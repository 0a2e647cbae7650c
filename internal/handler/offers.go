package handler

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/security/audit"
	"github.com/yourorg/estatehub/internal/security/middleware"
	"github.com/yourorg/estatehub/internal/service"
)

// OffersHandler handles the offer workflow endpoints
type OffersHandler struct {
	offerService *service.OfferService
	auditLog     *audit.Logger
	logger       *slog.Logger
	development  bool
}

// NewOffersHandler creates a new offers handler
func NewOffersHandler(offerService *service.OfferService, auditLog *audit.Logger, logger *slog.Logger, development bool) *OffersHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OffersHandler{
		offerService: offerService,
		auditLog:     auditLog,
		logger:       logger,
		development:  development,
	}
}

// CreateOfferRequest represents an offer submission. Amount is accepted as a
// JSON number or a numeric string; older frontends submit it either way.
type CreateOfferRequest struct {
	Property string      `json:"property"`
	Amount   interface{} `json:"amount"`
	Message  string      `json:"message"`
}

func coerceAmount(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, isFinite(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, isFinite(f)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, isFinite(f)
	case nil:
		return 0, true
	default:
		return 0, false
	}
}

// isFinite rejects NaN and infinities: strconv parses them, but a non-finite
// amount cannot be stored or re-encoded as JSON.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Create handles POST /api/offers
func (h *OffersHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserFromContext(r.Context())

	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode offer request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	amount, ok := coerceAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	view, err := h.offerService.Create(r.Context(), service.CreateInput{
		UserID:             userID,
		PropertyIdentifier: req.Property,
		Amount:             amount,
		Message:            req.Message,
	})
	if err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	h.auditLog.LogOfferCreated(r.Context(), userID, view.ID, "completed", "")
	writeJSON(w, http.StatusCreated, view)
}

// ListMine handles GET /api/offers/my
func (h *OffersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserFromContext(r.Context())

	views, err := h.offerService.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	if views == nil {
		views = []*domain.OfferView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// ListByProperty handles GET /api/offers/{propertyId}
func (h *OffersHandler) ListByProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := r.PathValue("propertyId")

	views, err := h.offerService.ListForProperty(r.Context(), propertyID)
	if err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	if views == nil {
		views = []*domain.OfferView{}
	}
	writeJSON(w, http.StatusOK, views)
}

// UpdateStatusRequest carries the target offer status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/offers/{offerId}/status
func (h *OffersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	offerID := r.PathValue("offerId")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	view, err := h.offerService.UpdateStatus(r.Context(), offerID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	h.auditLog.LogStatusChange(r.Context(), middleware.GetUserFromContext(r.Context()), offerID, req.Status)
	writeJSON(w, http.StatusOK, view)
}
