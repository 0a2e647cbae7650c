package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/service"
)

// PropertiesHandler handles the property browsing endpoints
type PropertiesHandler struct {
	propertyService *service.PropertyService
	logger          *slog.Logger
	development     bool
}

// NewPropertiesHandler creates a new properties handler
func NewPropertiesHandler(propertyService *service.PropertyService, logger *slog.Logger, development bool) *PropertiesHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PropertiesHandler{
		propertyService: propertyService,
		logger:          logger,
		development:     development,
	}
}

// PropertyResponse is the listing shape returned to the frontend. The id
// field carries the human-readable identifier when the record has one.
type PropertyResponse struct {
	ID           string   `json:"id"`
	NativeID     string   `json:"_id"`
	PropertyID   string   `json:"propertyId,omitempty"`
	Title        string   `json:"title"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Price        float64  `json:"price"`
	Description  string   `json:"description,omitempty"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Area         float64  `json:"area"`
	PropertyType string   `json:"propertyType,omitempty"`
	Features     []string `json:"features"`
	ImageURLs    []string `json:"imageUrls"`
	ListedBy     string   `json:"listedBy,omitempty"`
}

func toPropertyResponse(p *domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:           p.DisplayID(),
		NativeID:     p.ID,
		PropertyID:   p.PropertyID,
		Title:        p.Title,
		Address:      p.Address,
		City:         p.City,
		Price:        p.Price,
		Description:  p.Description,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Area:         p.Area,
		PropertyType: p.PropertyType,
		Features:     p.Features,
		ImageURLs:    p.ImageURLs,
		ListedBy:     p.ListedBy,
	}
}

func filterFromQuery(q map[string][]string) domain.PropertyFilter {
	get := func(key string) string {
		if vs, ok := q[key]; ok && len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	filter := domain.PropertyFilter{
		Query:        get("query"),
		City:         get("city"),
		PropertyType: get("propertyType"),
	}
	if v, err := strconv.ParseFloat(get("minPrice"), 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseFloat(get("maxPrice"), 64); err == nil {
		filter.MaxPrice = v
	}
	if v, err := strconv.Atoi(get("bedrooms")); err == nil {
		filter.Bedrooms = v
	}
	if v, err := strconv.Atoi(get("bathrooms")); err == nil {
		filter.Bathrooms = v
	}
	if features := get("features"); features != "" {
		for _, f := range strings.Split(features, ",") {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				filter.Features = append(filter.Features, trimmed)
			}
		}
	}
	return filter
}

// List handles GET /api/properties
func (h *PropertiesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r.URL.Query())
	// Free-text query belongs to the search endpoint
	filter.Query = ""
	filter.Bathrooms = 0
	filter.Features = nil

	properties, err := h.propertyService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	items := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		items = append(items, toPropertyResponse(p))
	}

	writeJSON(w, http.StatusOK, items)
}

// Search handles GET /api/properties/search
func (h *PropertiesHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r.URL.Query())

	properties, err := h.propertyService.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	items := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		items = append(items, toPropertyResponse(p))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": items,
		"count":   len(items),
		"filters": r.URL.Query(),
	})
}

// Get handles GET /api/properties/{id}, accepting either identifier format
func (h *PropertiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	property, err := h.propertyService.Resolve(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	writeJSON(w, http.StatusOK, toPropertyResponse(property))
}

// CreateRequest represents a new listing submission
type CreatePropertyRequest struct {
	PropertyID   string   `json:"propertyId"`
	Title        string   `json:"title"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Area         float64  `json:"area"`
	PropertyType string   `json:"propertyType"`
	Features     []string `json:"features"`
	ImageURLs    []string `json:"imageUrls"`
	ListedBy     string   `json:"listedBy"`
}

// Create handles POST /api/properties
func (h *PropertiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode property request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	property := &domain.Property{
		PropertyID:   req.PropertyID,
		Title:        req.Title,
		Address:      req.Address,
		City:         req.City,
		Price:        req.Price,
		Description:  req.Description,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Area:         req.Area,
		PropertyType: req.PropertyType,
		Features:     req.Features,
		ImageURLs:    req.ImageURLs,
		ListedBy:     req.ListedBy,
	}

	if err := h.propertyService.CreateListing(r.Context(), property); err != nil {
		writeServiceError(w, err, h.logger, h.development)
		return
	}

	writeJSON(w, http.StatusCreated, toPropertyResponse(property))
}
