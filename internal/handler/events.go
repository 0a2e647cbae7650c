package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourorg/estatehub/internal/notify"
	"github.com/yourorg/estatehub/internal/service"
)

// EventsHandler streams offer lifecycle events for a property over WebSocket
type EventsHandler struct {
	broker          *notify.Broker
	propertyService *service.PropertyService
	logger          *slog.Logger
	allowedOrigins  []string
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(broker *notify.Broker, propertyService *service.PropertyService, logger *slog.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		broker:          broker,
		propertyService: propertyService,
		logger:          logger,
		allowedOrigins:  allowedOrigins,
	}
}

// upgrader is initialized per-request to use instance's allowed origins
func (h *EventsHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Allow requests with no origin (e.g., non-browser clients)
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/offers/{propertyId}. The identifier goes through
// the resolver, so both identifier formats subscribe to the same stream.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("propertyId")
	if identifier == "" {
		http.Error(w, "missing property id", http.StatusBadRequest)
		return
	}

	property, err := h.propertyService.Resolve(r.Context(), identifier)
	if err != nil {
		writeServiceError(w, err, h.logger, false)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	events, cancel := h.broker.Subscribe(property.ID)
	defer cancel()

	h.logger.Debug("offer event stream opened", slog.String("property_ref", property.ID))

	// Consume control frames so close handshakes are processed
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-ticker.C:
			_ = ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("websocket closed", slog.String("property_ref", property.ID))
				}
				return
			}
		}
	}
}
