package test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/handler"
	"github.com/yourorg/estatehub/internal/infrastructure/logger"
	"github.com/yourorg/estatehub/internal/notify"
	"github.com/yourorg/estatehub/internal/security/audit"
	"github.com/yourorg/estatehub/internal/security/auth"
	"github.com/yourorg/estatehub/internal/security/middleware"
	"github.com/yourorg/estatehub/internal/service"
)

// memoryStore backs the in-memory repositories used by the API tests
type memoryStore struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	properties map[string]*domain.Property
	offers     map[string]*domain.Offer
	offerOrder []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      map[string]*domain.User{},
		properties: map[string]*domain.Property{},
		offers:     map[string]*domain.Offer{},
	}
}

type userStore struct{ s *memoryStore }

func (r *userStore) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = u
	return nil
}

func (r *userStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *userStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *userStore) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	r.s.users[u.ID] = u
	return nil
}

type propertyStore struct{ s *memoryStore }

func (r *propertyStore) Create(_ context.Context, p *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.PropertyID != "" {
		for _, existing := range r.s.properties {
			if existing.PropertyID == p.PropertyID {
				return domain.ErrDuplicate
			}
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.s.properties[p.ID] = p
	return nil
}

func (r *propertyStore) GetByID(_ context.Context, id string) (*domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.properties[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *propertyStore) GetByPropertyID(_ context.Context, propertyID string) (*domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.properties {
		if p.PropertyID == propertyID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *propertyStore) List(_ context.Context, filter domain.PropertyFilter) ([]*domain.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Property{}
	for _, p := range r.s.properties {
		if filter.City != "" && !strings.EqualFold(p.City, filter.City) {
			continue
		}
		if filter.PropertyType != "" && p.PropertyType != filter.PropertyType {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		if filter.Query != "" {
			q := strings.ToLower(filter.Query)
			if !strings.Contains(strings.ToLower(p.Title), q) &&
				!strings.Contains(strings.ToLower(p.Address), q) &&
				!strings.Contains(strings.ToLower(p.Description), q) {
				continue
			}
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *propertyStore) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.properties), nil
}

type offerStore struct{ s *memoryStore }

func (r *offerStore) Create(_ context.Context, o *domain.Offer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.s.offers[o.ID] = o
	r.s.offerOrder = append(r.s.offerOrder, o.ID)
	return nil
}

func (r *offerStore) GetByID(_ context.Context, id string) (*domain.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.offers[id]; ok {
		copied := *o
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (r *offerStore) GetView(_ context.Context, id string) (*domain.OfferView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.viewLocked(o), nil
}

func (r *offerStore) ListByUser(_ context.Context, userRef string) ([]*domain.OfferView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.OfferView{}
	for i := len(r.s.offerOrder) - 1; i >= 0; i-- {
		if o := r.s.offers[r.s.offerOrder[i]]; o.UserRef == userRef {
			out = append(out, r.viewLocked(o))
		}
	}
	return out, nil
}

func (r *offerStore) ListByProperty(_ context.Context, propertyRef string) ([]*domain.OfferView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.OfferView{}
	for i := len(r.s.offerOrder) - 1; i >= 0; i-- {
		if o := r.s.offers[r.s.offerOrder[i]]; o.PropertyRef == propertyRef {
			out = append(out, r.viewLocked(o))
		}
	}
	return out, nil
}

func (r *offerStore) UpdateStatus(_ context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (r *offerStore) CountByStatus(_ context.Context, status string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, o := range r.s.offers {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *offerStore) viewLocked(o *domain.Offer) *domain.OfferView {
	v := &domain.OfferView{
		ID:        o.ID,
		Amount:    o.Amount,
		Message:   o.Message,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if p, ok := r.s.properties[o.PropertyRef]; ok {
		v.Property = p.Projection()
	}
	if u, ok := r.s.users[o.UserRef]; ok {
		v.User = u.Projection()
	}
	return v
}

// TestServerHelper wires the real handlers and services over in-memory
// repositories so the full HTTP surface can be exercised without Postgres
// or Redis
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
	Broker *notify.Broker
	Store  *memoryStore
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()
	log := logger.NewLogger("error")
	store := newMemoryStore()

	users := &userStore{s: store}
	properties := &propertyStore{s: store}
	offers := &offerStore{s: store}

	tokenManager := auth.NewTokenManager("integration-test-secret", "estatehub-test", time.Hour)
	broker := notify.NewBroker(log)
	authService := service.NewAuthService(users, tokenManager, log)
	propertyService := service.NewPropertyService(properties, 0, log)
	offerService := service.NewOfferService(offers, users, propertyService, broker, log)

	auditLogger := audit.NewLogger(log)
	authHandler := handler.NewAuthHandler(authService, log, true)
	propertiesHandler := handler.NewPropertiesHandler(propertyService, log, true)
	offersHandler := handler.NewOffersHandler(offerService, auditLogger, log, true)
	eventsHandler := handler.NewEventsHandler(broker, propertyService, log, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/profile", authHandler.Profile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("GET /api/properties", propertiesHandler.List)
	mux.HandleFunc("GET /api/properties/search", propertiesHandler.Search)
	mux.HandleFunc("GET /api/properties/{id}", propertiesHandler.Get)
	mux.HandleFunc("POST /api/properties", propertiesHandler.Create)
	mux.HandleFunc("POST /api/offers", offersHandler.Create)
	mux.HandleFunc("GET /api/offers/my", offersHandler.ListMine)
	mux.HandleFunc("GET /api/offers/{propertyId}", offersHandler.ListByProperty)
	mux.HandleFunc("PATCH /api/offers/{offerId}/status", offersHandler.UpdateStatus)
	mux.Handle("GET /ws/offers/{propertyId}", eventsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	server := httptest.NewServer(middleware.JWTMiddleware(tokenManager, log)(mux))

	return &TestServerHelper{
		Server: server,
		Logger: log,
		Broker: broker,
		Store:  store,
	}
}

func (h *TestServerHelper) Close() {
	h.Server.Close()
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}
