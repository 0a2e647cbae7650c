package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourorg/estatehub/internal/domain"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type propertyResponse struct {
	ID         string  `json:"id"`
	NativeID   string  `json:"_id"`
	PropertyID string  `json:"propertyId"`
	Title      string  `json:"title"`
	City       string  `json:"city"`
	Price      float64 `json:"price"`
}

type offerResponse struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Message  string  `json:"message"`
	Status   string  `json:"status"`
	Property struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		PropertyID string `json:"propertyId"`
	} `json:"property"`
	User struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func register(t *testing.T, baseURL, name, email, password string) authResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"name": name, "email": email, "password": password})
	resp, err := http.Post(baseURL+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	var out authResponse
	decodeBody(t, resp, &out)
	if out.Token == "" {
		t.Fatalf("expected a token on registration")
	}
	return out
}

func doJSON(t *testing.T, method, url, token string, payload interface{}) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

func createProperty(t *testing.T, baseURL, token string, payload map[string]interface{}) propertyResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/properties", token, payload)
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	var out propertyResponse
	decodeBody(t, resp, &out)
	return out
}

func TestRegisterLoginProfile(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	reg := register(t, server.URL(), "Alice", "alice@example.com", "Password123")

	// Duplicate registration is rejected
	body, _ := json.Marshal(map[string]string{"name": "Alice2", "email": "alice@example.com", "password": "Password123"})
	resp, err := http.Post(server.URL()+"/api/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusBadRequest)

	// Login with the right credentials
	body, _ = json.Marshal(map[string]string{"email": "alice@example.com", "password": "Password123"})
	resp, err = http.Post(server.URL()+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	var login authResponse
	decodeBody(t, resp, &login)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	// Wrong password is a 401
	body, _ = json.Marshal(map[string]string{"email": "alice@example.com", "password": "wrong-password"})
	resp, err = http.Post(server.URL()+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)

	// Profile requires a token
	resp = doJSON(t, http.MethodGet, server.URL()+"/api/auth/profile", "", nil)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)

	resp = doJSON(t, http.MethodGet, server.URL()+"/api/auth/profile", reg.Token, nil)
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var profile map[string]interface{}
	decodeBody(t, resp, &profile)
	if profile["email"] != "alice@example.com" || profile["name"] != "Alice" {
		t.Fatalf("unexpected profile: %v", profile)
	}
}

func TestPropertyResolution(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	owner := register(t, server.URL(), "Owner", "owner@example.com", "Password123")
	created := createProperty(t, server.URL(), owner.Token, map[string]interface{}{
		"propertyId": "2",
		"title":      "Modern Villa",
		"address":    "Whitefield",
		"city":       "Bengaluru",
		"price":      12000000,
	})
	if created.ID != "2" {
		t.Fatalf("display id should prefer the listing code, got %q", created.ID)
	}
	if !domain.IsNativeID(created.NativeID) {
		t.Fatalf("expected a native id, got %q", created.NativeID)
	}

	// Lookup by listing code
	resp, err := http.Get(server.URL() + "/api/properties/2")
	if err != nil {
		t.Fatalf("get property: %v", err)
	}
	var byCode propertyResponse
	decodeBody(t, resp, &byCode)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if byCode.Title != "Modern Villa" {
		t.Fatalf("unexpected property: %+v", byCode)
	}

	// Lookup by native id resolves to the same record
	resp, err = http.Get(server.URL() + "/api/properties/" + created.NativeID)
	if err != nil {
		t.Fatalf("get property: %v", err)
	}
	var byNative propertyResponse
	decodeBody(t, resp, &byNative)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if byNative.NativeID != created.NativeID {
		t.Fatalf("expected the same record, got %+v", byNative)
	}

	// Unknown identifiers are a 404, whatever their shape
	for _, id := range []string{"999", "ffffffffffffffffffffffff"} {
		resp, err := http.Get(server.URL() + "/api/properties/" + id)
		if err != nil {
			t.Fatalf("get property: %v", err)
		}
		resp.Body.Close()
		AssertStatusCode(t, resp, http.StatusNotFound)
	}
}

func TestOfferLifecycle(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	owner := register(t, server.URL(), "Owner", "owner@example.com", "Password123")
	buyer := register(t, server.URL(), "Buyer", "buyer@example.com", "Password123")

	createProperty(t, server.URL(), owner.Token, map[string]interface{}{
		"propertyId": "2",
		"title":      "Modern Villa",
		"address":    "Whitefield",
		"city":       "Bengaluru",
		"price":      12000000,
	})

	// Anonymous offers are rejected before reaching the handler
	resp := doJSON(t, http.MethodPost, server.URL()+"/api/offers", "", map[string]interface{}{
		"property": "2", "amount": 5000000,
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusUnauthorized)

	// Submit an offer against the listing code
	resp = doJSON(t, http.MethodPost, server.URL()+"/api/offers", buyer.Token, map[string]interface{}{
		"property": "2", "amount": 5000000, "message": "Interested",
	})
	var offer offerResponse
	decodeBody(t, resp, &offer)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	if offer.Status != domain.StatusPending {
		t.Fatalf("new offer should be PENDING, got %s", offer.Status)
	}
	if offer.Amount != 5000000 {
		t.Fatalf("expected amount 5000000, got %g", offer.Amount)
	}
	if offer.Property.PropertyID != "2" || offer.Property.Title != "Modern Villa" {
		t.Fatalf("unexpected property projection: %+v", offer.Property)
	}
	if offer.User.Email != "buyer@example.com" {
		t.Fatalf("unexpected user projection: %+v", offer.User)
	}

	// Amounts sent as numeric strings are accepted too
	resp = doJSON(t, http.MethodPost, server.URL()+"/api/offers", buyer.Token, map[string]interface{}{
		"property": "2", "amount": "4800000",
	})
	var second offerResponse
	decodeBody(t, resp, &second)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)
	if second.Amount != 4800000 {
		t.Fatalf("expected coerced amount 4800000, got %g", second.Amount)
	}

	// An offer against an unknown property is a 404
	resp = doJSON(t, http.MethodPost, server.URL()+"/api/offers", buyer.Token, map[string]interface{}{
		"property": "999", "amount": 100,
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusNotFound)

	// The buyer sees both offers, newest first
	resp = doJSON(t, http.MethodGet, server.URL()+"/api/offers/my", buyer.Token, nil)
	var mine []offerResponse
	decodeBody(t, resp, &mine)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if len(mine) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(mine))
	}
	if mine[0].ID != second.ID {
		t.Fatalf("expected newest offer first")
	}

	// The owner sees no offers of their own
	resp = doJSON(t, http.MethodGet, server.URL()+"/api/offers/my", owner.Token, nil)
	var ownerOffers []offerResponse
	decodeBody(t, resp, &ownerOffers)
	resp.Body.Close()
	if len(ownerOffers) != 0 {
		t.Fatalf("owner should have no offers, got %d", len(ownerOffers))
	}

	// Accept the first offer
	resp = doJSON(t, http.MethodPatch, server.URL()+"/api/offers/"+offer.ID+"/status", owner.Token, map[string]string{
		"status": domain.StatusAccepted,
	})
	var accepted offerResponse
	decodeBody(t, resp, &accepted)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if accepted.Status != domain.StatusAccepted {
		t.Fatalf("expected ACCEPTED, got %s", accepted.Status)
	}

	// A made-up status is rejected
	resp = doJSON(t, http.MethodPatch, server.URL()+"/api/offers/"+offer.ID+"/status", owner.Token, map[string]string{
		"status": "MAYBE",
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusBadRequest)

	// Per-property listing matches the native reference only
	resp = doJSON(t, http.MethodGet, server.URL()+"/api/offers/"+offer.Property.ID, owner.Token, nil)
	var forProperty []offerResponse
	decodeBody(t, resp, &forProperty)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if len(forProperty) != 2 {
		t.Fatalf("expected 2 offers for the property, got %d", len(forProperty))
	}

	resp = doJSON(t, http.MethodGet, server.URL()+"/api/offers/2", owner.Token, nil)
	var byCode []offerResponse
	decodeBody(t, resp, &byCode)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if len(byCode) != 0 {
		t.Fatalf("listing code must not match the native reference, got %d offers", len(byCode))
	}
}

func TestOfferRoutesRequireAuthentication(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	owner := register(t, server.URL(), "Owner", "owner@example.com", "Password123")
	buyer := register(t, server.URL(), "Buyer", "buyer@example.com", "Password123")

	createProperty(t, server.URL(), owner.Token, map[string]interface{}{
		"propertyId": "2", "title": "Modern Villa", "address": "Whitefield", "city": "Bengaluru", "price": 12000000,
	})

	resp := doJSON(t, http.MethodPost, server.URL()+"/api/offers", buyer.Token, map[string]interface{}{
		"property": "2", "amount": 5000000,
	})
	var offer offerResponse
	decodeBody(t, resp, &offer)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	// Every offer route is behind the JWT gate
	anonymous := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/api/offers", map[string]interface{}{"property": "2", "amount": 100}},
		{http.MethodGet, "/api/offers/my", nil},
		{http.MethodGet, "/api/offers/" + offer.Property.ID, nil},
		{http.MethodPatch, "/api/offers/" + offer.ID + "/status", map[string]string{"status": domain.StatusAccepted}},
	}
	for _, req := range anonymous {
		resp := doJSON(t, req.method, server.URL()+req.path, "", req.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s without a token: expected 401, got %d", req.method, req.path, resp.StatusCode)
		}
	}

	// The anonymous PATCH must not have changed anything
	resp = doJSON(t, http.MethodGet, server.URL()+"/api/offers/my", buyer.Token, nil)
	var mine []offerResponse
	decodeBody(t, resp, &mine)
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
	if len(mine) != 1 || mine[0].Status != domain.StatusPending {
		t.Fatalf("offer should still be PENDING after rejected anonymous update, got %+v", mine)
	}
}

func TestCookieAuthentication(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	reg := register(t, server.URL(), "Alice", "alice@example.com", "Password123")

	req, _ := http.NewRequest(http.MethodGet, server.URL()+"/api/auth/profile", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: reg.Token})

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("profile request failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)
}

func TestPropertySearch(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	owner := register(t, server.URL(), "Owner", "owner@example.com", "Password123")
	createProperty(t, server.URL(), owner.Token, map[string]interface{}{
		"propertyId": "1", "title": "Luxury Apartment", "address": "Anna Nagar", "city": "Chennai", "price": 8500000,
	})
	createProperty(t, server.URL(), owner.Token, map[string]interface{}{
		"propertyId": "4", "title": "Cozy 2BHK", "address": "T Nagar", "city": "Chennai", "price": 5500000,
	})
	createProperty(t, server.URL(), owner.Token, map[string]interface{}{
		"propertyId": "3", "title": "Penthouse", "address": "Banjara Hills", "city": "Hyderabad", "price": 15000000,
	})

	resp, err := http.Get(server.URL() + "/api/properties/search?city=Chennai&maxPrice=6000000")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusOK)

	var result struct {
		Results []propertyResponse `json:"results"`
		Count   int                `json:"count"`
	}
	decodeBody(t, resp, &result)
	if result.Count != 1 || len(result.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", result.Count)
	}
	if result.Results[0].Title != "Cozy 2BHK" {
		t.Fatalf("unexpected search result: %+v", result.Results[0])
	}
}

func TestOfferEventStream(t *testing.T) {
	server := NewTestServer(t)
	defer server.Close()

	owner := register(t, server.URL(), "Owner", "owner@example.com", "Password123")
	buyer := register(t, server.URL(), "Buyer", "buyer@example.com", "Password123")

	createProperty(t, server.URL(), owner.Token, map[string]interface{}{
		"propertyId": "2", "title": "Modern Villa", "address": "Whitefield", "city": "Bengaluru", "price": 12000000,
	})

	// The stream accepts either identifier format
	wsURL := "ws" + strings.TrimPrefix(server.URL(), "http") + "/ws/offers/2"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	resp := doJSON(t, http.MethodPost, server.URL()+"/api/offers", buyer.Token, map[string]interface{}{
		"property": "2", "amount": 5000000,
	})
	resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected an event on the stream: %v", err)
	}

	var event struct {
		Type  string        `json:"type"`
		Offer offerResponse `json:"offer"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("bad event payload: %v", err)
	}
	if event.Type != "offer.created" {
		t.Fatalf("expected offer.created, got %s", event.Type)
	}
	if event.Offer.Amount != 5000000 || event.Offer.Status != domain.StatusPending {
		t.Fatalf("unexpected event offer: %+v", event.Offer)
	}
}
