package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/biyonik/ticketbox-core/internal/clock"
	"github.com/biyonik/ticketbox-core/internal/controllers"
	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/internal/repositories/memory"
	"github.com/biyonik/ticketbox-core/internal/services"
	"github.com/biyonik/ticketbox-core/pkg/auth"
	"github.com/biyonik/ticketbox-core/pkg/cache"
	"github.com/biyonik/ticketbox-core/pkg/credential"
)

type apiServer struct {
	t       *testing.T
	handler http.Handler
	clock   *clock.Fixed
	users   *services.UserService
	base    time.Time
	relID   int64
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()

	// Oturum token'ları duvar saatine göre doğrulanır; sahte saat de
	// gerçek zamandan başlar.
	base := time.Now().UTC().Truncate(time.Second)
	logger := log.New(io.Discard, "", 0)
	store := memory.NewStore()
	fixed := clock.NewFixed(base)

	mc := cache.NewMemoryCache(logger, 0)
	t.Cleanup(func() { mc.Close() })

	deps := services.Deps{
		Store:     store,
		Clock:     fixed,
		Snapshots: services.NewSnapshotCache(mc, time.Minute, logger),
		Logger:    logger,
	}

	signer, err := credential.NewSigner("route-test-credential-secret-0123456789", "ticketbox-test")
	require.NoError(t, err)
	session := &auth.JWTConfig{
		Secret:           "route-test-session-secret-0123456789abc",
		Issuer:           "ticketbox-test",
		ExpirationTime:   time.Hour,
		RefreshExpiresIn: 48 * time.Hour,
	}

	creds := services.NewCredentialService(deps, signer, credential.NewPNGEncoder())
	carts := services.NewCartService(deps, services.NewCapacityLedger(store), creds)
	users := services.NewUserService(deps, auth.NewHasher(bcrypt.MinCost), session, carts)
	catalog := services.NewCatalogService(deps)
	approvals := services.NewApprovalService(deps, users)

	rel := &models.Relationship{Name: "self"}
	require.NoError(t, store.Relationships().Create(context.Background(), rel))

	r := New()
	Register(r, Controllers{
		Auth:       controllers.NewAuthController(users, logger),
		Events:     controllers.NewEventController(catalog, approvals, logger),
		Tickets:    controllers.NewTicketController(catalog, approvals, logger),
		Carts:      controllers.NewCartController(carts, creds, logger),
		Gate:       controllers.NewGateController(creds, logger),
		Categories: controllers.NewCategoryController(catalog, logger),
		Health:     controllers.NewHealthController(nil),
	}, Options{Guard: auth.NewJWTGuard(session)})

	return &apiServer{t: t, handler: r, clock: fixed, users: users, base: base, relID: rel.ID}
}

func (s *apiServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

// signup, kullanıcıyı kaydeder, istenirse rol atar ve oturum açar.
func (s *apiServer) signup(email string, role models.Role) (int64, string) {
	s.t.Helper()

	rec, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username":  "kullanici",
		"email":     email,
		"full_name": "Test Kullanıcı",
		"password":  "password123",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var user models.User
	require.NoError(s.t, json.Unmarshal(env.Data, &user))
	if role != "" {
		_, err := s.users.AssignRole(context.Background(), user.ID, role)
		require.NoError(s.t, err)
	}

	rec, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var login services.Session
	require.NoError(s.t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(s.t, login.RefreshToken)
	return user.ID, login.AccessToken
}

func (s *apiServer) at(d time.Duration) string {
	return s.base.Add(d).Format(time.RFC3339)
}

func TestAPI_PurchaseAndGateFlow(t *testing.T) {
	s := newAPIServer(t)
	_, hostToken := s.signup("host@example.com", "")
	_, buyerToken := s.signup("buyer@example.com", "")
	_, approverToken := s.signup("approver@example.com", models.RoleApprover)

	// 1. Etkinlik ve bilet türü
	rec, env := s.do(http.MethodPost, "/api/events", hostToken, map[string]any{
		"name":       "Yaz Konseri",
		"address":    "Harbiye Açıkhava",
		"start_date": s.at(time.Hour),
		"end_date":   s.at(10 * 24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var event models.Event
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, models.EventPending, event.Status)

	rec, env = s.do(http.MethodPost, fmt.Sprintf("/api/events/%d/tickets", event.ID), hostToken, map[string]any{
		"type":              "Standart",
		"unit_price":        "250.00",
		"capacity":          5,
		"min_qty_per_order": 1,
		"max_qty_per_order": 3,
		"start_sale":        s.at(2 * time.Hour),
		"end_sale":          s.at(9 * 24 * time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(env.Data, &ticket))

	// 2. Onay yalnızca APPROVER/ADMIN
	approvePath := fmt.Sprintf("/api/events/%d/approve", event.ID)
	rec, _ = s.do(http.MethodPut, approvePath, buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = s.do(http.MethodPut, approvePath, approverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &event))
	assert.Equal(t, models.EventUpcoming, event.Status)

	// 3. Sepet ve satın alma
	s.clock.Set(s.base.Add(3 * time.Hour))

	rec, _ = s.do(http.MethodPost, "/api/cart/items", buyerToken, map[string]any{
		"ticket_id":       ticket.ID,
		"relationship_id": s.relID,
		"owner_name":      "Ayşe Yılmaz",
		"sub_quantity":    2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodPost, "/api/cart/purchase", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, models.OrderPurchased, order.Status)
	assert.Equal(t, "500.00", order.TotalPrice.StringFixed(2))
	require.Len(t, order.OrderTickets, 1)
	item := order.OrderTickets[0]
	require.NotNil(t, item.Token)

	rec, _ = s.do(http.MethodPost, "/api/cart/purchase", buyerToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "boş sepet satın alınamaz")

	// 4. QR yalnızca sahibine
	qrPath := fmt.Sprintf("/api/order-tickets/%d/qr", item.ID)
	rec, _ = s.do(http.MethodGet, qrPath, buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), rec.Body.Bytes()[:4])

	rec, _ = s.do(http.MethodGet, qrPath, hostToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 5. Kapı: tarama bir kez, onay bir kez
	rec, _ = s.do(http.MethodPost, "/api/gate/verify", buyerToken, map[string]any{"token": *item.Token})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = s.do(http.MethodPost, "/api/gate/verify", approverToken, map[string]any{"token": *item.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodPost, "/api/gate/verify", approverToken, map[string]any{"token": *item.Token})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_USED", env.Code)

	confirmPath := fmt.Sprintf("/api/gate/%d/confirm", item.ID)
	rec, _ = s.do(http.MethodPut, confirmPath, approverToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = s.do(http.MethodPut, confirmPath, approverToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOT_PENDING", env.Code)

	// 6. Sipariş geçmişi
	rec, env = s.do(http.MethodGet, "/api/orders", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
}

func TestAPI_RejectsBadInput(t *testing.T) {
	s := newAPIServer(t)
	_, token := s.signup("host@example.com", "")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no session", http.MethodGet, "/api/cart", "", nil, http.StatusUnauthorized},
		{"bad id", http.MethodGet, "/api/events/abc", "", nil, http.StatusBadRequest},
		{"unknown event", http.MethodGet, "/api/events/999", "", nil, http.StatusNotFound},
		{"bad status filter", http.MethodGet, "/api/events?status=LIVE", "", nil, http.StatusUnprocessableEntity},
		{"missing fields", http.MethodPost, "/api/events", token, map[string]any{"name": ""}, http.StatusUnprocessableEntity},
		{"inverted window", http.MethodPost, "/api/events", token, map[string]any{
			"name":       "Ters",
			"start_date": s.at(48 * time.Hour),
			"end_date":   s.at(24 * time.Hour),
		}, http.StatusUnprocessableEntity},
		{"past start", http.MethodPost, "/api/events", token, map[string]any{
			"name":       "Geçmiş",
			"start_date": s.at(-time.Hour),
			"end_date":   s.at(time.Hour),
		}, http.StatusUnprocessableEntity},
		{"admin only", http.MethodPost, "/api/categories", token, map[string]any{"name": "Konser"}, http.StatusForbidden},
		{"bad credential", http.MethodPost, "/api/gate/verify", token, map[string]any{"token": "x"}, http.StatusForbidden},
		{"register duplicate", http.MethodPost, "/api/auth/register", "", map[string]any{
			"username": "kopya",
			"email":    "HOST@example.com",
			"password": "password123",
		}, http.StatusConflict},
		{"wrong password", http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "host@example.com",
			"password": "yanlis-sifre",
		}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAPI_AdminManagesCategories(t *testing.T) {
	s := newAPIServer(t)
	_, admin := s.signup("admin@example.com", models.RoleAdmin)

	rec, env := s.do(http.MethodPost, "/api/categories", admin, map[string]any{"name": " Tiyatro "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category models.Category
	require.NoError(t, json.Unmarshal(env.Data, &category))
	assert.Equal(t, "Tiyatro", category.Name)

	rec, _ = s.do(http.MethodPut, fmt.Sprintf("/api/categories/%d", category.ID), admin, map[string]any{"name": "Sahne"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Category
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Sahne", list[0].Name)

	rec, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/categories/%d", category.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_SessionRefreshAndProfile(t *testing.T) {
	s := newAPIServer(t)
	aliceID, _ := s.signup("alice@example.com", "")
	_, bob := s.signup("bob@example.com", "")
	_, admin := s.signup("admin@example.com", models.RoleAdmin)

	rec, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session services.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))

	// Access token yenileme için kullanılamaz
	rec, env = s.do(http.MethodPost, "/api/auth/refresh", "", map[string]any{"refresh_token": session.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", env.Code)

	// Refresh token da korumalı uç noktalara girmez
	rec, _ = s.do(http.MethodGet, "/api/auth/me", session.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(http.MethodPost, "/api/auth/refresh", "", map[string]any{"refresh_token": session.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var renewed services.Session
	require.NoError(t, json.Unmarshal(env.Data, &renewed))
	require.NotEmpty(t, renewed.AccessToken)

	alice := renewed.AccessToken
	rec, _ = s.do(http.MethodGet, "/api/auth/me", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	profilePath := fmt.Sprintf("/api/users/%d", aliceID)
	rec, env = s.do(http.MethodPut, profilePath, alice, map[string]any{"full_name": "Alice Yılmaz"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated models.User
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Alice Yılmaz", updated.FullName)

	rec, _ = s.do(http.MethodPut, profilePath, bob, map[string]any{"full_name": "Başkası"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodGet, profilePath, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(http.MethodGet, profilePath, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/users", bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, env = s.do(http.MethodGet, "/api/users?page=1&size=2", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var users []models.User
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 2)
	assert.Equal(t, aliceID, users[0].ID)
}
