package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/karimelbaz/sallati-backend/internal/cart"
	"github.com/karimelbaz/sallati-backend/internal/notify"
	sessiontracker "github.com/karimelbaz/sallati-backend/internal/session"
	pkgauth "github.com/karimelbaz/sallati-backend/pkg/auth"
	"github.com/karimelbaz/sallati-backend/pkg/auth/session"
	"github.com/karimelbaz/sallati-backend/pkg/config"
	"github.com/karimelbaz/sallati-backend/pkg/db/models"
	"github.com/karimelbaz/sallati-backend/pkg/enums"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubProvider struct{}

func (stubProvider) SubscribeToSessionChanges(func(*sessiontracker.Session)) (func(), error) {
	return func() {}, nil
}

func (stubProvider) GetCurrentSession(context.Context) (*sessiontracker.Session, error) {
	return nil, nil
}

func (stubProvider) LookupUserRole(context.Context, uuid.UUID) (sessiontracker.Role, error) {
	return "", nil
}

type stubSupplierStore struct {
	supplier models.Supplier
}

func (s *stubSupplierStore) FindByID(context.Context, uuid.UUID) (*models.Supplier, error) {
	supplier := s.supplier
	return &supplier, nil
}

func (s *stubSupplierStore) UpdateStatus(context.Context, uuid.UUID, enums.SupplierStatus) error {
	return nil
}

type stubInbox struct{}

func (stubInbox) Notify(_ context.Context, userID uuid.UUID, kind enums.NotificationKind, title, body string) (*models.Notification, error) {
	return &models.Notification{UserID: userID, Kind: kind, Title: title, Body: body}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	tracker := sessiontracker.NewMachine(stubProvider{}, sessiontracker.GoScheduler{}, logg, 5*time.Second, nil)
	notifySvc := notify.NewService(&stubSupplierStore{
		supplier: models.Supplier{
			ID:          uuid.New(),
			OwnerUserID: uuid.New(),
			Email:       "owner@example.com",
			Status:      enums.SupplierStatusPending,
		},
	}, stubInbox{}, logg)

	return NewRouter(Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             stubPinger{},
		SessionManager: stubSessionChecker{},
		HTTPMetrics:    metrics.NewHTTPMetrics(prometheus.NewRegistry()),
		SessionTracker: tracker,
		CartManager:    cart.NewManager(cart.NewScope(), nil, logg),
		NotifyService:  notifySvc,
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveAlwaysResponds(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Sallati-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestNotificationsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestFunctionsRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"supplier_id":"` + uuid.NewString() + `","action":"approved","admin_email":"ops@sallati.example"}`

	customer := httptest.NewRequest(http.MethodPost, "/api/v1/functions/notify-supplier", strings.NewReader(body))
	customer.Header.Set("Content-Type", "application/json")
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/functions/notify-supplier", strings.NewReader(body))
	admin.Header.Set("Content-Type", "application/json")
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"success":true`) {
		t.Fatalf("expected success envelope, got %s", resp.Body.String())
	}
}

func TestCartMintsSessionHeader(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	minted := resp.Header().Get("X-Session-Id")
	if uuid.Validate(minted) != nil {
		t.Fatalf("expected minted session id, got %q", minted)
	}
}

func TestCartEchoesProvidedSessionHeader(t *testing.T) {
	router := newTestRouter(testConfig())
	sessionID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("X-Session-Id", sessionID)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Session-Id"); got != sessionID {
		t.Fatalf("expected echoed session id %q, got %q", sessionID, got)
	}
}

func TestSessionStateStartsLoading(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"loading":true`) {
		t.Fatalf("expected loading snapshot, got %s", resp.Body.String())
	}
}
