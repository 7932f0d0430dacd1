package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhive/marketplace-platform/internal/booking"
	"github.com/medhive/marketplace-platform/internal/catalog"
	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/internal/users"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

const testSecret = "router-test-secret"

type noopNotifier struct{}

func (noopNotifier) BookingCreated(ctx context.Context, b *booking.Booking) error { return nil }
func (noopNotifier) BookingStatusChanged(ctx context.Context, b *booking.Booking, previous booking.Status) error {
	return nil
}
func (noopNotifier) ProviderAssigned(ctx context.Context, b *booking.Booking) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewText("error")

	cat := catalog.NewInMemoryRepository()
	category, err := cat.CreateCategory(ctx, &catalog.CreateCategoryRequest{Name: "Physiotherapy"})
	require.NoError(t, err)
	svc, err := cat.CreateService(ctx, &catalog.CreateServiceRequest{
		CategoryID:   category.ID,
		Name:         "Deep tissue massage",
		PriceCents:   10000,
		DurationMins: 60,
	})
	require.NoError(t, err)

	dir := providers.NewInMemoryRepository()
	dir.Put(&providers.Provider{
		ID:                "prov-1",
		Name:              "Pat Provider",
		Email:             "pat@example.com",
		Verified:          true,
		Available:         true,
		OfferedServiceIDs: []string{svc.ID},
	})

	usr := users.NewInMemoryRepository()
	usr.Put(&users.User{ID: "user-1", Name: "Casey Customer", Email: "casey@example.com"})

	bookingSvc := booking.NewService(booking.NewInMemoryRepository(), cat, dir, usr, noopNotifier{}, logger)

	h := New(&Config{
		Logger:           logger,
		BookingHandler:   booking.NewHandler(bookingSvc, logger),
		CatalogHandler:   catalog.NewHandler(cat, logger),
		ProvidersHandler: providers.NewHandler(dir, logger),
		AdminJWTSecret:   testSecret,
	})
	return h, svc.ID
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestPublicCatalogNeedsNoIdentity(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/services", "/categories", "/providers"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAPIRequiresIdentityHeaders(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/user-1/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingThroughRouter(t *testing.T) {
	r, serviceID := newTestRouter(t)

	date := time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	body, _ := json.Marshal(map[string]any{
		"service_id":     serviceID,
		"scheduled_date": date,
		"start_minutes":  840,
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Role", "customer")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created booking.Booking
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "user-1", created.UserID)

	req = httptest.NewRequest(http.MethodGet, "/bookings/"+created.ID, nil)
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Role", "customer")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminGroupRequiresJWT(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/bookings?status=pending", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings?status=pending", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminProviderVerification(t *testing.T) {
	r, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"value": false}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/providers/prov-1/verified", body)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p providers.Provider
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.False(t, p.Verified)
}

func TestUnknownRouteIs404(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
