package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhive/marketplace-platform/pkg/logging"
)

func newCatalogRouter(repo Repository) *chi.Mux {
	h := NewHandler(repo, logging.NewText("error"))
	r := chi.NewRouter()
	r.Get("/services", h.ListServices)
	r.Get("/services/{serviceID}", h.GetService)
	r.Get("/categories", h.ListCategories)
	r.Post("/admin/services", h.CreateService)
	r.Patch("/admin/services/{serviceID}", h.UpdateService)
	r.Post("/admin/categories", h.CreateCategory)
	return r
}

func TestHandlerCategoryAndServiceCreate(t *testing.T) {
	repo := NewInMemoryRepository()
	r := newCatalogRouter(repo)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/categories",
		bytes.NewBufferString(`{"name": "Physiotherapy"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cat Category
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cat))

	body, _ := json.Marshal(CreateServiceRequest{
		CategoryID:   cat.ID,
		Name:         "Deep tissue massage",
		PriceCents:   10000,
		DurationMins: 60,
	})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/services", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var svc Service
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&svc))
	assert.True(t, svc.Active)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services/"+svc.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerCreateServiceErrors(t *testing.T) {
	r := newCatalogRouter(NewInMemoryRepository())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/services", bytes.NewBufferString("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/services",
		bytes.NewBufferString(`{"category_id": "c1", "name": "x", "price_cents": -5, "duration_minutes": 30}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/services",
		bytes.NewBufferString(`{"category_id": "ghost", "name": "x", "price_cents": 100, "duration_minutes": 30}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerListFiltersInactive(t *testing.T) {
	repo := NewInMemoryRepository()
	r := newCatalogRouter(repo)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	cat, err := repo.CreateCategory(ctx, &CreateCategoryRequest{Name: "Physio"})
	require.NoError(t, err)
	svc, err := repo.CreateService(ctx, &CreateServiceRequest{
		CategoryID: cat.ID, Name: "Massage", PriceCents: 10000, DurationMins: 60,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/admin/services/"+svc.ID,
		bytes.NewBufferString(`{"active": false}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Count int `json:"count"`
	}
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 0, got.Count)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services?include_inactive=true", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 1, got.Count)
}

func TestHandlerGetServiceNotFound(t *testing.T) {
	r := newCatalogRouter(NewInMemoryRepository())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
