package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mpss/storefront/internal/auth"
	"github.com/mpss/storefront/internal/cache"
	"github.com/mpss/storefront/internal/cart"
	"github.com/mpss/storefront/internal/database"
	"github.com/mpss/storefront/internal/models"
	"github.com/mpss/storefront/internal/photos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type response struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []models.FieldError `json:"errors"`
	Data    json.RawMessage     `json:"data"`
}

type testServer struct {
	handler  *Handler
	routes   http.Handler
	verifier *auth.Verifier
	photoDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	storage := cache.NewMemoryCache("test")
	dir := t.TempDir()
	verifier := auth.NewVerifier(testSecret, "")

	h := NewHandler(Deps{
		Carts:    cart.NewStore(storage, time.Hour, logger),
		Photos:   photos.NewService(photos.NewLibrary(dir, "http://localhost:5000/photos"), storage, time.Hour, logger),
		Verifier: verifier,
		Logger:   logger,
	})

	return &testServer{handler: h, routes: h.Routes(), verifier: verifier, photoDir: dir}
}

func (s *testServer) token(t *testing.T, userID int64, role models.Role) string {
	t.Helper()
	token, err := s.verifier.Sign(auth.Principal{UserID: userID, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", decodeResponse(t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/cart", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, token failed", decodeResponse(t, rec).Message)

	forged, err := auth.NewVerifier("other-secret", "").Sign(auth.Principal{UserID: 1, Role: models.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/cart", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken := s.token(t, 1, models.RoleUser)
	for _, path := range []string{"/api/users/admin/all", "/api/orders/admin/all"} {
		rec = s.do(t, http.MethodGet, path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Equal(t, "Not authorized as an admin", decodeResponse(t, rec).Message)
	}

	rec = s.do(t, http.MethodPut, "/api/orders/1/status", userToken, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/cart", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestRespondErrMapping(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		err     error
		status  int
		message string
	}{
		{&models.ValidationError{Message: "Validation errors", Fields: []models.FieldError{{Field: "items", Message: "At least one item is required"}}}, 400, "Validation errors"},
		{&database.ProductError{ProductID: 9, Err: database.ErrProductNotFound}, 404, "Product with ID 9 not found"},
		{&database.ProductError{ProductID: 9, ProductName: "Tee", Err: database.ErrProductUnavailable}, 400, "Product Tee is not available"},
		{&database.ProductError{ProductID: 9, ProductName: "Tee", Available: 2, Err: database.ErrInsufficientStock}, 400, "Insufficient stock for Tee. Available: 2"},
		{fmt.Errorf("get order: %w", database.ErrOrderNotFound), 404, "Order not found"},
		{database.ErrUserNotFound, 404, "User not found"},
		{database.ErrDesignNotFound, 404, "Design not found"},
		{photos.ErrNotFound, 404, "Image not found"},
		{database.ErrAlreadyInWishlist, 400, "Product already in wishlist"},
		{fmt.Errorf("%w: pending -> delivered", models.ErrInvalidTransition), 400, "invalid status transition: pending -> delivered"},
		{database.ErrDuplicate, 409, "Record already exists"},
		{database.ErrReferenced, 409, "Record is still referenced by other data"},
		{database.ErrOptimisticLockFailed, 409, "Record was modified concurrently, reload and retry"},
		{database.ErrLockTimeout, 409, "Resource is busy, please retry"},
		{errors.New("connection reset"), 500, "Server error while testing"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		s.handler.respondErr(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, "Server error while testing")

		resp := decodeResponse(t, rec)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Equal(t, tc.message, resp.Message)
		assert.False(t, resp.Success)
	}

	rec := httptest.NewRecorder()
	s.handler.respondErr(rec, httptest.NewRequest(http.MethodGet, "/", nil), cases[0].err, "")
	assert.Len(t, decodeResponse(t, rec).Errors, 1)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/customization/calculate-price", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeResponse(t, rec).Message)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.handler.checks = map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	}

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"services":{"postgres":"up"}}`, string(decodeResponse(t, rec).Data))

	s.handler.checks["redis"] = func(context.Context) error { return errors.New("dial tcp: refused") }

	rec = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.JSONEq(t, `{"services":{"postgres":"up","redis":"down"}}`, string(resp.Data))
}
