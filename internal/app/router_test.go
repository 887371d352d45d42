package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/linentrack/linentrack/internal/auth"
	"github.com/linentrack/linentrack/internal/dashboard"
	"github.com/linentrack/linentrack/internal/linens"
	"github.com/linentrack/linentrack/internal/masterdata/damagereasons"
	"github.com/linentrack/linentrack/internal/masterdata/hospitals"
	"github.com/linentrack/linentrack/internal/masterdata/products"
	"github.com/linentrack/linentrack/internal/masterdata/wards"
	"github.com/linentrack/linentrack/internal/observability"
	"github.com/linentrack/linentrack/internal/requisitions"
	"github.com/linentrack/linentrack/internal/shared"
	"github.com/linentrack/linentrack/internal/users"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "linentrack_session", "test-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("test-secret")

	return NewRouter(RouterParams{
		Config:              &Config{AppRequestTimeout: 5 * time.Second},
		SessionManager:      sessions,
		CSRFManager:         csrf,
		AuthHandler:         auth.NewHandler(nil, nil, sessions, csrf),
		RequisitionHandler:  requisitions.NewHandler(nil, nil),
		LinenHandler:        linens.NewHandler(nil, nil),
		WardHandler:         wards.NewHandler(nil, nil),
		ProductHandler:      products.NewHandler(nil, nil),
		DamageReasonHandler: damagereasons.NewHandler(nil, nil),
		HospitalHandler:     hospitals.NewHandler(nil, nil),
		UserHandler:         users.NewHandler(nil, nil),
		DashboardHandler:    dashboard.NewHandler(nil, nil),
		Metrics:             observability.NewMetrics(),
	})
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestRouterExposesMetrics(t *testing.T) {
	router := newTestRouter(t)

	// Generate one observed request so the counter has a series to scrape.
	warm := httptest.NewRecorder()
	router.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, warm.Code)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "linentrack_http_requests_total")
}
