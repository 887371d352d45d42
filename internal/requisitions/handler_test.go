package requisitions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/linentrack/linentrack/internal/testing/guard"
)

func newTestServer(t *testing.T, repo *memoryRepo) *httptest.Server {
	t.Helper()
	svc := newTestService(repo, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	handler := NewHandler(nil, svc)
	router := chi.NewRouter()
	router.Route("/requisitions", handler.MountRoutes)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func createPayload() map[string]any {
	return map[string]any{
		"requested_by_user_id": 7,
		"target_ward_id":       3,
		"items": []map[string]any{
			{"product_id": 11, "quantity": 4},
			{"product_id": 12, "quantity": 6},
		},
	}
}

func TestHandlerCreate(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(t, repo)

	resp := doJSON(t, http.MethodPost, srv.URL+"/requisitions", createPayload())
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created Created
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Equal(t, "REQ-20240601-001", created.Code)
	require.Equal(t, StatusPending, created.Status)
	require.Equal(t, "รออนุมัติ", created.StatusLabel)
	require.Len(t, created.Items, 2)
	require.Len(t, repo.logs, 1)
}

func TestHandlerCreateRejectsBadPayload(t *testing.T) {
	srv := newTestServer(t, newMemoryRepo())

	for name, payload := range map[string]map[string]any{
		"no items":    {"requested_by_user_id": 7, "target_ward_id": 3},
		"no ward":     {"requested_by_user_id": 7, "items": []map[string]any{{"product_id": 1, "quantity": 1}}},
		"bad kind":    {"kind": "TRANSFER", "requested_by_user_id": 7, "target_ward_id": 3, "items": []map[string]any{{"product_id": 1, "quantity": 1}}},
		"zero qty":    {"requested_by_user_id": 7, "target_ward_id": 3, "items": []map[string]any{{"product_id": 1, "quantity": 0}}},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/requisitions", payload)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"), name)
		resp.Body.Close()
	}
}

func TestHandlerListAndGet(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(t, repo)

	resp := doJSON(t, http.MethodPost, srv.URL+"/requisitions", createPayload())
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/requisitions", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []Detail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	require.Equal(t, 10, list[0].TotalQty)

	resp = doJSON(t, http.MethodGet, srv.URL+"/requisitions/1", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail Detail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	require.Equal(t, "REQ-20240601-001", detail.Code)

	resp = doJSON(t, http.MethodGet, srv.URL+"/requisitions/99", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/requisitions/zero", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerUpdateStatus(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(t, repo)

	resp := doJSON(t, http.MethodPost, srv.URL+"/requisitions", createPayload())
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/requisitions/1", map[string]any{"status": "APPROVED"})
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	stored, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, stored.Status)

	resp = doJSON(t, http.MethodPut, srv.URL+"/requisitions/1", map[string]any{"id": 2, "status": "APPROVED"})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/requisitions/1", map[string]any{"status": "SHIPPED"})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, srv.URL+"/requisitions/77", map[string]any{"status": "APPROVED"})
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerUpdateStatusConflict(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(t, repo)

	resp := doJSON(t, http.MethodPost, srv.URL+"/requisitions", createPayload())
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	repo.beforeTx = func() {
		req := repo.requests[1]
		req.UpdatedAt = req.UpdatedAt.Add(time.Minute)
		repo.requests[1] = req
	}
	resp = doJSON(t, http.MethodPut, srv.URL+"/requisitions/1", map[string]any{"status": "REJECTED"})
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandlerDelete(t *testing.T) {
	repo := newMemoryRepo()
	srv := newTestServer(t, repo)

	resp := doJSON(t, http.MethodPost, srv.URL+"/requisitions", createPayload())
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/requisitions/1", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/requisitions/1", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/requisitions/1", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
