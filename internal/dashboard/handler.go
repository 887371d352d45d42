package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	"github.com/linentrack/linentrack/internal/platform/httpx"
)

// Handler exposes the aggregate endpoints. Concurrent requests for the
// same payload collapse into a single database round trip.
type Handler struct {
	logger  *slog.Logger
	service *Service
	group   singleflight.Group
}

// NewHandler wires the dashboard handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the dashboard routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stats", h.stats)
	r.Get("/chart-data", h.charts)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	out, err := h.collapse(r.Context(), "stats", func(ctx context.Context) (interface{}, error) {
		return h.service.Stats(ctx)
	})
	if err != nil {
		h.logger.Error("dashboard stats failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "could not load dashboard stats")
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) charts(w http.ResponseWriter, r *http.Request) {
	out, err := h.collapse(r.Context(), "charts", func(ctx context.Context) (interface{}, error) {
		return h.service.Charts(ctx)
	})
	if err != nil {
		h.logger.Error("dashboard charts failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "could not load chart data")
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

// collapse runs fn through the singleflight group while still honouring
// the caller's context deadline.
func (h *Handler) collapse(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := h.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
