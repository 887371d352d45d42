package requisitions

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linentrack/linentrack/internal/platform/httpx"
	"github.com/linentrack/linentrack/internal/shared"
)

// Handler exposes the requisition workflow over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers the requisition endpoints on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

type createRequest struct {
	Kind         string       `json:"kind" validate:"omitempty,oneof=ISSUE EXCHANGE"`
	RequestedBy  int64        `json:"requested_by_user_id" validate:"required,gt=0"`
	TargetWardID int64        `json:"target_ward_id" validate:"required,gt=0"`
	Items        []createItem `json:"items" validate:"required,min=1,dive"`
}

type createItem struct {
	ProductID      int64  `json:"product_id" validate:"required,gt=0"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	DamageReasonID *int64 `json:"damage_reason_id" validate:"omitempty,gt=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload createRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := CreateInput{
		Kind:         Kind(payload.Kind),
		RequestedBy:  payload.RequestedBy,
		TargetWardID: payload.TargetWardID,
		ActorID:      h.currentUser(r),
		Items:        make([]ItemInput, 0, len(payload.Items)),
	}
	for _, item := range payload.Items {
		input.Items = append(input.Items, ItemInput{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			DamageReasonID: item.DamageReasonID,
		})
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toCreated(created))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

type updateStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var payload updateStatusRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if payload.ID != 0 && payload.ID != id {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "body id does not match the path id")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.UpdateStatus(r.Context(), UpdateStatusInput{
		ID:      id,
		Status:  Status(payload.Status),
		ActorID: h.currentUser(r),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, h.currentUser(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) currentUser(r *http.Request) *int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	raw := sess.User()
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "requisition not found")
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "requisition changed concurrently, reload and retry")
	default:
		h.logger.Error("requisitions: request failed",
			slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
