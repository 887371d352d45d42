package linens

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

// Handler exposes the linen registry over JSON.
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
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the linen endpoints on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listActive)
	r.Post("/", h.register)
	r.Post("/discard", h.discard)
	r.Get("/discard-history", h.discardHistory)
	r.Get("/delete-history", h.deleteHistory)
	r.Get("/monitor/latest", h.monitor)
	r.Post("/activity", h.recordActivity)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.Active(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

type registerRequest struct {
	RFIDTag    string `json:"rfid_code" validate:"required"`
	ProductID  int64  `json:"product_id" validate:"required,gt=0"`
	VendorID   *int64 `json:"vendor_id" validate:"omitempty,gt=0"`
	HospitalID int64  `json:"hospital_id" validate:"required,gt=0"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	linen, err := h.service.Register(r.Context(), RegisterInput{
		RFIDTag:    payload.RFIDTag,
		ProductID:  payload.ProductID,
		VendorID:   payload.VendorID,
		HospitalID: payload.HospitalID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, Detail{
		ID:           linen.ID,
		RFIDTag:      linen.RFIDTag,
		ProductID:    linen.ProductID,
		Status:       linen.Status,
		RegisteredAt: linen.RegisteredAt,
		UpdatedAt:    linen.UpdatedAt,
	})
}

type discardRequest struct {
	RFIDTag        string `json:"rfid_code" validate:"required"`
	DamageReasonID int64  `json:"damage_reason_id" validate:"omitempty,gt=0"`
	ReportedBy     *int64 `json:"reported_by_user_id" validate:"omitempty,gt=0"`
}

func (h *Handler) discard(w http.ResponseWriter, r *http.Request) {
	var payload discardRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.Discard(r.Context(), DiscardInput{
		RFIDTag:        payload.RFIDTag,
		DamageReasonID: payload.DamageReasonID,
		ReportedBy:     payload.ReportedBy,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "บันทึกแจ้งชำรุดสำเร็จ"})
}

func (h *Handler) discardHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.DiscardHistory(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) deleteHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.DeleteHistory(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) monitor(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Monitor(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

type activityRequest struct {
	RFIDTag  string `json:"rfid_code" validate:"required"`
	Activity string `json:"activity" validate:"required,oneof=ISSUE RETURN DAMAGE"`
	ReaderID *int64 `json:"reader_id" validate:"omitempty,gt=0"`
	RoomID   *int64 `json:"room_id" validate:"omitempty,gt=0"`
}

func (h *Handler) recordActivity(w http.ResponseWriter, r *http.Request) {
	var payload activityRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	log, err := h.service.RecordActivity(r.Context(), ActivityInput{
		RFIDTag:  payload.RFIDTag,
		Activity: payload.Activity,
		ReaderID: payload.ReaderID,
		RoomID:   payload.RoomID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":       log.ID,
		"linen_id": log.LinenID,
		"activity": log.Activity,
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "id must be a positive integer")
		return
	}
	if err := h.service.Delete(r.Context(), id, h.currentUser(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) currentUser(r *http.Request) *int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
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
		httpx.Problem(w, http.StatusNotFound, "Not Found", "linen not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Conflict", "rfid tag already registered")
	default:
		h.logger.Error("linens: request failed",
			slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}
