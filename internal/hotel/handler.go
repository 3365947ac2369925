package hotel

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arena-club/arena-club/internal/shared"
)

// Handler manages room and reservation endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers hotel routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", h.createRoom)
		r.Get("/available", h.listAvailable)
		r.Post("/{id}/release", h.releaseRoom)
	})
	r.Route("/reservations", func(r chi.Router) {
		r.Post("/", h.createReservation)
		r.Get("/{id}", h.getReservation)
		r.Get("/client/{id}", h.listByClient)
	})
}

type roomRequest struct {
	Number    string  `json:"number" validate:"required,min=1,max=10"`
	Type      string  `json:"type" validate:"required,oneof=standard suite luxo"`
	DailyRate float64 `json:"daily_rate" validate:"required,gt=0"`
	Capacity  int     `json:"capacity" validate:"omitempty,gt=0,lte=10"`
}

type reservationRequest struct {
	ClientID int64  `json:"client_id" validate:"required,gt=0"`
	RoomID   int64  `json:"room_id" validate:"required,gt=0"`
	Checkin  string `json:"checkin" validate:"required,datetime=2006-01-02"`
	Checkout string `json:"checkout" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := shared.DecodeAndValidate(h.validate, r, &req); err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	room, err := h.service.CreateRoom(r.Context(), RoomInput{
		Number:    req.Number,
		Type:      RoomType(req.Type),
		DailyRate: req.DailyRate,
		Capacity:  req.Capacity,
	})
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, room)
}

func (h *Handler) listAvailable(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListAvailableRooms(r.Context())
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

func (h *Handler) releaseRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	if err := h.service.ReleaseRoom(r.Context(), id); err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := shared.DecodeAndValidate(h.validate, r, &req); err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	checkin, _ := time.Parse("2006-01-02", req.Checkin)
	checkout, _ := time.Parse("2006-01-02", req.Checkout)
	reservation, err := h.service.CreateReservation(r.Context(), ReservationInput{
		ClientID: req.ClientID,
		RoomID:   req.RoomID,
		Checkin:  checkin,
		Checkout: checkout,
	})
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, reservation)
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	reservation, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, reservation)
}

func (h *Handler) listByClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	reservations, err := h.service.ListReservationsByClient(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (h *Handler) paramID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(h.logger, w, shared.NewValidationError("id", "identificador inválido"))
		return 0, false
	}
	return id, true
}
