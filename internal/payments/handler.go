package payments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arena-club/arena-club/internal/shared"
)

// Handler manages payment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.process)
	r.Get("/", h.recent)
	r.Get("/{id}", h.get)
	r.Get("/user/{id}", h.listByUser)
}

type processRequest struct {
	UserID      int64   `json:"user_id" validate:"required,gt=0"`
	ServiceType string  `json:"service_type" validate:"required,oneof=matricula mensalidade aluguer_campo hospedagem piscina_balneario"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method" validate:"required,oneof=dinheiro transferencia cartao"`
	Notes       string  `json:"notes" validate:"omitempty,max=500"`
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := shared.DecodeAndValidate(h.validate, r, &req); err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	payment, err := h.service.Process(r.Context(), ProcessInput{
		UserID:  req.UserID,
		Service: ServiceType(req.ServiceType),
		Amount:  req.Amount,
		Method:  req.Method,
		Notes:   req.Notes,
	})
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, payment)
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"payments": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, payment)
}

func (h *Handler) listByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListByUser(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"payments": list})
}

func (h *Handler) paramID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(h.logger, w, shared.NewValidationError("id", "identificador inválido"))
		return 0, false
	}
	return id, true
}
