package roles

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arena-club/arena-club/internal/shared"
	"github.com/arena-club/arena-club/internal/users"
)

// Handler exposes admin-initiated role transitions.
type Handler struct {
	logger   *slog.Logger
	engine   *Engine
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{logger: logger, engine: engine, validate: validator.New()}
}

// MountRoutes registers role transition routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/{id}/role", h.transition)
}

type transitionRequest struct {
	Role   string         `json:"role" validate:"required,oneof=admin teacher student client"`
	Reason string         `json:"reason" validate:"required,max=255"`
	Meta   map[string]any `json:"meta"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(h.logger, w, shared.NewValidationError("id", "identificador inválido"))
		return
	}
	var req transitionRequest
	if err := shared.DecodeAndValidate(h.validate, r, &req); err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	result, err := h.engine.Transition(r.Context(), Request{
		UserID:  id,
		Trigger: TriggerAdminAction,
		Target:  users.Role(req.Role),
		Reason:  req.Reason,
		Meta:    req.Meta,
	})
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"changed":  result.Changed,
		"old_role": result.OldRole,
		"new_role": result.NewRole,
	})
}
