package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arena-club/arena-club/internal/shared"
)

// Handler serves the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users-per-role", h.usersPerRole)
	r.Get("/revenue", h.revenue)
	r.Get("/enrollments", h.enrollments)
}

func (h *Handler) usersPerRole(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.UsersPerRole(r.Context())
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"users_per_role": counts})
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	revenues, err := h.service.RevenueByService(r.Context(), from, to)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{
		"from":    from.Format("2006-01-02"),
		"to":      to.Format("2006-01-02"),
		"revenue": revenues,
	})
}

func (h *Handler) enrollments(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.service.ActiveEnrollmentsPerClass(r.Context())
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"enrollments": enrollments})
}

// parseWindow reads the from/to query params, defaulting to the last 30
// days.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, shared.NewValidationError("from", "data inválida")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, shared.NewValidationError("to", "data inválida")
		}
		to = parsed
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, shared.NewValidationError("to", "intervalo inválido")
	}
	return from, to, nil
}
