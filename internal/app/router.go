package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/arena-club/arena-club/internal/academy"
	"github.com/arena-club/arena-club/internal/history"
	"github.com/arena-club/arena-club/internal/hotel"
	"github.com/arena-club/arena-club/internal/observability"
	"github.com/arena-club/arena-club/internal/payments"
	"github.com/arena-club/arena-club/internal/reports"
	"github.com/arena-club/arena-club/internal/roles"
	"github.com/arena-club/arena-club/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	UsersHandler    *users.Handler
	RolesHandler    *roles.Handler
	AcademyHandler  *academy.Handler
	PaymentsHandler *payments.Handler
	HotelHandler    *hotel.Handler
	HistoryHandler  *history.Handler
	ReportsHandler  *reports.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.AcademyHandler != nil {
		r.Route("/academy", params.AcademyHandler.MountRoutes)
	}
	if params.PaymentsHandler != nil {
		r.Route("/payments", params.PaymentsHandler.MountRoutes)
	}
	if params.HotelHandler != nil {
		r.Route("/hotel", params.HotelHandler.MountRoutes)
	}
	if params.HistoryHandler != nil {
		r.Route("/history", params.HistoryHandler.MountRoutes)
	}
	if params.ReportsHandler != nil {
		r.Route("/reports", params.ReportsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
