package academy

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/arena-club/arena-club/internal/shared"
)

// Handler manages class, enrollment and attendance endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers academy routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/classes", func(r chi.Router) {
		r.Post("/", h.createClass)
		r.Get("/", h.listClasses)
		r.Get("/{id}", h.getClass)
		r.Get("/{id}/attendance", h.listAttendance)
	})
	r.Route("/enrollments", func(r chi.Router) {
		r.Post("/", h.createEnrollment)
		r.Post("/{id}/confirm", h.confirmEnrollment)
		r.Post("/{id}/cancel", h.cancelEnrollment)
	})
	r.Post("/attendance", h.recordAttendance)
}

type classRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=120"`
	Specialty string `json:"specialty" validate:"required,min=2,max=80"`
	TeacherID int64  `json:"teacher_id" validate:"required,gt=0"`
	Capacity  int    `json:"capacity" validate:"omitempty,gt=0,lte=500"`
}

type enrollmentRequest struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
	ClassID   int64 `json:"class_id" validate:"required,gt=0"`
}

type attendanceRequest struct {
	ClassID   int64  `json:"class_id" validate:"required,gt=0"`
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	TeacherID int64  `json:"teacher_id" validate:"required,gt=0"`
	Present   bool   `json:"present"`
	TakenOn   string `json:"taken_on" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) createClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if !h.decode(w, r, &req) {
		return
	}
	class, err := h.service.CreateClass(r.Context(), ClassInput{
		Name:      req.Name,
		Specialty: req.Specialty,
		TeacherID: req.TeacherID,
		Capacity:  req.Capacity,
	})
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, class)
}

func (h *Handler) listClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.service.ListClasses(r.Context())
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"classes": classes})
}

func (h *Handler) getClass(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	class, err := h.service.GetClass(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, class)
}

func (h *Handler) createEnrollment(w http.ResponseWriter, r *http.Request) {
	var req enrollmentRequest
	if !h.decode(w, r, &req) {
		return
	}
	enrollment, err := h.service.CreateEnrollment(r.Context(), req.StudentID, req.ClassID)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, enrollment)
}

func (h *Handler) confirmEnrollment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	enrollment, err := h.service.ConfirmEnrollment(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, enrollment)
}

func (h *Handler) cancelEnrollment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	enrollment, err := h.service.CancelEnrollment(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, enrollment)
}

func (h *Handler) recordAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	takenOn, _ := time.Parse("2006-01-02", req.TakenOn)
	record, err := h.service.RecordAttendance(r.Context(), AttendanceInput{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		TeacherID: req.TeacherID,
		Present:   req.Present,
		TakenOn:   takenOn,
	})
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, record)
}

func (h *Handler) listAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paramID(w, r)
	if !ok {
		return
	}
	records, err := h.service.ListAttendance(r.Context(), id)
	if err != nil {
		shared.RespondError(h.logger, w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, map[string]any{"attendance": records})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := shared.DecodeAndValidate(h.validate, r, dest); err != nil {
		shared.RespondError(h.logger, w, err)
		return false
	}
	return true
}

func (h *Handler) paramID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondError(h.logger, w, shared.NewValidationError("id", "identificador inválido"))
		return 0, false
	}
	return id, true
}
