package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/go-chi/chi/v5"
)

func (s *Server) benefitRoutes(r chi.Router) {
	r.Route("/benefits", func(r chi.Router) {
		r.With(requirePermission(auth.BenefitsView)).Get("/plans", s.handleListPlans)
		r.With(requirePermission(auth.BenefitsCreate)).Post("/plans", s.handleCreatePlan)
		r.With(requirePermission(auth.BenefitsView)).Get("/plans/{planID}", s.handleGetPlan)
		r.With(requirePermission(auth.BenefitsUpdate)).Put("/plans/{planID}/active", s.handleSetPlanActive)

		r.With(requirePermission(auth.BenefitsView)).Get("/enrollments", s.handleListEnrollments)
		r.With(requirePermission(auth.BenefitsCreate)).Post("/enrollments", s.handleEnroll)
		r.With(requirePermission(auth.BenefitsUpdate)).Post("/enrollments/{enrollmentID}/cancel", s.handleCancelEnrollment)
	})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	list, err := s.svc.Benefits.ListPlans(r.Context(), activeOnly)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var p models.BenefitPlan
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Benefits.CreatePlan(r.Context(), &p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Benefits.GetPlan(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSetPlanActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Benefits.SetPlanActive(r.Context(), chi.URLParam(r, "planID"), req.Active); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetPlan(w, r)
}

func (s *Server) handleListEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Benefits.ListEnrollments(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var e models.BenefitEnrollment
	if err := decodeJSON(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Benefits.Enroll(r.Context(), &e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleCancelEnrollment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EndDate timex.Date `json:"end_date"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Benefits.CancelEnrollment(r.Context(), chi.URLParam(r, "enrollmentID"), req.EndDate); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Enrollment cancelled"})
}
