package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/leave"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) leaveRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(requirePermission(auth.LeaveView)).Get("/requests", s.handleListLeave)
		r.With(requirePermission(auth.LeaveCreate)).Post("/requests", s.handleSubmitLeave)
		r.With(requirePermission(auth.LeaveApprove)).Get("/requests/pending", s.handlePendingLeave)
		r.With(requirePermission(auth.LeaveView)).Get("/requests/{requestID}", s.handleGetLeave)
		r.With(requirePermission(auth.LeaveApprove)).Put("/requests/{requestID}/status", s.handleReviewLeave)
		r.With(requirePermission(auth.LeaveCreate)).Post("/requests/{requestID}/cancel", s.handleCancelLeave)

		r.With(requirePermission(auth.LeaveView)).Get("/workdays", s.handleWorkdays)
		r.With(requirePermission(auth.LeaveView)).Get("/balances/{employeeID}", s.handleLeaveBalances)

		r.With(requirePermission(auth.LeaveView)).Get("/policies", s.handleListPolicies)
		r.With(requirePermission(auth.LeaveUpdate)).Put("/policies", s.handleSavePolicy)

		r.With(requirePermission(auth.LeaveView)).Get("/holidays", s.handleListHolidays)
		r.With(requirePermission(auth.LeaveUpdate)).Post("/holidays", s.handleCreateHoliday)
		r.With(requirePermission(auth.LeaveDelete)).Delete("/holidays/{holidayID}", s.handleDeleteHoliday)
	})
}

func (s *Server) handleListLeave(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Leave.List(r.Context(), models.LeaveFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     r.URL.Query().Get("status"),
		From:       from,
		To:         to,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSubmitLeave(w http.ResponseWriter, r *http.Request) {
	var req models.LeaveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, days, err := s.svc.Leave.Submit(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Request  *models.LeaveRequest `json:"request"`
		Workdays leave.Workdays       `json:"workdays"`
	}{created, days})
}

func (s *Server) handlePendingLeave(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Leave.Pending(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetLeave(w http.ResponseWriter, r *http.Request) {
	lr, err := s.svc.Leave.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lr)
}

func (s *Server) handleReviewLeave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "requestID")
	if err := s.svc.Leave.Review(r.Context(), id, req.Status, principalFrom(r.Context()).User.ID, req.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetLeave(w, r)
}

func (s *Server) handleCancelLeave(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Leave.Cancel(r.Context(), chi.URLParam(r, "requestID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetLeave(w, r)
}

func (s *Server) handleWorkdays(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	days, err := s.svc.Leave.Workdays(r.Context(), r.URL.Query().Get("employee_id"), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleLeaveBalances(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Leave.Balances(r.Context(), chi.URLParam(r, "employeeID"), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Leave.ListPolicies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSavePolicy(w http.ResponseWriter, r *http.Request) {
	var p models.LeavePolicy
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Leave.SavePolicy(r.Context(), &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Leave.Holidays(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	var h models.Holiday
	if err := decodeJSON(r, &h); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Leave.CreateHoliday(r.Context(), &h)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Leave.DeleteHoliday(r.Context(), chi.URLParam(r, "holidayID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
