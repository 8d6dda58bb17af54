package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (s *Server) payrollRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(requirePermission(auth.PayrollView)).Get("/periods", s.handleListPeriods)
		r.With(requirePermission(auth.PayrollView)).Get("/periods/current", s.handleCurrentPeriod)
		r.With(requirePermission(auth.PayrollView)).Get("/periods/next", s.handleNextPeriod)

		r.With(requirePermission(auth.PayrollCreate)).Post("/generate", s.handleGeneratePayroll)
		r.With(requirePermission(auth.PayrollView)).Get("/", s.handleListPayrolls)
		r.With(requirePermission(auth.PayrollView)).Get("/summary", s.handlePayrollSummary)
		r.With(requirePermission(auth.PayrollUpdate)).Post("/bulk-approve", s.handleBulkApprove)

		r.With(requirePermission(auth.PayrollView)).Get("/vacation/balances", s.handleVacationBalances)
		r.With(requirePermission(auth.PayrollView)).Get("/vacation/{employeeID}", s.handleVacationBalance)
		r.With(requirePermission(auth.PayrollView)).Get("/vacation/{employeeID}/payouts", s.handleListPayouts)
		r.With(requirePermission(auth.PayrollUpdate)).Post("/vacation/{employeeID}/payout", s.handleVacationPayout)

		r.With(requirePermission(auth.PayrollView)).Get("/{payrollID}", s.handleGetPayroll)
		r.With(requirePermission(auth.PayrollUpdate)).Post("/{payrollID}/approve", s.handleApprovePayroll)
		r.With(requirePermission(auth.PayrollUpdate)).Post("/{payrollID}/mark-paid", s.handleMarkPaid)
		r.With(requirePermission(auth.PayrollDelete)).Delete("/{payrollID}", s.handleDeletePayroll)
	})
}

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", s.svc.Payroll.CurrentPeriod().Year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if year < 1900 || year > 9999 {
		badRequest(w, r, "year is out of range")
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Payroll.Periods(year))
}

func (s *Server) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Payroll.CurrentPeriod())
}

func (s *Server) handleNextPeriod(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Payroll.NextPeriod())
}

func (s *Server) handleGeneratePayroll(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.svc.Payroll.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "payroll generated",
		"period_start", res.PeriodStart, "period_end", res.PeriodEnd,
		"payrolls", len(res.Payrolls), "locked", len(res.Locked))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListPayrolls(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "period_start")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "period_end")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Payroll.List(r.Context(), models.PayrollFilter{
		EmployeeID:  r.URL.Query().Get("employee_id"),
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      r.URL.Query().Get("status"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePayrollSummary(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "period_start")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "period_end")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.svc.Payroll.Summary(r.Context(), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeriodStart timex.Date `json:"pay_period_start"`
		PeriodEnd   timex.Date `json:"pay_period_end"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.svc.Payroll.BulkApprove(r.Context(), req.PeriodStart, req.PeriodEnd, principalFrom(r.Context()).User.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"approved": n})
}

func (s *Server) handleGetPayroll(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Payroll.Get(r.Context(), chi.URLParam(r, "payrollID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleApprovePayroll(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "payrollID")
	if err := s.svc.Payroll.Approve(r.Context(), id, principalFrom(r.Context()).User.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetPayroll(w, r)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Payroll.MarkPaid(r.Context(), chi.URLParam(r, "payrollID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetPayroll(w, r)
}

func (s *Server) handleDeletePayroll(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Payroll.Delete(r.Context(), chi.URLParam(r, "payrollID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVacationBalances(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Payroll.VacationBalances(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleVacationBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Payroll.VacationBalance(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleListPayouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Payroll.ListPayouts(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleVacationPayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hours      decimal.Decimal `json:"hours"`
		PayoutDate timex.Date      `json:"payout_date"`
		Notes      string          `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Payroll.VacationPayout(r.Context(), chi.URLParam(r, "employeeID"), req.Hours, req.PayoutDate, req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
