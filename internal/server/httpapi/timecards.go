package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payroll"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (s *Server) timecardRoutes(r chi.Router) {
	r.Route("/timecards", func(r chi.Router) {
		r.With(requirePermission(auth.TimeView)).Get("/entries", s.handleListEntries)
		r.With(requirePermission(auth.TimeCreate)).Post("/entries", s.handleCreateEntry)
		r.With(requirePermission(auth.TimeUpdate)).Put("/entries/{entryID}", s.handleUpdateEntry)
		r.With(requirePermission(auth.TimeDelete)).Delete("/entries/{entryID}", s.handleDeleteEntry)
		r.With(requirePermission(auth.TimeUpdate)).Post("/approve", s.handleApproveEntries)
		r.With(requirePermission(auth.TimeCreate)).Post("/import", s.handleImportTimecards)

		r.With(requirePermission(auth.CommissionsView)).Get("/commissions", s.handleListCommissions)
		r.With(requirePermission(auth.CommissionsCreate)).Post("/commissions/import", s.handleImportCommissions)
		r.With(requirePermission(auth.CommissionsCreate)).Post("/commissions/sales", s.handleSalesCommissions)
		r.With(requirePermission(auth.CommissionsDelete)).Delete("/commissions/{commissionID}", s.handleDeleteCommission)
	})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Timecards.ListEntries(r.Context(), models.TimeEntryFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Start:      start,
		End:        end,
		Status:     r.URL.Query().Get("status"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var e models.TimeEntry
	if err := decodeJSON(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	e.ID = ""
	created, err := s.svc.Timecards.CreateEntry(r.Context(), &e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var e models.TimeEntry
	if err := decodeJSON(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	e.ID = chi.URLParam(r, "entryID")
	if err := s.svc.Timecards.UpdateEntry(r.Context(), &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Timecards.DeleteEntry(r.Context(), chi.URLParam(r, "entryID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApproveEntries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate  timex.Date `json:"start_date"`
		EndDate    timex.Date `json:"end_date"`
		EmployeeID string     `json:"employee_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.svc.Timecards.Approve(r.Context(), req.StartDate, req.EndDate, req.EmployeeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"approved": n})
}

func (s *Server) handleImportTimecards(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, r, "a spreadsheet is required in the \"file\" field")
		return
	}
	defer file.Close()

	sum, err := s.svc.Timecards.Import(r.Context(), file, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "timecards imported",
		"file", sum.File, "inserted", sum.EntriesInserted, "skipped", sum.EntriesSkipped,
		"created", sum.EmployeesCreated, "errors", len(sum.Errors))
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleListCommissions(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Timecards.ListCommissions(r.Context(), r.URL.Query().Get("employee_id"), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleImportCommissions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, r, "a spreadsheet is required in the \"file\" field")
		return
	}
	defer file.Close()

	var start, end timex.Date
	if v := r.FormValue("pay_period_start"); v != "" {
		if start, err = timex.ParseDate(v); err != nil {
			badRequest(w, r, "pay_period_start must be YYYY-MM-DD")
			return
		}
	}
	if v := r.FormValue("pay_period_end"); v != "" {
		if end, err = timex.ParseDate(v); err != nil {
			badRequest(w, r, "pay_period_end must be YYYY-MM-DD")
			return
		}
	}

	sum, err := s.svc.Timecards.ImportCommissions(r.Context(), file, header.Filename, start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleSalesCommissions takes a sales performance report with
// pay_period_start, pay_period_end, optional dry_run and repeated manager
// fields of the form "<employee id>" or "<employee id>:<fixed pct>".
func (s *Server) handleSalesCommissions(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, r, "a spreadsheet is required in the \"file\" field")
		return
	}
	defer file.Close()

	var req services.SalesCommissionRequest
	if req.Start, err = timex.ParseDate(r.FormValue("pay_period_start")); err != nil {
		badRequest(w, r, "pay_period_start must be YYYY-MM-DD")
		return
	}
	if req.End, err = timex.ParseDate(r.FormValue("pay_period_end")); err != nil {
		badRequest(w, r, "pay_period_end must be YYYY-MM-DD")
		return
	}
	if v := r.FormValue("dry_run"); v != "" {
		if req.DryRun, err = strconv.ParseBool(v); err != nil {
			badRequest(w, r, "dry_run must be true or false")
			return
		}
	}
	for _, v := range r.MultipartForm.Value["manager"] {
		id, pct, hasPct := strings.Cut(v, ":")
		m := payroll.SalesManager{EmployeeID: strings.TrimSpace(id)}
		if hasPct {
			d, err := decimal.NewFromString(strings.TrimSpace(pct))
			if err != nil {
				badRequest(w, r, "manager percentage must be a number")
				return
			}
			m.FixedPct = &d
		}
		req.Managers = append(req.Managers, m)
	}

	sum, err := s.svc.Timecards.CalculateSalesCommissions(r.Context(), file, header.Filename, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info(r.Context(), "sales commissions calculated",
		"file", sum.File, "dry_run", sum.DryRun, "agents", len(sum.Agents),
		"managers", len(sum.Managers), "stored", sum.Stored)
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDeleteCommission(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Timecards.DeleteCommission(r.Context(), chi.URLParam(r, "commissionID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
