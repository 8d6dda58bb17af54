package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/matching"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/go-chi/chi/v5"
)

func (s *Server) employeeRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(requirePermission(auth.EmployeesView)).Get("/", s.handleListEmployees)
		r.With(requirePermission(auth.EmployeesCreate)).Post("/", s.handleCreateEmployee)
		r.With(requirePermission(auth.EmployeesView)).Get("/duplicates", s.handleFindDuplicates)
		r.With(requirePermission(auth.EmployeesView)).Post("/match", s.handleMatchEmployee)
		r.With(requirePermission(auth.EmployeesDelete)).Post("/merge", s.handleMergeEmployees)

		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(requirePermission(auth.EmployeesView)).Get("/", s.handleGetEmployee)
			r.With(requirePermission(auth.EmployeesUpdate)).Put("/", s.handleUpdateEmployee)
			r.With(requirePermission(auth.EmployeesDelete)).Post("/terminate", s.handleTerminateEmployee)

			r.With(requirePermission(auth.EmployeesView)).Get("/documents", s.handleListDocuments)
			r.With(requirePermission(auth.EmployeesUpdate)).Post("/documents", s.handleRequestUpload)
			r.With(requirePermission(auth.EmployeesUpdate)).Post("/documents/{documentID}/confirm", s.handleConfirmUpload)
			r.With(requirePermission(auth.EmployeesView)).Get("/documents/{documentID}/download", s.handleDownloadDocument)
			r.With(requirePermission(auth.EmployeesDelete)).Delete("/documents/{documentID}", s.handleDeleteDocument)
		})
	})

	r.Route("/departments", func(r chi.Router) {
		r.With(requirePermission(auth.EmployeesView)).Get("/", s.handleListDepartments)
		r.With(requirePermission(auth.EmployeesCreate)).Post("/", s.handleCreateDepartment)
	})
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.EmployeeFilter{
		Status:       q.Get("status"),
		DepartmentID: q.Get("department_id"),
		Search:       q.Get("search"),
	}
	f.ExcludeTerminated, _ = strconv.ParseBool(q.Get("exclude_terminated"))

	var err error
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.Offset, err = queryInt(r, "offset", 0); err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.svc.Employees.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Employees.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e models.Employee
	if err := decodeJSON(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	e.ID = ""
	created, err := s.svc.Employees.Create(r.Context(), &e)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateEmployee applies the body over the stored record, so fields
// left out of the request keep their values.
func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	e, err := s.svc.Employees.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := decodeJSON(r, e); err != nil {
		s.writeError(w, r, err)
		return
	}
	e.ID = id
	if err := s.svc.Employees.Update(r.Context(), e); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleTerminateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   timex.Date `json:"termination_date"`
		Reason string     `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Employees.Terminate(r.Context(), chi.URLParam(r, "employeeID"), req.Date, req.Reason); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Employee terminated"})
}

func (s *Server) handleFindDuplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := s.svc.Employees.FindDuplicates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = [][]*models.Employee{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups, "count": len(groups)})
}

func (s *Server) handleMatchEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.Employees.FindMatch(r.Context(), matching.Query{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		FullName:  req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if errors.Is(err, common.ErrorNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"matched": false})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matched":  true,
		"strategy": m.Strategy,
		"employee": m.Employee,
	})
}

func (s *Server) handleMergeEmployees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID string `json:"source_id"`
		TargetID string `json:"target_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.SourceID == "" || req.TargetID == "" {
		badRequest(w, r, "source_id and target_id are required")
		return
	}
	res, err := s.svc.Employees.Merge(r.Context(), req.SourceID, req.TargetID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Employees.ListDepartments(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.svc.Employees.CreateDepartment(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.Documents.List(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleRequestUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		ContentType string `json:"content_type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ticket, err := s.svc.Documents.RequestUpload(r.Context(), chi.URLParam(r, "employeeID"),
		req.Name, req.ContentType, principalFrom(r.Context()).User.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (s *Server) handleConfirmUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int64 `json:"size"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Documents.ConfirmUpload(r.Context(), chi.URLParam(r, "documentID"), req.Size); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Upload confirmed"})
}

func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.Documents.DownloadURL(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Documents.Delete(r.Context(), chi.URLParam(r, "documentID"))
	var orphan *services.OrphanedObjectError
	if errors.As(err, &orphan) {
		// the metadata is gone; the stray object only costs storage
		s.logger.Warn(r.Context(), "document object left in storage", "key", orphan.Key, "error", orphan.Err)
		err = nil
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
