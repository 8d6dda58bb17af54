package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) recruitingRoutes(r chi.Router) {
	r.Route("/recruiting", func(r chi.Router) {
		r.With(requirePermission(auth.RecruitingView)).Get("/postings", s.handleListPostings)
		r.With(requirePermission(auth.RecruitingCreate)).Post("/postings", s.handleCreatePosting)
		r.With(requirePermission(auth.RecruitingView)).Get("/postings/{postingID}", s.handleGetPosting)
		r.With(requirePermission(auth.RecruitingUpdate)).Put("/postings/{postingID}/status", s.handleSetPostingStatus)

		r.With(requirePermission(auth.RecruitingView)).Get("/candidates", s.handleListCandidates)
		r.With(requirePermission(auth.RecruitingCreate)).Post("/candidates", s.handleAddCandidate)
		r.With(requirePermission(auth.RecruitingView)).Get("/candidates/{candidateID}", s.handleGetCandidate)
		r.With(requirePermission(auth.RecruitingUpdate)).Put("/candidates/{candidateID}/notes", s.handleCandidateNotes)
		r.With(requirePermission(auth.RecruitingUpdate)).Put("/candidates/{candidateID}/status", s.handleMoveCandidate)

		r.With(requirePermission(auth.RecruitingView)).Get("/candidates/{candidateID}/interviews", s.handleListInterviews)
		r.With(requirePermission(auth.RecruitingUpdate)).Post("/candidates/{candidateID}/interviews", s.handleScheduleInterview)
		r.With(requirePermission(auth.RecruitingUpdate)).Put("/interviews/{interviewID}/feedback", s.handleInterviewFeedback)
	})
}

func (s *Server) handleListPostings(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Recruiting.ListPostings(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreatePosting(w http.ResponseWriter, r *http.Request) {
	var p models.JobPosting
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Recruiting.CreatePosting(r.Context(), &p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Recruiting.GetPosting(r.Context(), chi.URLParam(r, "postingID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetPostingStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Recruiting.SetPostingStatus(r.Context(), chi.URLParam(r, "postingID"), req.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetPosting(w, r)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.svc.Recruiting.ListCandidates(r.Context(), q.Get("posting_id"), q.Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddCandidate(w http.ResponseWriter, r *http.Request) {
	var c models.Candidate
	if err := decodeJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.svc.Recruiting.AddCandidate(r.Context(), &c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Recruiting.GetCandidate(r.Context(), chi.URLParam(r, "candidateID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCandidateNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Recruiting.UpdateCandidateNotes(r.Context(), chi.URLParam(r, "candidateID"), req.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.handleGetCandidate(w, r)
}

// handleMoveCandidate advances the pipeline. Moving to Hired also returns
// the employee record created for the candidate.
func (s *Server) handleMoveCandidate(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	move, err := s.svc.Recruiting.MoveCandidate(r.Context(), chi.URLParam(r, "candidateID"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if move.Employee != nil {
		s.logger.Info(r.Context(), "candidate hired", "candidate", move.Candidate.ID, "employee", move.Employee.ID)
	}
	writeJSON(w, http.StatusOK, move)
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Recruiting.ListInterviews(r.Context(), chi.URLParam(r, "candidateID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	var i models.Interview
	if err := decodeJSON(r, &i); err != nil {
		s.writeError(w, r, err)
		return
	}
	i.CandidateID = chi.URLParam(r, "candidateID")
	created, err := s.svc.Recruiting.ScheduleInterview(r.Context(), &i)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Feedback string `json:"feedback"`
		Rating   int    `json:"rating"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Recruiting.RecordFeedback(r.Context(), chi.URLParam(r, "interviewID"), req.Feedback, req.Rating); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Feedback recorded"})
}
