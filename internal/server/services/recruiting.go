package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// candidateFlow is the forward pipeline. Rejected and Withdrawn are
// reachable from every non-terminal status.
var candidateFlow = map[string]string{
	models.CandidateApplied:   models.CandidateScreening,
	models.CandidateScreening: models.CandidateInterview,
	models.CandidateInterview: models.CandidateOffer,
	models.CandidateOffer:     models.CandidateHired,
}

// CandidateTransition validates a pipeline move.
func CandidateTransition(from, to string) error {
	if _, open := candidateFlow[from]; !open {
		return fmt.Errorf("%w: candidate is already %s", common.ErrorInvalidState, strings.ToLower(from))
	}
	if to == models.CandidateRejected || to == models.CandidateWithdrawn || candidateFlow[from] == to {
		return nil
	}
	return fmt.Errorf("%w: %s → %s", common.ErrorInvalidState, from, to)
}

var postingFlow = map[string][]string{
	models.PostingDraft:  {models.PostingOpen, models.PostingClosed},
	models.PostingOpen:   {models.PostingClosed},
	models.PostingClosed: {models.PostingOpen},
}

// CandidateMove is the result of a status change. Employee is set when the
// candidate was hired.
type CandidateMove struct {
	Candidate *models.Candidate `json:"candidate"`
	Employee  *models.Employee  `json:"employee,omitempty"`
}

type RecruitingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewRecruitingService(db *sql.DB, m repomanager.RepositoryManager) *RecruitingService {
	return &RecruitingService{db: db, repomanager: m, now: time.Now}
}

func (s *RecruitingService) CreatePosting(ctx context.Context, p *models.JobPosting) (*models.JobPosting, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	switch p.Status {
	case "":
		p.Status = models.PostingDraft
	case models.PostingDraft, models.PostingOpen:
	default:
		return nil, fmt.Errorf("%w: new postings are %s or %s", common.ErrorValidation, models.PostingDraft, models.PostingOpen)
	}
	return s.repomanager.Recruiting(s.db).CreatePosting(ctx, p)
}

func (s *RecruitingService) GetPosting(ctx context.Context, id string) (*models.JobPosting, error) {
	return s.repomanager.Recruiting(s.db).GetPosting(ctx, id)
}

func (s *RecruitingService) ListPostings(ctx context.Context, status string) ([]*models.JobPosting, error) {
	return s.repomanager.Recruiting(s.db).ListPostings(ctx, status)
}

func (s *RecruitingService) SetPostingStatus(ctx context.Context, id, status string) error {
	repo := s.repomanager.Recruiting(s.db)
	p, err := repo.GetPosting(ctx, id)
	if err != nil {
		return err
	}
	for _, to := range postingFlow[p.Status] {
		if to == status {
			return repo.SetPostingStatus(ctx, id, status)
		}
	}
	return fmt.Errorf("%w: posting %s → %s", common.ErrorInvalidState, p.Status, status)
}

// AddCandidate records an application to an open posting.
func (s *RecruitingService) AddCandidate(ctx context.Context, c *models.Candidate) (*models.Candidate, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.FirstName == "" || c.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", common.ErrorValidation, c.Email)
	}

	repo := s.repomanager.Recruiting(s.db)
	p, err := repo.GetPosting(ctx, c.PostingID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PostingOpen {
		return nil, fmt.Errorf("%w: posting is not open", common.ErrorInvalidState)
	}
	c.Status = models.CandidateApplied
	return repo.CreateCandidate(ctx, c)
}

func (s *RecruitingService) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	return s.repomanager.Recruiting(s.db).GetCandidate(ctx, id)
}

func (s *RecruitingService) ListCandidates(ctx context.Context, postingID, status string) ([]*models.Candidate, error) {
	return s.repomanager.Recruiting(s.db).ListCandidates(ctx, postingID, status)
}

func (s *RecruitingService) UpdateCandidateNotes(ctx context.Context, id, notes string) error {
	return s.repomanager.Recruiting(s.db).UpdateCandidateNotes(ctx, id, strings.TrimSpace(notes))
}

// MoveCandidate advances a candidate through the pipeline. Hiring creates
// the employee record in the same transaction.
func (s *RecruitingService) MoveCandidate(ctx context.Context, id, to string) (*CandidateMove, error) {
	res := &CandidateMove{}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Recruiting(tx)
		c, err := repo.GetCandidate(ctx, id)
		if err != nil {
			return err
		}
		if err := CandidateTransition(c.Status, to); err != nil {
			return err
		}
		if err := repo.SetCandidateStatus(ctx, id, c.Status, to); err != nil {
			return err
		}
		c.Status = to
		res.Candidate = c

		if to != models.CandidateHired {
			return nil
		}
		p, err := repo.GetPosting(ctx, c.PostingID)
		if err != nil {
			return err
		}
		emp, err := s.repomanager.Employees(tx).Create(ctx, &models.Employee{
			FirstName:        c.FirstName,
			LastName:         c.LastName,
			Email:            c.Email,
			Phone:            c.Phone,
			DepartmentID:     p.DepartmentID,
			JobTitle:         p.Title,
			HireDate:         timex.DateOf(s.now()),
			Status:           common.EmployeeStatusActive,
			OnboardingSource: common.SourceOnboarding,
		})
		if err != nil {
			return err
		}
		res.Employee = emp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error moving candidate: %w", err)
	}
	return res, nil
}

func (s *RecruitingService) ScheduleInterview(ctx context.Context, i *models.Interview) (*models.Interview, error) {
	i.Interviewer = strings.TrimSpace(i.Interviewer)
	if i.ScheduledAt.IsZero() || i.Interviewer == "" {
		return nil, fmt.Errorf("%w: time and interviewer are required", common.ErrorValidation)
	}
	repo := s.repomanager.Recruiting(s.db)
	c, err := repo.GetCandidate(ctx, i.CandidateID)
	if err != nil {
		return nil, err
	}
	if _, open := candidateFlow[c.Status]; !open {
		return nil, fmt.Errorf("%w: candidate is %s", common.ErrorInvalidState, strings.ToLower(c.Status))
	}
	return repo.CreateInterview(ctx, i)
}

func (s *RecruitingService) ListInterviews(ctx context.Context, candidateID string) ([]*models.Interview, error) {
	return s.repomanager.Recruiting(s.db).ListInterviews(ctx, candidateID)
}

// RecordFeedback stores the interviewer's notes and a 1-5 rating.
func (s *RecruitingService) RecordFeedback(ctx context.Context, id, feedback string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", common.ErrorValidation)
	}
	return s.repomanager.Recruiting(s.db).RecordFeedback(ctx, id, strings.TrimSpace(feedback), rating)
}
