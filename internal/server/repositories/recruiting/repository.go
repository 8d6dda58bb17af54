// Package recruiting stores job postings, their candidates and interviews.
package recruiting

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

type Repository interface {
	CreatePosting(ctx context.Context, p *models.JobPosting) (*models.JobPosting, error)
	GetPosting(ctx context.Context, id string) (*models.JobPosting, error)
	ListPostings(ctx context.Context, status string) ([]*models.JobPosting, error)
	// SetPostingStatus stamps opened_at on the first open and closed_at on close.
	SetPostingStatus(ctx context.Context, id, status string) error

	CreateCandidate(ctx context.Context, c *models.Candidate) (*models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	ListCandidates(ctx context.Context, postingID, status string) ([]*models.Candidate, error)
	// SetCandidateStatus updates the status only while it still equals from.
	SetCandidateStatus(ctx context.Context, id, from, to string) error
	UpdateCandidateNotes(ctx context.Context, id, notes string) error

	CreateInterview(ctx context.Context, i *models.Interview) (*models.Interview, error)
	ListInterviews(ctx context.Context, candidateID string) ([]*models.Interview, error)
	RecordFeedback(ctx context.Context, id, feedback string, rating int) error
}
