package recruiting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const postingColumns = `id, title, department_id, description, location, employment_type, status, opened_at, closed_at, created_at`

func scanPosting(s scanner) (*models.JobPosting, error) {
	p := &models.JobPosting{}
	var dept sql.NullString
	var opened, closed sql.NullTime
	if err := s.Scan(&p.ID, &p.Title, &dept, &p.Description, &p.Location, &p.EmploymentType, &p.Status,
		&opened, &closed, &p.CreatedAt); err != nil {
		return nil, err
	}
	if dept.Valid {
		p.DepartmentID = &dept.String
	}
	if opened.Valid {
		p.OpenedAt = &opened.Time
	}
	if closed.Valid {
		p.ClosedAt = &closed.Time
	}
	return p, nil
}

func (r *PostgresRepository) CreatePosting(ctx context.Context, p *models.JobPosting) (*models.JobPosting, error) {
	query := `
		INSERT INTO job_postings (title, department_id, description, location, employment_type, status, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $6 = 'Open' THEN now() END)
		RETURNING id, opened_at, created_at
	`
	var opened sql.NullTime
	err := r.db.QueryRowContext(ctx, query, p.Title, p.DepartmentID, p.Description, p.Location, p.EmploymentType, p.Status).
		Scan(&p.ID, &opened, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if opened.Valid {
		p.OpenedAt = &opened.Time
	}
	return p, nil
}

func (r *PostgresRepository) GetPosting(ctx context.Context, id string) (*models.JobPosting, error) {
	p, err := scanPosting(r.db.QueryRowContext(ctx, `SELECT `+postingColumns+` FROM job_postings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListPostings(ctx context.Context, status string) ([]*models.JobPosting, error) {
	query := `SELECT ` + postingColumns + ` FROM job_postings WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.JobPosting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) SetPostingStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE job_postings SET status = $2,
			opened_at = CASE WHEN $2 = 'Open' THEN COALESCE(opened_at, now()) ELSE opened_at END,
			closed_at = CASE WHEN $2 = 'Closed' THEN now() ELSE NULL END
		WHERE id = $1
	`
	return affected(r.db.ExecContext(ctx, query, id, status))
}

const candidateColumns = `id, posting_id, first_name, last_name, email, phone, status, resume_key, notes, applied_at, updated_at`

func scanCandidate(s scanner) (*models.Candidate, error) {
	c := &models.Candidate{}
	if err := s.Scan(&c.ID, &c.PostingID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Status,
		&c.ResumeKey, &c.Notes, &c.AppliedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) CreateCandidate(ctx context.Context, c *models.Candidate) (*models.Candidate, error) {
	query := `
		INSERT INTO candidates (posting_id, first_name, last_name, email, phone, status, resume_key, notes)
		VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8)
		RETURNING id, email, applied_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.PostingID, c.FirstName, c.LastName, c.Email, c.Phone, c.Status, c.ResumeKey, c.Notes).
		Scan(&c.ID, &c.Email, &c.AppliedAt, &c.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListCandidates(ctx context.Context, postingID, status string) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates
		WHERE ($1 = '' OR posting_id::text = $1) AND ($2 = '' OR status = $2)
		ORDER BY applied_at DESC`
	rows, err := r.db.QueryContext(ctx, query, postingID, status)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) SetCandidateStatus(ctx context.Context, id, from, to string) error {
	query := `UPDATE candidates SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorConflict
	}
	return nil
}

func (r *PostgresRepository) UpdateCandidateNotes(ctx context.Context, id, notes string) error {
	return affected(r.db.ExecContext(ctx, `UPDATE candidates SET notes = $2, updated_at = now() WHERE id = $1`, id, notes))
}

func (r *PostgresRepository) CreateInterview(ctx context.Context, i *models.Interview) (*models.Interview, error) {
	query := `
		INSERT INTO interviews (candidate_id, scheduled_at, interviewer, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, i.CandidateID, i.ScheduledAt, i.Interviewer, i.Kind).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return i, nil
}

func (r *PostgresRepository) ListInterviews(ctx context.Context, candidateID string) ([]*models.Interview, error) {
	query := `
		SELECT id, candidate_id, scheduled_at, interviewer, kind, feedback, rating, created_at
		FROM interviews WHERE candidate_id = $1
		ORDER BY scheduled_at
	`
	rows, err := r.db.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Interview
	for rows.Next() {
		i := &models.Interview{}
		if err := rows.Scan(&i.ID, &i.CandidateID, &i.ScheduledAt, &i.Interviewer, &i.Kind, &i.Feedback, &i.Rating, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, i)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) RecordFeedback(ctx context.Context, id, feedback string, rating int) error {
	return affected(r.db.ExecContext(ctx, `UPDATE interviews SET feedback = $2, rating = $3 WHERE id = $1`, id, feedback, rating))
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
