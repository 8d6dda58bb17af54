package trusteddevices

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

const deviceColumns = `id, user_id, fingerprint_hash, name, ip_address, expires_at, last_used_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*models.TrustedDevice, error) {
	d := &models.TrustedDevice{}
	err := s.Scan(&d.ID, &d.UserID, &d.FingerprintHash, &d.Name, &d.IPAddress, &d.ExpiresAt, &d.LastUsedAt, &d.CreatedAt)
	return d, err
}

func (r *PostgresRepository) Create(ctx context.Context, d *models.TrustedDevice) (*models.TrustedDevice, error) {
	query := `
		INSERT INTO trusted_devices (user_id, fingerprint_hash, name, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, last_used_at, created_at
	`
	err := r.db.QueryRowContext(ctx, query, d.UserID, d.FingerprintHash, d.Name, d.IPAddress, d.ExpiresAt).
		Scan(&d.ID, &d.LastUsedAt, &d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) FindValid(ctx context.Context, userID, fingerprintHash string) (*models.TrustedDevice, error) {
	query := `SELECT ` + deviceColumns + ` FROM trusted_devices
		WHERE user_id = $1 AND fingerprint_hash = $2 AND expires_at > now()`
	d, err := scanDevice(r.db.QueryRowContext(ctx, query, userID, fingerprintHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE trusted_devices SET last_used_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.TrustedDevice, error) {
	query := `SELECT ` + deviceColumns + ` FROM trusted_devices
		WHERE user_id = $1 AND expires_at > now()
		ORDER BY last_used_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TrustedDevice
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// Delete revokes one device of userID.
func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trusted_devices WHERE id = $1 AND user_id = $2`, id, userID)
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

func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM trusted_devices WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trusted_devices WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
