package mfa

import (
	"context"
	"database/sql"
	"encoding/json"
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

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.MFASettings, error) {
	query := `
		SELECT user_id, secret_encrypted, enabled, backup_codes, enabled_at, updated_at
		FROM user_mfa
		WHERE user_id = $1
	`
	m := &models.MFASettings{}
	var codes []byte
	var enabledAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&m.UserID, &m.SecretEncrypted, &m.Enabled, &codes, &enabledAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(codes) > 0 {
		if err := json.Unmarshal(codes, &m.BackupCodes); err != nil {
			return nil, fmt.Errorf("backup codes: %w", err)
		}
	}
	if enabledAt.Valid {
		m.EnabledAt = &enabledAt.Time
	}
	return m, nil
}

func encodeCodes(codes []string) ([]byte, error) {
	if codes == nil {
		codes = []string{}
	}
	return json.Marshal(codes)
}

func (r *PostgresRepository) Save(ctx context.Context, m *models.MFASettings) error {
	codes, err := encodeCodes(m.BackupCodes)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO user_mfa (user_id, secret_encrypted, enabled, backup_codes, enabled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			secret_encrypted = EXCLUDED.secret_encrypted,
			enabled = EXCLUDED.enabled,
			backup_codes = EXCLUDED.backup_codes,
			enabled_at = EXCLUDED.enabled_at,
			updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, m.UserID, m.SecretEncrypted, m.Enabled, codes, m.EnabledAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetBackupCodes(ctx context.Context, userID string, hashes []string) error {
	codes, err := encodeCodes(hashes)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE user_mfa SET backup_codes = $2, updated_at = now() WHERE user_id = $1`, userID, codes)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	} else if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ConsumeBackupCode(ctx context.Context, userID, hash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_mfa SET backup_codes = backup_codes - $2::text, updated_at = now()
		WHERE user_id = $1 AND backup_codes @> jsonb_build_array($2::text)`, userID, hash)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_mfa WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
