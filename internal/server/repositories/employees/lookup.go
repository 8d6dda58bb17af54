package employees

import (
	"context"

	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

const notTerminated = ` e.status <> 'Terminated'`

func (r *PostgresRepository) FindByExactName(ctx context.Context, first, last string) (*models.Employee, error) {
	return r.one(ctx, selectEmployees+` WHERE`+notTerminated+`
		AND lower(e.first_name) = lower($1) AND lower(e.last_name) = lower($2)
		ORDER BY e.created_at LIMIT 1`, first, last)
}

func (r *PostgresRepository) ListWithNickname(ctx context.Context) ([]*models.Employee, error) {
	return r.many(ctx, selectEmployees+` WHERE`+notTerminated+` AND e.nickname <> '' ORDER BY e.created_at`)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return r.one(ctx, selectEmployees+` WHERE`+notTerminated+`
		AND lower(e.email) = lower($1)
		ORDER BY e.created_at LIMIT 1`, email)
}

func (r *PostgresRepository) ListByLastName(ctx context.Context, last string) ([]*models.Employee, error) {
	return r.many(ctx, selectEmployees+` WHERE`+notTerminated+`
		AND lower(e.last_name) = lower($1)
		ORDER BY e.created_at`, last)
}

func (r *PostgresRepository) FindByFullName(ctx context.Context, name string) (*models.Employee, error) {
	return r.one(ctx, selectEmployees+` WHERE`+notTerminated+`
		AND lower(trim(e.first_name || ' ' || e.last_name)) = lower(trim($1))
		ORDER BY e.created_at LIMIT 1`, name)
}

func (r *PostgresRepository) FindByPhoneDigits(ctx context.Context, digits string) (*models.Employee, error) {
	return r.one(ctx, selectEmployees+` WHERE`+notTerminated+`
		AND regexp_replace(e.phone, '[^0-9]', '', 'g') = $1
		ORDER BY e.created_at LIMIT 1`, digits)
}
