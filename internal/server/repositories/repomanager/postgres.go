// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
	"github.com/dmitrijs2005/hrkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/benefits"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/employees"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/leave"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/mfa"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/payrolls"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/recruiting"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/timeentries"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/trusteddevices"
	"github.com/dmitrijs2005/hrkeeper/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook. Every factory binds to the DBTX it is
// given, so the same manager serves plain connections and transactions.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) MFA(db dbx.DBTX) mfa.Repository {
	return mfa.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) TrustedDevices(db dbx.DBTX) trusteddevices.Repository {
	return trusteddevices.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Employees(db dbx.DBTX) employees.Repository {
	return employees.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) TimeEntries(db dbx.DBTX) timeentries.Repository {
	return timeentries.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Payrolls(db dbx.DBTX) payrolls.Repository {
	return payrolls.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Leave(db dbx.DBTX) leave.Repository {
	return leave.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Benefits(db dbx.DBTX) benefits.Repository {
	return benefits.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Recruiting(db dbx.DBTX) recruiting.Repository {
	return recruiting.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}
