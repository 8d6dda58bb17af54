package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hrkeeper/internal/dbx"
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
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	MFA(db dbx.DBTX) mfa.Repository
	TrustedDevices(db dbx.DBTX) trusteddevices.Repository
	Employees(db dbx.DBTX) employees.Repository
	TimeEntries(db dbx.DBTX) timeentries.Repository
	Payrolls(db dbx.DBTX) payrolls.Repository
	Leave(db dbx.DBTX) leave.Repository
	Benefits(db dbx.DBTX) benefits.Repository
	Recruiting(db dbx.DBTX) recruiting.Repository
	Documents(db dbx.DBTX) documents.Repository
}
