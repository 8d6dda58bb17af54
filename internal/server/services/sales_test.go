package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/server/payroll"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesReport(t *testing.T) *bytes.Buffer {
	return workbook(t, [][]any{
		{"Agent", "Booking %", "Revenue"},
		{"Jane Doe", "56%", "300000"},
		{"Boss Man", "45", "20000"},
		{"Somebody Else", "31", "10000"},
	})
}

func TestTimecardService_CalculateSalesCommissions(t *testing.T) {
	db := newTxDB(t, true)
	svc, rm := newTimecardFixture(t, db)
	jane := rm.employees.add(models.Employee{FirstName: "Jane", LastName: "Doe"})
	boss := rm.employees.add(models.Employee{FirstName: "Boss", LastName: "Man"})

	start, end := timex.MustParseDate("2025-09-01"), timex.MustParseDate("2025-09-14")
	sum, err := svc.CalculateSalesCommissions(context.Background(), salesReport(t), "sales.xlsx", SalesCommissionRequest{
		Start: start, End: end, Managers: []payroll.SalesManager{{EmployeeID: boss.ID}},
	})
	require.NoError(t, err)

	require.Len(t, sum.Agents, 1)
	assert.Equal(t, jane.ID, sum.Agents[0].EmployeeID)
	assert.Equal(t, "18000", sum.Agents[0].Amount.String())
	assert.Equal(t, []string{"Somebody Else"}, sum.UnmatchedNames)
	require.Len(t, sum.Managers, 1)
	// 40%+: 320k · 0.45%, 30-34%: 10k · 0.35%
	assert.Equal(t, "1475", sum.Managers[0].Amount.String())
	assert.Equal(t, 2, sum.Stored)

	got, err := svc.ListCommissions(context.Background(), boss.ID, start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1475", got[0].Amount.String())
	assert.Equal(t, models.CommissionKindCommission, got[0].Kind)

	created, err := rm.employees.FindByExactName(context.Background(), "Somebody", "Else")
	assert.Nil(t, created)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestTimecardService_CalculateSalesCommissionsDryRun(t *testing.T) {
	db := newTxDB(t, true)
	svc, rm := newTimecardFixture(t, db)
	jane := rm.employees.add(models.Employee{FirstName: "Jane", LastName: "Doe"})

	start, end := timex.MustParseDate("2025-09-01"), timex.MustParseDate("2025-09-14")
	sum, err := svc.CalculateSalesCommissions(context.Background(), salesReport(t), "sales.xlsx", SalesCommissionRequest{
		Start: start, End: end, DryRun: true,
	})
	require.NoError(t, err)
	assert.True(t, sum.DryRun)
	assert.Zero(t, sum.Stored)
	assert.Empty(t, sum.Managers)

	got, err := svc.ListCommissions(context.Background(), jane.ID, start, end)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTimecardService_CalculateSalesCommissionsValidation(t *testing.T) {
	svc, _ := newTimecardFixture(t, nil)
	ctx := context.Background()
	start, end := timex.MustParseDate("2025-09-01"), timex.MustParseDate("2025-09-14")

	_, err := svc.CalculateSalesCommissions(ctx, bytes.NewBuffer(nil), "s.xlsx", SalesCommissionRequest{Start: end, End: start})
	assert.ErrorIs(t, err, common.ErrorValidation)

	bad := decimal.NewFromInt(150)
	_, err = svc.CalculateSalesCommissions(ctx, bytes.NewBuffer(nil), "s.xlsx", SalesCommissionRequest{
		Start: start, End: end, Managers: []payroll.SalesManager{{EmployeeID: "m", FixedPct: &bad}},
	})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = svc.CalculateSalesCommissions(ctx, bytes.NewBufferString("junk"), "s.xlsx", SalesCommissionRequest{Start: start, End: end})
	assert.ErrorIs(t, err, common.ErrorValidation)
}
