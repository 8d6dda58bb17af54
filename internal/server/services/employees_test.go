package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/matching"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmployeeFixture(t *testing.T, db *sql.DB) (*EmployeeService, *fakeRepoManager) {
	t.Helper()
	rm := newFakeRepoManager()
	return NewEmployeeService(db, rm, testConfig(), testBox()), rm
}

func TestEmployeeService_CreateEncryptsSensitiveFields(t *testing.T) {
	svc, rm := newEmployeeFixture(t, nil)
	ctx := context.Background()

	e, err := svc.Create(ctx, &models.Employee{
		FirstName:   " Ana ",
		LastName:    "Ávila",
		Email:       "Ana@Example.com",
		SIN:         "123-456-789",
		BankAccount: "001-12345",
		HourlyRate:  dec("21.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", e.FirstName)
	assert.Equal(t, "ana@example.com", e.Email)
	assert.Equal(t, common.EmployeeStatusActive, e.Status)
	assert.Equal(t, common.SourceManual, e.OnboardingSource)
	assert.False(t, e.HireDate.IsZero())

	stored := rm.employees.byID[e.ID]
	require.NotEmpty(t, stored.SINEncrypted)
	assert.NotContains(t, string(stored.SINEncrypted), "123-456-789")

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "123-456-789", got.SIN)
	assert.Equal(t, "001-12345", got.BankAccount)
}

func TestEmployeeService_CreateValidation(t *testing.T) {
	svc, _ := newEmployeeFixture(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		e    models.Employee
	}{
		{"no first name", models.Employee{LastName: "Doe"}},
		{"negative rate", models.Employee{FirstName: "A", HourlyRate: dec("-1")}},
		{"bad status", models.Employee{FirstName: "A", Status: "Retired"}},
		{"bad schedule", models.Employee{FirstName: "A", WorkSchedule: "Mon,Funday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.e
			_, err := svc.Create(ctx, &e)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestEmployeeService_UpdateKeepsCiphertextWhenBlank(t *testing.T) {
	svc, rm := newEmployeeFixture(t, nil)
	ctx := context.Background()
	e, err := svc.Create(ctx, &models.Employee{FirstName: "Ana", SIN: "111"})
	require.NoError(t, err)

	upd := *e
	upd.SIN = ""
	upd.JobTitle = "Cashier"
	require.NoError(t, svc.Update(ctx, &upd))

	got, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "111", got.SIN)
	assert.Equal(t, "Cashier", rm.employees.byID[e.ID].JobTitle)
}

func TestEmployeeService_FindOrCreate(t *testing.T) {
	svc, rm := newEmployeeFixture(t, nil)
	ctx := context.Background()
	existing := rm.employees.add(models.Employee{FirstName: "Robert", LastName: "Smith", Nickname: "Bob Smith"})

	got, created, err := svc.FindOrCreate(ctx, matching.Query{FullName: "Bob Smith"}, common.SourceTimecard)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, got.ID)

	got, created, err = svc.FindOrCreate(ctx, matching.Query{FullName: "Lee, Dana"}, common.SourceTimecard)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Dana", got.FirstName)
	assert.Equal(t, "Lee", got.LastName)
	assert.Equal(t, common.SourceTimecard, got.OnboardingSource)

	_, _, err = svc.FindOrCreate(ctx, matching.Query{FullName: "  "}, common.SourceTimecard)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestEmployeeService_FindDuplicates(t *testing.T) {
	svc, rm := newEmployeeFixture(t, nil)
	a := rm.employees.add(models.Employee{FirstName: "Jon", LastName: "Smith", OnboardingSource: common.SourceTimecard})
	b := rm.employees.add(models.Employee{FirstName: "Jonathan", LastName: "Smith", OnboardingSource: common.SourceOnboarding})
	rm.employees.add(models.Employee{FirstName: "Maria", LastName: "Lopez"})
	rm.employees.add(models.Employee{FirstName: "Jon", LastName: "Smith", Status: common.EmployeeStatusTerminated})

	groups, err := svc.FindDuplicates(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2)
	assert.Equal(t, b.ID, groups[0][0].ID, "onboarding record is primary")
	assert.Equal(t, a.ID, groups[0][1].ID)
}

func TestEmployeeService_Merge(t *testing.T) {
	db := newTxDB(t, true)
	svc, rm := newEmployeeFixture(t, db)
	ctx := context.Background()

	target, err := svc.Create(ctx, &models.Employee{FirstName: "Jonathan", LastName: "Smith", OnboardingSource: common.SourceOnboarding})
	require.NoError(t, err)
	source, err := svc.Create(ctx, &models.Employee{
		FirstName:        "Jon",
		LastName:         "Smith",
		Phone:            "555-0100",
		SIN:              "999",
		OnboardingSource: common.SourceTimecard,
	})
	require.NoError(t, err)
	rm.employees.reassign = map[string]int64{"time_entries": 4}

	res, err := svc.Merge(ctx, source.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Moved["time_entries"])
	assert.ElementsMatch(t, []string{"phone", "sin"}, res.ChangedFields)

	got, err := svc.Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, "999", got.SIN)

	src := rm.employees.byID[source.ID]
	assert.Equal(t, common.EmployeeStatusTerminated, src.Status)
	assert.Contains(t, src.TerminationReason, "Jonathan Smith")
}

func TestEmployeeService_MergeRejects(t *testing.T) {
	svc, rm := newEmployeeFixture(t, nil)
	_, err := svc.Merge(context.Background(), "a", "a")
	assert.ErrorIs(t, err, common.ErrorValidation)

	db := newTxDB(t, false)
	svc, rm = newEmployeeFixture(t, db)
	src := rm.employees.add(models.Employee{FirstName: "A"})
	dst := rm.employees.add(models.Employee{FirstName: "B", Status: common.EmployeeStatusTerminated})
	_, err = svc.Merge(context.Background(), src.ID, dst.ID)
	assert.ErrorIs(t, err, common.ErrorInvalidState)
	assert.Equal(t, common.EmployeeStatusActive, rm.employees.byID[src.ID].Status)
}

func TestEmployeeService_TerminateDefaultsToToday(t *testing.T) {
	svc, rm := newEmployeeFixture(t, nil)
	e := rm.employees.add(models.Employee{FirstName: "A"})

	require.NoError(t, svc.Terminate(context.Background(), e.ID, timex.Date{}, " quit "))
	got := rm.employees.byID[e.ID]
	assert.Equal(t, timex.Today(), got.TerminationDate)
	assert.Equal(t, "quit", got.TerminationReason)
}
