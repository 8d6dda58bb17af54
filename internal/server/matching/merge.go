package matching

import (
	"sort"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/models"
)

// Merge folds incoming into a copy of existing and returns the copy with the
// names of the fields it changed.
//
// Empty incoming values never overwrite anything and empty existing values
// are always filled. Beyond that, onboarding data wins over what is on file,
// while timecard and commission data only overwrite records that were
// entered manually or have no recorded source.
func Merge(existing, incoming *models.Employee, source string) (*models.Employee, []string) {
	merged := *existing
	var changed []string

	overwrite := false
	switch source {
	case common.SourceOnboarding:
		overwrite = true
	case common.SourceTimecard, common.SourceCommission:
		overwrite = existing.OnboardingSource == "" || existing.OnboardingSource == common.SourceManual
	}

	str := func(name string, dst *string, in string) {
		if in == "" || in == *dst {
			return
		}
		if *dst == "" || overwrite {
			*dst = in
			changed = append(changed, name)
		}
	}

	str("email", &merged.Email, incoming.Email)
	str("phone", &merged.Phone, incoming.Phone)
	str("nickname", &merged.Nickname, incoming.Nickname)
	str("job_title", &merged.JobTitle, incoming.JobTitle)
	str("sin", &merged.SIN, incoming.SIN)
	str("bank_account", &merged.BankAccount, incoming.BankAccount)

	if !incoming.HireDate.IsZero() && incoming.HireDate != merged.HireDate && (merged.HireDate.IsZero() || overwrite) {
		merged.HireDate = incoming.HireDate
		changed = append(changed, "hire_date")
	}
	if incoming.DepartmentID != nil && *incoming.DepartmentID != "" &&
		(merged.DepartmentID == nil || (overwrite && *merged.DepartmentID != *incoming.DepartmentID)) {
		id := *incoming.DepartmentID
		merged.DepartmentID = &id
		changed = append(changed, "department_id")
	}
	if incoming.HourlyRate.IsPositive() && !incoming.HourlyRate.Equal(merged.HourlyRate) &&
		(merged.HourlyRate.IsZero() || overwrite) {
		merged.HourlyRate = incoming.HourlyRate
		changed = append(changed, "hourly_rate")
	}

	if source == common.SourceOnboarding && merged.OnboardingSource != common.SourceOnboarding {
		merged.OnboardingSource = common.SourceOnboarding
		changed = append(changed, "onboarding_source")
	}

	return &merged, changed
}

// FindDuplicateGroups groups non-terminated employees whose full names are
// similar. Each returned group has at least two members, primary first
// (see PickPrimary).
func FindDuplicateGroups(employees []*models.Employee) [][]*models.Employee {
	var active []*models.Employee
	for _, e := range employees {
		if e.Status != common.EmployeeStatusTerminated {
			active = append(active, e)
		}
	}

	used := make([]bool, len(active))
	var groups [][]*models.Employee
	for i, e := range active {
		if used[i] {
			continue
		}
		group := []*models.Employee{e}
		for j := i + 1; j < len(active); j++ {
			if used[j] {
				continue
			}
			if NamesSimilar(e.FullName(), active[j].FullName()) {
				group = append(group, active[j])
				used[j] = true
			}
		}
		if len(group) > 1 {
			used[i] = true
			groups = append(groups, PickPrimary(group))
		}
	}
	return groups
}

// PickPrimary orders a duplicate group so the record to keep comes first:
// onboarding-sourced records beat imported ones, imported beat manual, and
// ties go to the oldest record.
func PickPrimary(group []*models.Employee) []*models.Employee {
	out := append([]*models.Employee(nil), group...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := sourceRank(out[i].OnboardingSource), sourceRank(out[j].OnboardingSource)
		if ri != rj {
			return ri < rj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func sourceRank(source string) int {
	switch source {
	case common.SourceOnboarding:
		return 0
	case common.SourceTimecard, common.SourceCommission:
		return 1
	case common.SourceManual:
		return 2
	default:
		return 3
	}
}
