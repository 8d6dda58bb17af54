// Package payroll turns approved hours, commissions and benefit deductions
// into pay. All money is shopspring/decimal and rounded to cents; nothing
// here touches the database.
package payroll

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
	"github.com/shopspring/decimal"
)

// Rules are the pay policy knobs.
type Rules struct {
	// WeeklyOvertimeThreshold is the number of regular hours per Monday-based
	// week; anything above is paid as overtime.
	WeeklyOvertimeThreshold decimal.Decimal
	OvertimeMultiplier      decimal.Decimal
	// VacationAccrualRate applies to both worked hours and hourly earnings.
	VacationAccrualRate decimal.Decimal
}

// DefaultRules: 40h week, time and a half, 4% vacation.
func DefaultRules() Rules {
	return Rules{
		WeeklyOvertimeThreshold: decimal.NewFromInt(40),
		OvertimeMultiplier:      decimal.RequireFromString("1.5"),
		VacationAccrualRate:     decimal.RequireFromString("0.04"),
	}
}

// NewRules builds Rules from plain config values.
func NewRules(weeklyThreshold, multiplier, accrual float64) Rules {
	return Rules{
		WeeklyOvertimeThreshold: decimal.NewFromFloat(weeklyThreshold),
		OvertimeMultiplier:      decimal.NewFromFloat(multiplier),
		VacationAccrualRate:     decimal.NewFromFloat(accrual),
	}
}

// Entry is one day of approved time. Hours includes OvertimeHours.
type Entry struct {
	Date          timex.Date
	Hours         decimal.Decimal
	OvertimeHours decimal.Decimal
}

type Deduction struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Input struct {
	EmployeeID  string
	HourlyRate  decimal.Decimal
	Entries     []Entry
	Commissions decimal.Decimal
	Bonuses     decimal.Decimal
	Deductions  []Deduction
}

type Result struct {
	EmployeeID       string
	RegularHours     decimal.Decimal
	OvertimeHours    decimal.Decimal
	HourlyRate       decimal.Decimal
	RegularPay       decimal.Decimal
	OvertimePay      decimal.Decimal
	Commissions      decimal.Decimal
	Bonuses          decimal.Decimal
	GrossPay         decimal.Decimal
	Deductions       decimal.Decimal
	DeductionLines   []Deduction
	DeductionsCapped bool
	NetPay           decimal.Decimal
	VacationHours    decimal.Decimal
	VacationPay      decimal.Decimal
}

// TotalHours is regular plus overtime.
func (r Result) TotalHours() decimal.Decimal {
	return r.RegularHours.Add(r.OvertimeHours)
}

// SplitHours groups entries by Monday-based week and returns regular and
// overtime hours. Explicit overtime on an entry always counts as overtime;
// regular hours above threshold in a week are moved to overtime as well.
// A zero threshold disables the weekly rule.
func SplitHours(entries []Entry, threshold decimal.Decimal) (regular, overtime decimal.Decimal) {
	weekly := map[timex.Date]decimal.Decimal{}
	var weeks []timex.Date
	for _, e := range entries {
		w := e.Date.StartOfWeek()
		if _, ok := weekly[w]; !ok {
			weeks = append(weeks, w)
		}
		weekly[w] = weekly[w].Add(e.Hours.Sub(e.OvertimeHours))
		overtime = overtime.Add(e.OvertimeHours)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })

	for _, w := range weeks {
		reg := weekly[w]
		if threshold.IsPositive() && reg.GreaterThan(threshold) {
			overtime = overtime.Add(reg.Sub(threshold))
			reg = threshold
		}
		regular = regular.Add(reg)
	}
	return regular, overtime
}

// Calculate computes one employee's pay.
//
//	gross = regular·rate + overtime·rate·multiplier + commissions + bonuses
//	net   = gross − min(deductions, gross)
//
// Vacation accrues on worked hours and on hourly earnings only.
func Calculate(in Input, rules Rules) (Result, error) {
	if in.HourlyRate.IsNegative() {
		return Result{}, fmt.Errorf("%w: negative hourly rate for employee %s", common.ErrorValidation, in.EmployeeID)
	}
	for _, e := range in.Entries {
		if e.Hours.IsNegative() || e.OvertimeHours.IsNegative() || e.OvertimeHours.GreaterThan(e.Hours) {
			return Result{}, fmt.Errorf("%w: invalid hours on %s for employee %s", common.ErrorValidation, e.Date, in.EmployeeID)
		}
	}

	regular, overtime := SplitHours(in.Entries, rules.WeeklyOvertimeThreshold)

	res := Result{
		EmployeeID:    in.EmployeeID,
		RegularHours:  regular.Round(2),
		OvertimeHours: overtime.Round(2),
		HourlyRate:    in.HourlyRate,
		RegularPay:    regular.Mul(in.HourlyRate).Round(2),
		OvertimePay:   overtime.Mul(in.HourlyRate).Mul(rules.OvertimeMultiplier).Round(2),
		Commissions:   in.Commissions.Round(2),
		Bonuses:       in.Bonuses.Round(2),
	}

	hourlyEarnings := res.RegularPay.Add(res.OvertimePay)
	res.GrossPay = hourlyEarnings.Add(res.Commissions).Add(res.Bonuses)

	total := decimal.Zero
	for _, d := range in.Deductions {
		if d.Amount.IsNegative() {
			return Result{}, fmt.Errorf("%w: negative deduction %q for employee %s", common.ErrorValidation, d.Name, in.EmployeeID)
		}
		total = total.Add(d.Amount)
		res.DeductionLines = append(res.DeductionLines, Deduction{Name: d.Name, Amount: d.Amount.Round(2)})
	}
	total = total.Round(2)
	if total.GreaterThan(res.GrossPay) {
		total = res.GrossPay
		res.DeductionsCapped = true
	}
	res.Deductions = total
	res.NetPay = res.GrossPay.Sub(total)

	res.VacationHours = regular.Add(overtime).Mul(rules.VacationAccrualRate).Round(2)
	res.VacationPay = hourlyEarnings.Mul(rules.VacationAccrualRate).Round(2)

	return res, nil
}

// Totals sums a batch of results.
type Totals struct {
	Employees     int             `json:"employees"`
	RegularHours  decimal.Decimal `json:"regular_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
	GrossPay      decimal.Decimal `json:"gross_pay"`
	Deductions    decimal.Decimal `json:"deductions"`
	NetPay        decimal.Decimal `json:"net_pay"`
	VacationHours decimal.Decimal `json:"vacation_hours"`
	VacationPay   decimal.Decimal `json:"vacation_pay"`
}

func Summarize(results []Result) Totals {
	var t Totals
	for _, r := range results {
		t.Employees++
		t.RegularHours = t.RegularHours.Add(r.RegularHours)
		t.OvertimeHours = t.OvertimeHours.Add(r.OvertimeHours)
		t.GrossPay = t.GrossPay.Add(r.GrossPay)
		t.Deductions = t.Deductions.Add(r.Deductions)
		t.NetPay = t.NetPay.Add(r.NetPay)
		t.VacationHours = t.VacationHours.Add(r.VacationHours)
		t.VacationPay = t.VacationPay.Add(r.VacationPay)
	}
	return t
}

// PayoutAmount values vacation hours at rate.
func PayoutAmount(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(2)
}
