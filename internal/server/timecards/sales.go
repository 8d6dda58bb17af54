package timecards

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/shopspring/decimal"
)

// SalesRow is one agent line of a sales performance report.
type SalesRow struct {
	Row        int
	Name       string
	BookingPct decimal.Decimal
	Revenue    decimal.Decimal
}

// ParsePercent reads "55", "55%" or "55.5 %" as a percentage in [0, 100].
func ParsePercent(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%w: invalid percentage %q", common.ErrorValidation, s)
	}
	return d, nil
}

// ParseSalesSheet finds a header with a name column, a booking percentage
// column and a revenue column and reads the agent rows below it. Total rows
// are skipped.
func ParseSalesSheet(rows [][]string) ([]SalesRow, []RowError) {
	headerAt, nameCol, bookCol, revCol := -1, -1, -1, -1
	for i := 0; i < len(rows) && i < 300 && headerAt < 0; i++ {
		n, b, v := -1, -1, -1
		for j, c := range rows[i] {
			h := strings.ToLower(strings.TrimSpace(c))
			switch {
			case h == "name" || h == "agent" || h == "employee" || h == "sales person" || h == "salesperson":
				if n < 0 {
					n = j
				}
			case strings.Contains(h, "book") && (strings.Contains(h, "%") || strings.Contains(h, "pct") || strings.Contains(h, "percent")):
				if b < 0 {
					b = j
				}
			case strings.Contains(h, "revenue") || strings.Contains(h, "booked total") || h == "sales":
				if v < 0 {
					v = j
				}
			}
		}
		if n >= 0 && b >= 0 && v >= 0 {
			headerAt, nameCol, bookCol, revCol = i, n, b, v
		}
	}
	if headerAt < 0 {
		return nil, []RowError{{Row: 0, Reason: "no name, booking % and revenue header found"}}
	}

	var out []SalesRow
	var errs []RowError
	for i := headerAt + 1; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, nameCol)
		if name == "" || !hasLetter(name) {
			continue
		}
		if l := strings.ToLower(name); strings.HasPrefix(l, "total") || strings.HasPrefix(l, "grand total") {
			continue
		}
		pct, err := ParsePercent(cell(row, bookCol))
		if err != nil {
			errs = append(errs, RowError{Row: i + 1, Employee: name, Reason: err.Error()})
			continue
		}
		rev, err := ParseAmount(cell(row, revCol))
		if err != nil {
			errs = append(errs, RowError{Row: i + 1, Employee: name, Reason: err.Error()})
			continue
		}
		out = append(out, SalesRow{Row: i + 1, Name: name, BookingPct: pct, Revenue: rev})
	}
	return out, errs
}
