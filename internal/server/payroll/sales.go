package payroll

import (
	"github.com/shopspring/decimal"
)

// Sales roles. International closers are paid like agents.
const (
	SalesRoleAgent               = "agent"
	SalesRoleManager             = "manager"
	SalesRoleInternationalCloser = "international_closer"
)

// Commission calculation methods for managers.
const (
	MethodBucketSum     = "bucket_sum"
	MethodFixedOverride = "fixed_override"
)

// AgentRate is the personal commission tier of an agent.
type AgentRate struct {
	Pct           decimal.Decimal `json:"commission_pct"`
	VacationAward decimal.Decimal `json:"vacation_award_value"`
}

type agentTier struct {
	booking, revenue int64
	pct              string
	vacation         int64
}

// Highest tier first. Both thresholds are strict.
var agentTiers = []agentTier{
	{55, 250000, "6.0", 5000},
	{50, 250000, "6.0", 0},
	{40, 200000, "5.5", 0},
	{35, 160000, "5.0", 0},
	{30, 115000, "4.5", 0},
}

var (
	mixedTierBooking = decimal.NewFromInt(30)
	mixedTierRevenue = decimal.NewFromInt(115000)
)

// ComputeAgentRate picks the commission rate for a booking percentage
// (0-100) and the revenue booked in the period. An agent above 30% booking
// or above 115k revenue, but not both, earns 4%; below both, 3.5%.
func ComputeAgentRate(bookingPct, revenue decimal.Decimal) AgentRate {
	for _, t := range agentTiers {
		if bookingPct.GreaterThan(decimal.NewFromInt(t.booking)) && revenue.GreaterThan(decimal.NewFromInt(t.revenue)) {
			return AgentRate{Pct: decimal.RequireFromString(t.pct), VacationAward: decimal.NewFromInt(t.vacation)}
		}
	}
	if bookingPct.GreaterThan(mixedTierBooking) || revenue.GreaterThan(mixedTierRevenue) {
		return AgentRate{Pct: decimal.RequireFromString("4.0"), VacationAward: decimal.Zero}
	}
	return AgentRate{Pct: decimal.RequireFromString("3.5"), VacationAward: decimal.Zero}
}

// ManagerBucket groups agents by booking percentage. A manager earns
// RatePct of the revenue of the agents in each bucket.
type ManagerBucket struct {
	Label   string
	Min     decimal.Decimal
	RatePct decimal.Decimal
}

// ManagerBuckets are ordered by Min; each reaches up to the next Min.
var ManagerBuckets = []ManagerBucket{
	{"0-19%", decimal.NewFromInt(0), decimal.RequireFromString("0.25")},
	{"20-24%", decimal.NewFromInt(20), decimal.RequireFromString("0.275")},
	{"25-29%", decimal.NewFromInt(25), decimal.RequireFromString("0.3")},
	{"30-34%", decimal.NewFromInt(30), decimal.RequireFromString("0.35")},
	{"35-39%", decimal.NewFromInt(35), decimal.RequireFromString("0.4")},
	{"40%+", decimal.NewFromInt(40), decimal.RequireFromString("0.45")},
}

// ManagerBucketFor returns the bucket an agent's booking percentage falls in.
func ManagerBucketFor(bookingPct decimal.Decimal) ManagerBucket {
	b := ManagerBuckets[0]
	for _, c := range ManagerBuckets[1:] {
		if bookingPct.GreaterThanOrEqual(c.Min) {
			b = c
		}
	}
	return b
}

// SalesPerformance is one agent line of a period's sales report.
// EmployeeID is empty when the name matched nobody; such lines still count
// towards the manager buckets.
type SalesPerformance struct {
	EmployeeID string
	Name       string
	Role       string
	BookingPct decimal.Decimal
	Revenue    decimal.Decimal
}

// SalesManager is a manager paid from the pooled agent revenue. A non-nil
// FixedPct replaces the bucket calculation with a flat share of the pool.
type SalesManager struct {
	EmployeeID string
	FixedPct   *decimal.Decimal
}

type AgentCommission struct {
	EmployeeID    string          `json:"employee_id"`
	Name          string          `json:"employee_name"`
	BookingPct    decimal.Decimal `json:"booking_pct"`
	Revenue       decimal.Decimal `json:"revenue"`
	RatePct       decimal.Decimal `json:"commission_pct"`
	Amount        decimal.Decimal `json:"commission_amount"`
	VacationAward decimal.Decimal `json:"vacation_award_value"`
}

type BucketTotal struct {
	Label      string          `json:"bucket_label"`
	RatePct    decimal.Decimal `json:"bucket_rate_pct"`
	Agents     int             `json:"agent_count"`
	Revenue    decimal.Decimal `json:"bucket_revenue"`
	Commission decimal.Decimal `json:"bucket_commission"`
}

type ManagerCommission struct {
	EmployeeID    string           `json:"employee_id"`
	Method        string           `json:"calculation_method"`
	FixedPct      *decimal.Decimal `json:"commission_pct_override,omitempty"`
	PooledRevenue decimal.Decimal  `json:"pooled_revenue"`
	Amount        decimal.Decimal  `json:"commission_amount"`
	Breakdown     []BucketTotal    `json:"breakdown,omitempty"`
}

// SalesCommissions is the outcome of a period's sales calculation.
type SalesCommissions struct {
	Agents         []AgentCommission   `json:"agent_commissions"`
	Managers       []ManagerCommission `json:"manager_commissions"`
	PooledRevenue  decimal.Decimal     `json:"pooled_revenue"`
	TotalAgent     decimal.Decimal     `json:"total_agent_commission"`
	TotalManager   decimal.Decimal     `json:"total_manager_commission"`
	TotalVacation  decimal.Decimal     `json:"total_vacation_awards"`
	SkippedNoBook  int                 `json:"skipped_no_booking_pct_rows"`
	AgentsNoSales  []string            `json:"agents_without_revenue"`
	UnmatchedNames []string            `json:"unmatched_names"`
}

var hundred = decimal.NewFromInt(100)

// ComputeSalesCommissions pays every matched agent by its own tier and
// every manager from the pool of all lines with a booking percentage.
// Lines without a booking percentage are ignored entirely.
func ComputeSalesCommissions(lines []SalesPerformance, managers []SalesManager) *SalesCommissions {
	res := &SalesCommissions{
		Agents:        []AgentCommission{},
		Managers:      []ManagerCommission{},
		PooledRevenue: decimal.Zero,
		TotalAgent:    decimal.Zero,
		TotalManager:  decimal.Zero,
		TotalVacation: decimal.Zero,
	}

	var pool []SalesPerformance
	for _, l := range lines {
		if !l.BookingPct.IsPositive() {
			res.SkippedNoBook++
			continue
		}
		pool = append(pool, l)
		res.PooledRevenue = res.PooledRevenue.Add(l.Revenue)

		if l.EmployeeID == "" {
			res.UnmatchedNames = append(res.UnmatchedNames, l.Name)
			continue
		}
		if l.Role == SalesRoleManager {
			continue
		}
		if !l.Revenue.IsPositive() {
			res.AgentsNoSales = append(res.AgentsNoSales, l.EmployeeID)
		}
		rate := ComputeAgentRate(l.BookingPct, l.Revenue)
		a := AgentCommission{
			EmployeeID:    l.EmployeeID,
			Name:          l.Name,
			BookingPct:    l.BookingPct,
			Revenue:       l.Revenue.Round(2),
			RatePct:       rate.Pct,
			Amount:        l.Revenue.Mul(rate.Pct).Div(hundred).Round(2),
			VacationAward: rate.VacationAward,
		}
		res.Agents = append(res.Agents, a)
		res.TotalAgent = res.TotalAgent.Add(a.Amount)
		res.TotalVacation = res.TotalVacation.Add(a.VacationAward)
	}

	for _, m := range managers {
		mc := ManagerCommission{EmployeeID: m.EmployeeID, PooledRevenue: res.PooledRevenue.Round(2)}
		if m.FixedPct != nil {
			mc.Method = MethodFixedOverride
			mc.FixedPct = m.FixedPct
			mc.Amount = res.PooledRevenue.Mul(*m.FixedPct).Div(hundred).Round(2)
		} else {
			mc.Method = MethodBucketSum
			mc.Breakdown, mc.Amount = bucketSum(pool)
		}
		res.Managers = append(res.Managers, mc)
		res.TotalManager = res.TotalManager.Add(mc.Amount)
	}
	res.PooledRevenue = res.PooledRevenue.Round(2)
	return res
}

func bucketSum(pool []SalesPerformance) ([]BucketTotal, decimal.Decimal) {
	totals := make([]BucketTotal, len(ManagerBuckets))
	index := make(map[string]int, len(ManagerBuckets))
	for i, b := range ManagerBuckets {
		totals[i] = BucketTotal{Label: b.Label, RatePct: b.RatePct, Revenue: decimal.Zero}
		index[b.Label] = i
	}
	for _, l := range pool {
		t := &totals[index[ManagerBucketFor(l.BookingPct).Label]]
		t.Agents++
		t.Revenue = t.Revenue.Add(l.Revenue)
	}

	amount := decimal.Zero
	for i := range totals {
		c := totals[i].Revenue.Mul(totals[i].RatePct).Div(hundred)
		amount = amount.Add(c)
		totals[i].Commission = c.Round(2)
		totals[i].Revenue = totals[i].Revenue.Round(2)
	}
	return totals, amount.Round(2)
}
