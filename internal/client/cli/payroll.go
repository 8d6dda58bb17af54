package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/services"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// GeneratePayroll computes draft payrolls for a period. Without -start and
// -end it uses the server's current period.
func (a *App) GeneratePayroll(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate-payroll", flag.ContinueOnError)
	fs.SetOutput(a.out)
	start := fs.String("start", "", "period start (YYYY-MM-DD)")
	end := fs.String("end", "", "period end (YYYY-MM-DD)")
	payDate := fs.String("pay-date", "", "pay date (YYYY-MM-DD)")
	employees := fs.String("employees", "", "comma-separated employee ids (default: all active)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	if (*start == "") != (*end == "") {
		return fmt.Errorf("%w: -start and -end go together", common.ErrorValidation)
	}

	req := services.GenerateRequest{}
	for _, d := range []struct {
		value string
		into  *timex.Date
		name  string
	}{{*start, &req.PeriodStart, "start"}, {*end, &req.PeriodEnd, "end"}, {*payDate, &req.PayDate, "pay-date"}} {
		if d.value == "" {
			continue
		}
		parsed, err := timex.ParseDate(d.value)
		if err != nil {
			return fmt.Errorf("%w: -%s: %v", common.ErrorValidation, d.name, err)
		}
		*d.into = parsed
	}
	if *employees != "" {
		for _, id := range strings.Split(*employees, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.EmployeeIDs = append(req.EmployeeIDs, id)
			}
		}
	}

	if err := a.authorize(); err != nil {
		return err
	}

	if req.PeriodStart.IsZero() {
		cur, err := a.api.CurrentPeriod(ctx)
		if err != nil {
			return a.remote(err)
		}
		req.PeriodStart, req.PeriodEnd = cur.Start, cur.End
		if req.PayDate.IsZero() {
			req.PayDate = cur.PayDate
		}
	}

	res, err := a.api.GeneratePayroll(ctx, req)
	if err != nil {
		return a.remote(err)
	}

	fmt.Fprintf(a.out, "Payroll %s to %s, pay date %s\n", res.PeriodStart, res.PeriodEnd, res.PayDate)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "EMPLOYEE\tREGULAR\tOVERTIME\tGROSS\tDEDUCTIONS\tNET\t")
	for _, p := range res.Payrolls {
		name := p.EmployeeName
		if name == "" {
			name = p.EmployeeID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", name,
			p.RegularHours.StringFixed(2), p.OvertimeHours.StringFixed(2),
			p.GrossPay.StringFixed(2), p.Deductions.StringFixed(2), p.NetPay.StringFixed(2))
	}
	t := res.Totals
	fmt.Fprintf(tw, "TOTAL (%d)\t%s\t%s\t%s\t%s\t%s\t\n", t.Employees,
		t.RegularHours.StringFixed(2), t.OvertimeHours.StringFixed(2),
		t.GrossPay.StringFixed(2), t.Deductions.StringFixed(2), t.NetPay.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(res.Locked) > 0 {
		fmt.Fprintf(a.out, "Left unchanged (already approved or paid): %s\n", strings.Join(res.Locked, ", "))
	}
	return nil
}
