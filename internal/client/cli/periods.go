package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/hrkeeper/internal/server/payperiod"
	"github.com/dmitrijs2005/hrkeeper/internal/timex"
)

// Periods prints the pay periods of a year. It computes them locally unless
// -server asks for the server's calendar (which may be anchored).
func (a *App) Periods(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("periods", flag.ContinueOnError)
	fs.SetOutput(a.out)
	year := fs.Int("year", 0, "calendar year (default: year of the current period)")
	anchor := fs.String("anchor", "", "reference pay date (YYYY-MM-DD) for an anchored calendar")
	fromServer := fs.Bool("server", false, "ask the server instead of computing locally")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	today := timex.DateOf(a.now())

	var periods []payperiod.Period
	if *fromServer {
		if err := a.authorize(); err != nil {
			return err
		}
		y := *year
		if y == 0 {
			cur, err := a.api.CurrentPeriod(ctx)
			if err != nil {
				return a.remote(err)
			}
			y = cur.Year
		}
		list, err := a.api.Periods(ctx, y)
		if err != nil {
			return a.remote(err)
		}
		periods = list
	} else {
		cal := payperiod.NewCalendar()
		if *anchor != "" {
			ref, err := timex.ParseDate(*anchor)
			if err != nil {
				return fmt.Errorf("anchor: %w", err)
			}
			cal = payperiod.NewAnchoredCalendar(ref)
		}
		y := *year
		if y == 0 {
			y = cal.Current(today).Year
		}
		periods = cal.Year(y, today)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tSTART\tEND\tPAY DATE\tSTATUS\t")
	for _, p := range periods {
		mark := ""
		if p.Contains(today) {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\t\n", p.Name, mark, p.Start, p.End, p.PayDate, p.Status)
	}
	return tw.Flush()
}
