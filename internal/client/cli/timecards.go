package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ImportTimecards uploads each file in turn. A failing file does not stop
// the rest; all failures are returned together.
func (a *App) ImportTimecards(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "usage: hrctl import-timecards FILE...")
		return ErrUsage
	}
	if err := a.authorize(); err != nil {
		return err
	}

	var errs []error
	for _, path := range args {
		if err := a.importTimecardFile(ctx, path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) importTimecardFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sum, err := a.api.ImportTimecards(ctx, filepath.Base(path), f)
	if err != nil {
		return a.remote(err)
	}

	fmt.Fprintf(a.out, "%s: period %s to %s, %d entries imported, %d skipped, %d employees matched, %d created\n",
		sum.File, sum.PeriodStart, sum.PeriodEnd, sum.EntriesInserted, sum.EntriesSkipped,
		sum.EmployeesMatched, sum.EmployeesCreated)
	for _, w := range sum.Warnings {
		fmt.Fprintln(a.out, "  warning:", w)
	}
	for _, e := range sum.Errors {
		if e.Employee != "" {
			fmt.Fprintf(a.out, "  row %d (%s): %s\n", e.Row, e.Employee, e.Reason)
		} else {
			fmt.Fprintf(a.out, "  row %d: %s\n", e.Row, e.Reason)
		}
	}
	return nil
}
