package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/server/matching"
)

// Match compares two names with the same rules the importers use, or with
// -server looks the person up among existing employees.
func (a *App) Match(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fromServer := fs.Bool("server", false, "match against employees on the server")
	email := fs.String("email", "", "email address (with -server)")
	phone := fs.String("phone", "", "phone number (with -server)")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	if *fromServer {
		if fs.NArg() > 1 || (fs.NArg() == 0 && *email == "" && *phone == "") {
			fmt.Fprintln(a.out, "usage: hrctl match -server [-email E] [-phone P] [NAME]")
			return ErrUsage
		}
		if err := a.authorize(); err != nil {
			return err
		}
		m, err := a.api.MatchEmployee(ctx, fs.Arg(0), *email, *phone)
		if err != nil {
			return a.remote(err)
		}
		if !m.Matched || m.Employee == nil {
			fmt.Fprintln(a.out, "No matching employee")
			return nil
		}
		e := m.Employee
		fmt.Fprintf(a.out, "Matched %s %s (%s) by %s\n", e.FirstName, e.LastName, e.ID, m.Strategy)
		return nil
	}

	if fs.NArg() != 2 {
		fmt.Fprintln(a.out, "usage: hrctl match NAME NAME")
		return ErrUsage
	}
	// "Last, First" is rewritten to "First Last" before comparing
	canonical := make([]string, 2)
	for i, name := range fs.Args() {
		first, last := matching.SplitFullName(name)
		canonical[i] = strings.TrimSpace(first + " " + last)
		fmt.Fprintf(a.out, "%-30q first=%q last=%q\n", name, matching.NormalizeName(first), matching.NormalizeName(last))
	}
	if matching.NamesSimilar(canonical[0], canonical[1]) {
		fmt.Fprintln(a.out, "Match: yes")
	} else {
		fmt.Fprintln(a.out, "Match: no")
	}
	return nil
}
