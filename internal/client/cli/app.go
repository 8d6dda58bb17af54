package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/hrkeeper/internal/client/client"
	"github.com/dmitrijs2005/hrkeeper/internal/client/config"
	"github.com/dmitrijs2005/hrkeeper/internal/common"
)

// ErrUsage is returned for an unknown command or bad arguments; the usage
// text has already been printed.
var ErrUsage = errors.New("usage error")

type App struct {
	config  *config.Config
	api     *client.Client
	session *sessionStore
	reader  *bufio.Reader
	out     io.Writer
	now     func() time.Time
}

func NewApp(c *config.Config) *App {
	return &App{
		config:  c,
		api:     client.New(c.ServerURL, c.RequestTimeout),
		session: newSessionStore(c.SessionFile),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
	}
}

// Run executes one command. args starts with the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help", "-h", "-help", "--help":
		a.usage()
		return nil
	case "periods":
		return a.Periods(ctx, rest)
	case "match":
		return a.Match(ctx, rest)
	case "hash-password":
		return a.HashPassword(ctx, rest)
	case "login":
		return a.Login(ctx, rest)
	case "logout":
		return a.Logout(ctx)
	case "import-timecards":
		return a.ImportTimecards(ctx, rest)
	case "generate-payroll":
		return a.GeneratePayroll(ctx, rest)
	case "upload-document":
		return a.UploadDocument(ctx, rest)
	default:
		fmt.Fprintf(a.out, "Unknown command %q\n\n", cmd)
		a.usage()
		return ErrUsage
	}
}

func (a *App) usage() {
	fmt.Fprint(a.out, `Usage: hrctl [-a URL] [-t SECONDS] [-s FILE] [-c CONFIG] <command> [args]

Offline:
  periods [-year N] [-anchor YYYY-MM-DD] [-server]   list bi-weekly pay periods
  match NAME NAME                                     compare two names
  match -server [-email E] [-phone P] NAME            find an employee
  hash-password                                       bcrypt hash for a password

Server:
  login [USERNAME]                                    start a session
  logout                                              end the session
  import-timecards FILE...                            import .xlsx/.xls exports
  generate-payroll [-start D -end D] [-pay-date D]    run payroll (default: current period)
  upload-document [-type MIME] EMPLOYEE_ID FILE       attach a file to an employee
`)
}

// authorize loads the stored session token into the API client.
func (a *App) authorize() error {
	token, err := a.session.Load()
	if err != nil {
		return err
	}
	a.api.SetToken(token)
	return nil
}

// remote rewrites API failures into operator-facing errors.
func (a *App) remote(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *client.APIError
	switch {
	case client.IsUnauthorized(err):
		return fmt.Errorf("session expired or revoked, run hrctl login: %w", err)
	case errors.Is(err, common.ErrorAccountLocked) && errors.As(err, &apiErr) && apiErr.RetryAfter > 0:
		return fmt.Errorf("account locked, retry in %s: %w", apiErr.RetryAfter, err)
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Errorf("cannot reach %s: %w", a.config.ServerURL, err)
	}
	return err
}
