package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hrkeeper/internal/client/client"
	"github.com/dmitrijs2005/hrkeeper/internal/common"
)

// maxChallenges bounds the MFA / password-change round trips of one login.
const maxChallenges = 3

func (a *App) Login(ctx context.Context, args []string) error {
	if len(args) > 1 {
		fmt.Fprintln(a.out, "usage: hrctl login [USERNAME]")
		return ErrUsage
	}

	username := ""
	if len(args) == 1 {
		username = args[0]
	} else {
		var err error
		username, err = GetSimpleText(a.reader, "Username or email", a.out)
		if err != nil {
			return err
		}
	}
	if username == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, username, string(password))
	if err != nil {
		return a.remote(err)
	}

	for i := 0; res.SessionID == "" && i < maxChallenges; i++ {
		switch {
		case res.RequiresMFA:
			res, err = a.answerMFA(ctx, res)
		case res.RequiresPasswordChange:
			res, err = a.answerPasswordChange(ctx, res, password)
		default:
			return errors.New("login: server returned neither a session nor a challenge")
		}
		if err != nil {
			return a.remote(err)
		}
	}
	if res.SessionID == "" {
		return errors.New("login: too many challenges")
	}

	if err := a.session.Save(res.SessionID); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if res.User != nil {
		fmt.Fprintf(a.out, "Logged in as %s (%s)\n", res.User.Username, res.User.Role)
	} else {
		fmt.Fprintln(a.out, "Logged in")
	}
	if res.PasswordWarning != "" {
		fmt.Fprintln(a.out, "Warning:", res.PasswordWarning)
	}
	if res.UsedBackupCode && res.BackupCodesRemaining != nil {
		fmt.Fprintf(a.out, "Backup code used, %d remaining\n", *res.BackupCodesRemaining)
	}
	return nil
}

func (a *App) answerMFA(ctx context.Context, res *client.LoginResponse) (*client.LoginResponse, error) {
	code, err := GetSimpleText(a.reader, "Authentication code (or backup code)", a.out)
	if err != nil {
		return nil, err
	}
	return a.api.VerifyMFA(ctx, res.TempToken, code)
}

func (a *App) answerPasswordChange(ctx context.Context, res *client.LoginResponse, current []byte) (*client.LoginResponse, error) {
	reason := res.Reason
	if reason == "" {
		reason = "Password change required"
	}
	fmt.Fprintln(a.out, reason)

	next, err := getNewPassword(a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(next)

	return a.api.ChangePassword(ctx, res.TempToken, string(current), string(next))
}

// Logout revokes the session on the server and forgets it locally. A
// session the server no longer knows is still forgotten.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.api.Logout(ctx); err != nil && !client.IsUnauthorized(err) {
		return a.remote(err)
	}
	if err := a.session.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
