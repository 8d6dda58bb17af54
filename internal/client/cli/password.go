package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"github.com/dmitrijs2005/hrkeeper/internal/server/auth"
)

// HashPassword prints a bcrypt hash for a new password, for seeding users
// or resetting one directly in the database.
func (a *App) HashPassword(ctx context.Context, args []string) error {
	if len(args) != 0 {
		fmt.Fprintln(a.out, "usage: hrctl hash-password")
		return ErrUsage
	}

	pw, err := getNewPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if err := auth.ValidatePassword(string(pw)); err != nil {
		return err
	}
	hash, err := auth.HashPassword(string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, hash)
	return nil
}
