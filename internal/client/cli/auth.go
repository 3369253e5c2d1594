package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a user name, an email and a password and creates the
// account. It does not log in.
func (a *App) Register(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	u, err := a.users.Register(ctx, userName, email, string(password))
	if err != nil {
		return err
	}

	successColor.Fprintf(a.out, "Registered %s\n", u.UserName)
	return nil
}

// Login prompts for credentials and stores the issued token in the session
// slot, replacing whoever was logged in before.
func (a *App) Login(ctx context.Context, _ []string) error {
	userName, err := getSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	u, token, err := a.users.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}

	if err := a.sessions.Begin(ctx, u.ID, token); err != nil {
		return err
	}

	a.userName = u.UserName
	successColor.Fprintf(a.out, "Logged in as %s\n", u.UserName)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.sessions.End(ctx); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(a.out, "anonymous")
		return nil
	}

	a.userName = u.UserName
	fmt.Fprintf(a.out, "%s <%s>\nid: %s\n", u.UserName, u.Email, u.ID)
	return nil
}

// principal is the caller identity for vault calls. No session, or a session
// whose token no longer verifies, means the anonymous caller.
func (a *App) principal(ctx context.Context) (models.Principal, error) {
	p, err := a.sessions.Current(ctx)
	if errors.Is(err, common.ErrNoSession) {
		return models.Anonymous, nil
	}
	if err != nil {
		return models.Anonymous, err
	}
	return p, nil
}

// currentUser returns nil when nobody is logged in.
func (a *App) currentUser(ctx context.Context) (*models.User, error) {
	p, err := a.principal(ctx)
	if err != nil {
		return nil, err
	}
	if p.IsAnonymous() {
		return nil, nil
	}
	return a.users.Get(ctx, p.String())
}

func (a *App) refreshUserName(ctx context.Context) {
	u, err := a.currentUser(ctx)
	if err != nil || u == nil {
		a.userName = ""
		return
	}
	a.userName = u.UserName
}
