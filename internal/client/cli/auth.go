package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email, a password and its confirmation and
// creates the account. On success the user is signed in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}

	sess, err := a.auth.Register(ctx, email, password, confirm)
	if err != nil {
		return a.report(ctx, "register", err)
	}

	fmt.Fprintf(a.out, "Account created, signed in as %s\n", sess.Email)
	a.afterSignIn(ctx)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	sess, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return a.report(ctx, "login", err)
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
	a.afterSignIn(ctx)
	return nil
}

func (a *App) afterSignIn(ctx context.Context) {
	a.pending = nil
	a.expiryShown = false
	a.refresh(ctx)
	a.startBackgroundSync(ctx)
}

// Logout drops the local session; the user continues as guest.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.report(ctx, "logout", err)
	}
	a.pending = nil
	a.refresh(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
