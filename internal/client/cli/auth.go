package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/taskplanner/internal/client/client"
	"github.com/dmitrijs2005/taskplanner/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username, e-mail and password and attempts
// to create a new account via the AuthService.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning. Any I/O or service error is returned
// unchanged.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
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
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, email, password); err != nil {
		log.Printf("Registration unsuccessfull: %s", err.Error())
		return err
	}

	fmt.Println("Success! You can log in now.")
	return nil
}

// Login prompts the user for credentials and tries to authenticate against
// the server.
//
// On success the session is saved locally by the AuthService, a.userName is
// set and the connectivity Mode switches to ModeOnline. If the server is
// unreachable the Mode switches to ModeOffline; logging in needs the server,
// so the user stays logged out. The password is securely wiped before
// returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, userName, password); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			log.Printf("Server unavailable, try again later")
			a.setMode(ModeOffline)
		} else {
			log.Printf("Login unsuccessfull: %s", err.Error())
		}
		return err
	}

	log.Printf("Login successfull")
	a.userName = userName
	a.setMode(ModeOnline)
	return nil
}

// restoreSession resumes the session saved by a previous login, if any.
// Errors are reported but never fatal: the user can always log in again.
func (a *App) restoreSession(ctx context.Context) {
	userName, err := a.authService.RestoreSession(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrLocalDataNotAvailable) {
			log.Printf("Could not restore session: %s", err.Error())
		}
		return
	}
	a.userName = userName
	log.Printf("Restored session for %s", userName)
}

// Logout forgets the saved session, wipes the local cache and removes the
// in-memory identity. It returns any error from the AuthService cleanup.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	return nil
}
