package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/dmitrijs2005/rooznegar/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Setup prompts for an email and the password twice and creates the local
// identity. The password buffers are wiped before returning.
func (a *App) Setup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Create your journal. Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Choose a password (at least 6 characters)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Repeat the password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	email, err = a.gate.Setup(ctx, email, password, confirm)
	if err != nil {
		return err
	}

	a.email = email
	okColor.Fprintf(a.out, "Welcome, %s!\n", email)
	return nil
}

// Login prompts for the password of the existing identity.
func (a *App) Login(ctx context.Context) error {
	prompt := "Enter password"
	if account, err := a.gate.Account(ctx); err == nil && account != "" {
		prompt = fmt.Sprintf("Enter password for %s", account)
	}

	password, err := getPassword(a.out, prompt)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	email, err := a.gate.Login(ctx, password)
	if err != nil {
		return err
	}

	a.email = email
	okColor.Fprintf(a.out, "Welcome back, %s!\n", email)
	return nil
}

// authenticate runs setup or login until the gate opens. Validation and
// credential errors are shown and the prompt repeats; input errors end it.
func (a *App) authenticate(ctx context.Context) error {
	for {
		state, email := a.gate.State()

		var err error
		switch state {
		case session.Authenticated:
			a.email = email
			return nil
		case session.NeedsSetup:
			err = a.Setup(ctx)
		case session.NeedsLogin:
			err = a.Login(ctx)
		}

		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return err
		}
		if !isUserError(err) {
			return fmt.Errorf("authentication failed: %w", err)
		}
		a.printError(err)
	}
}

func isUserError(err error) bool {
	return errors.Is(err, common.ErrValidation) ||
		errors.Is(err, common.ErrInvalidCredentials) ||
		errors.Is(err, common.ErrAlreadySetUp) ||
		errors.Is(err, common.ErrNotSetUp)
}
