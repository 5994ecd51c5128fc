package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

// Root greets the user, passes the session gate and then runs the REPL
// until exit or end of input.
func (a *App) Root(ctx context.Context) error {
	printlnFn("Welcome to Rooznegar (type 'help' for commands)")

	if err := a.authenticate(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}
