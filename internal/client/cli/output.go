package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rooznegar/internal/common"
	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	liveColor = color.New(color.FgCyan)
	dimColor  = color.New(color.Faint)
	tagColor  = color.New(color.FgYellow)
)

// describe turns a service error into a short message for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNotConfirmed):
		return "Cancelled."
	case errors.Is(err, common.ErrNotFound):
		return "No such entry."
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Wrong password."
	case errors.Is(err, common.ErrService):
		return fmt.Sprintf("Remote service failed: %v", err)
	default:
		return err.Error()
	}
}

func (a *App) printError(err error) {
	if errors.Is(err, common.ErrNotConfirmed) {
		dimColor.Fprintln(a.out, describe(err))
		return
	}
	errColor.Fprintln(a.out, describe(err))
}
