package utils

import (
	"github.com/urfave/cli"

	e "stealthmem/error"
)

// CheckArgs verifies the number of positional arguments of the running
// command.
func CheckArgs(context *cli.Context, expected int) error {
	cmdName := context.Command.Name
	if cmdName == "" {
		cmdName = context.App.Name
	}

	if context.NArg() != expected {
		return e.Newf(e.ParseFailed, "%s: %q requires exactly %d argument(s) (see '%s help')", context.App.Name, cmdName, expected, context.App.Name)
	}
	return nil
}
