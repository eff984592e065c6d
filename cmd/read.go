package cmd

import (
	"github.com/urfave/cli"

	"stealthmem/utils"
)

var read = cli.Command{
	Name:      "read",
	Usage:     "read the memory of a process through the control device",
	ArgsUsage: "<pid> <address> <size>",
	Description: `Reads <size> bytes at <address> in process <pid> and prints them.
   <address> is decimal, or hexadecimal with a 0x prefix.`,
	OnUsageError: usageError,
	Action:       readAction,
}

func readAction(context *cli.Context) error {
	if err := utils.CheckArgs(context, 3); err != nil {
		return err
	}

	return exec(Read, context)
}
