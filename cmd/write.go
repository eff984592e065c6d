package cmd

import (
	"github.com/urfave/cli"

	"stealthmem/utils"
)

var write = cli.Command{
	Name:      "write",
	Usage:     "writing process memory is unsafe, the target is not stopped while its memory changes",
	ArgsUsage: "<pid> <address> <hexbytes>",
	Description: `Writes the hex-encoded bytes (e.g. deadbeef) at <address> in process <pid>.
   <address> is decimal, or hexadecimal with a 0x prefix.`,
	OnUsageError: usageError,
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 3); err != nil {
			return err
		}

		return exec(Write, context)
	},
}
