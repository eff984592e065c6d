package cmd

import (
	"github.com/urfave/cli"

	"stealthmem/utils"
)

var shell = cli.Command{
	Name:         "shell",
	Usage:        "open the device once and issue read and write commands interactively",
	OnUsageError: usageError,
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 0); err != nil {
			return err
		}

		return exec(Shell, context)
	},
}
