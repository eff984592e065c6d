package cmd

import (
	"github.com/urfave/cli"

	"stealthmem/utils"
)

var selftest = cli.Command{
	Name:         "selftest",
	Usage:        "read and then overwrite a string in this process to check the driver",
	OnUsageError: usageError,
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 0); err != nil {
			return err
		}

		return exec(SelfTest, context)
	},
}
