package cmd

import (
	"github.com/urfave/cli"

	"stealthmem/utils"
)

var bench = cli.Command{
	Name:  "bench",
	Usage: "time repeated control calls over one open device",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count, n",
			Usage: "number of calls, defaults to bench-count from the config file",
		},
	},
	OnUsageError: usageError,
	Action: func(context *cli.Context) error {
		if err := utils.CheckArgs(context, 0); err != nil {
			return err
		}

		return exec(Bench, context)
	},
}
