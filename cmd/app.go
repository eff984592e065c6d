package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli"

	e "stealthmem/error"
	"stealthmem/pkg/config"
	"stealthmem/pkg/logflags"
)

const (
	usage = `stealthmem reads and writes the memory of other processes through
             the stealthmem control device`

	settingsKey = "settings"
)

// Exit statuses of a run.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitOpen     = 3
	exitTransfer = 4
)

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "device",
		Usage: "path of the control device",
		Value: config.DefaultDevice,
	},
	cli.StringFlag{
		Name:  "config",
		Usage: "config file (default ~/.stealthmem/config.yml)",
	},
	cli.BoolFlag{
		Name:  "log",
		Usage: "enable debug logging",
	},
	cli.StringFlag{
		Name:  "log-output",
		Usage: "comma separated list of layers that should produce debug output: device, cli",
	},
	cli.StringFlag{
		Name:  "log-dest",
		Usage: "write logs to the specified file instead of stderr",
		Value: logflags.DefaultLogDesc,
	},
	cli.BoolFlag{
		Name:  "no-color",
		Usage: "never highlight report headers",
	},
}

// settings is the per-run state resolved from flags and the config file.
type settings struct {
	conf   *config.Config
	color  bool
	stdout io.Writer
	stderr io.Writer
}

// NewApp returns the stealthmem command line application. Without a
// subcommand it performs a read of <pid> <address> <size>.
func NewApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "stealthmem"
	app.Usage = usage
	app.ArgsUsage = "<pid> <address> <size>"
	app.HideVersion = true
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Metadata = map[string]interface{}{}
	app.Flags = globalFlags
	app.Before = setup
	app.After = func(*cli.Context) error {
		return logflags.Close()
	}
	app.OnUsageError = usageError
	app.Action = readAction
	app.Commands = []cli.Command{
		read,
		write,
		bench,
		selftest,
		shell,
	}

	return app
}

// Execute runs the application with args, prints a single diagnostic line
// to stderr on failure and returns the process exit status.
func Execute(args []string, stdout, stderr io.Writer) int {
	app := NewApp(stdout, stderr)

	if err := app.Run(args); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitCode(err)
	}

	return exitOK
}

// ExitCode maps an error to the exit status reported for it.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, e.ParseFailed):
		return exitUsage
	case errors.Is(err, e.OpenFailed):
		return exitOpen
	case errors.Is(err, e.TransferFailed):
		return exitTransfer
	default:
		return exitFailure
	}
}

func setup(ctx *cli.Context) error {
	if err := logflags.Setup(ctx.Bool("log"), ctx.String("log-output"), ctx.String("log-dest")); err != nil {
		return e.Newf(e.ParseFailed, "%v", err)
	}

	conf, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return err
	}
	if ctx.IsSet("device") {
		conf.Device = ctx.String("device")
	}
	if ctx.Bool("no-color") {
		conf.NoColor = true
	}

	s := &settings{
		conf:   conf,
		color:  !conf.NoColor && isTerminal(ctx.App.Writer),
		stdout: ctx.App.Writer,
		stderr: ctx.App.ErrWriter,
	}
	ctx.App.Metadata[settingsKey] = s

	logflags.CLILogger().Debugf("device %s, config %+v", conf.Device, *conf)
	return nil
}

func settingsFrom(ctx *cli.Context) *settings {
	if s, ok := ctx.App.Metadata[settingsKey].(*settings); ok {
		return s
	}
	return &settings{
		conf:   config.Default(),
		stdout: ctx.App.Writer,
		stderr: ctx.App.ErrWriter,
	}
}

func usageError(ctx *cli.Context, err error, isSubcommand bool) error {
	return e.Newf(e.ParseFailed, "%s: %v", ctx.App.Name, err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
