package terminal

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/derekparker/trie"
	"github.com/google/shlex"

	"stealthmem/pkg/resolve"
	"stealthmem/pkg/stealthmem"
	"stealthmem/utils"
)

var (
	argumentsErr = "invalid number of arguments, expected %d, actual %d"
)

type cmdFn func(term *Term, args []string) error

type command struct {
	aliases []string
	fn      cmdFn
	help    string
}

// Commands is the command table of the shell.
type Commands struct {
	cmds   []command
	lookup *trie.Trie
}

// NewCommands builds the command table and its alias index.
func NewCommands() *Commands {
	c := &Commands{}

	c.cmds = []command{
		{
			aliases: []string{"help", "h"},
			fn:      c.help,
			help: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{
			aliases: []string{"read", "r"},
			fn:      read,
			help: `Reads remote memory through the device.

	read <pid> <address> <size>

The address is decimal, or hexadecimal with a 0x prefix.`,
		},
		{
			aliases: []string{"write", "w"},
			fn:      write,
			help: `Writes hex-encoded bytes into remote memory through the device.

	write <pid> <address> <hexbytes>`,
		},
		{
			aliases: []string{"exit", "quit", "q"},
			fn:      exit,
			help:    "Exits the shell and closes the device.",
		},
	}

	c.lookup = trie.New()
	for i, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			c.lookup.Add(alias, i)
		}
	}

	return c
}

// Find will look up the command function for the given command input.
// If it cannot find the command it will default to noCmdAvailable().
func (c *Commands) Find(cmdstr string) command {
	if cmdstr == "" {
		return command{aliases: []string{"nullcmd"}, fn: nullCommand}
	}

	if node, found := c.lookup.Find(cmdstr); found {
		return c.cmds[node.Meta().(int)]
	}

	return command{aliases: []string{"nocmd"}, fn: noCmdAvailable}
}

// Complete returns the command names starting with prefix.
func (c *Commands) Complete(prefix string) []string {
	return c.lookup.PrefixSearch(prefix)
}

// Call runs one input line.
func (c *Commands) Call(cmdStr string, t *Term) error {
	cmd, argStr, _ := strings.Cut(strings.TrimSpace(cmdStr), " ")

	args, err := shlex.Split(argStr)
	if err != nil {
		return err
	}

	return c.Find(cmd).fn(t, args)
}

func (c *Commands) help(t *Term, args []string) error {
	if len(args) > 0 {
		cmd := c.Find(args[0])
		if cmd.help == "" {
			return fmt.Errorf("unknown command %q", args[0])
		}
		fmt.Fprintln(t.stdout, cmd.help)
		return nil
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.help
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(t.stdout)
	return nil
}

func read(t *Term, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf(argumentsErr, 3, len(args))
	}

	a, err := resolve.Parse(args[0], args[1], args[2])
	if err != nil {
		return err
	}

	res, err := stealthmem.ReadMemory(t.ch, stealthmem.Target{Pid: a.Pid, Address: a.Address}, a.Size)
	if err != nil {
		return err
	}

	utils.PrintResult(t.stdout, res, t.color)
	return nil
}

func write(t *Term, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf(argumentsErr, 3, len(args))
	}

	pid, err := resolve.Pid(args[0])
	if err != nil {
		return err
	}
	addr, err := resolve.Address(args[1])
	if err != nil {
		return err
	}
	data, err := resolve.Payload(args[2])
	if err != nil {
		return err
	}

	res, err := stealthmem.WriteMemory(t.ch, stealthmem.Target{Pid: pid, Address: addr}, data)
	if err != nil {
		return err
	}

	utils.PrintResult(t.stdout, res, t.color)
	return nil
}

type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

func exit(t *Term, args []string) error {
	return ExitRequestError{}
}

var errNoCmd = errors.New("command not available")

func noCmdAvailable(t *Term, args []string) error {
	return errNoCmd
}

func nullCommand(t *Term, args []string) error {
	return nil
}
