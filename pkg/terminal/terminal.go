package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-delve/liner"

	"stealthmem/pkg/config"
	"stealthmem/pkg/stealthmem"
)

const (
	prompt = "(stealthmem) "
)

// Term is an interactive shell issuing memory requests over one open
// channel.
type Term struct {
	ch          stealthmem.Channel
	conf        *config.Config
	prompt      string
	line        *liner.State
	cmds        *Commands
	historyFile *os.File
	stdout      io.Writer
	stderr      io.Writer
	color       bool
}

// New returns a shell bound to ch. The caller keeps ownership of ch.
func New(ch stealthmem.Channel, conf *config.Config, stdout, stderr io.Writer, color bool) *Term {
	return &Term{
		ch:     ch,
		conf:   conf,
		prompt: prompt,
		cmds:   NewCommands(),
		stdout: stdout,
		stderr: stderr,
		color:  color,
	}
}

func (t *Term) sigintGuard(ch <-chan os.Signal) {
	for range ch {
		fmt.Fprintf(t.stdout, "received SIGINT, type 'exit' to leave the shell\n")
	}
}

// Run reads and executes commands until exit or end of input.
func (t *Term) Run() error {
	t.line = liner.NewLiner()
	defer t.Close()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	defer func() {
		signal.Stop(ch)
		close(ch)
	}()
	go t.sigintGuard(ch)

	t.line.SetCompleter(func(line string) []string {
		return t.cmds.Complete(line)
	})

	if err := t.openHistory(); err != nil {
		fmt.Fprintf(t.stderr, "Unable to open history file: %v. History will not be saved for this session.\n", err)
	}

	fmt.Fprintln(t.stdout, "Type 'help' for list of commands.")

	for {
		cmd, err := t.promptForInput()
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(t.stdout, "exit")
				return t.handleExit()
			}
			return errors.New("prompt for input failed")
		}

		if strings.TrimSpace(cmd) == "" {
			continue
		}

		if err = t.cmds.Call(cmd, t); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}

			fmt.Fprintf(t.stderr, "Command failed: %s\n", err)
		}
	}
}

func (t *Term) openHistory() error {
	fullHistory, err := t.conf.HistoryPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullHistory), 0755); err != nil {
		return fmt.Errorf("create parent dir failed: %v", err)
	}

	t.historyFile, err = os.OpenFile(fullHistory, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return err
	}

	if _, err = t.line.ReadHistory(t.historyFile); err != nil {
		fmt.Fprintf(t.stderr, "Unable to read history file %s: %v\n", fullHistory, err)
	}
	return nil
}

// Close restores the terminal state.
func (t *Term) Close() {
	if t.line != nil {
		t.line.Close()
	}
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}

	return l, nil
}

func (t *Term) handleExit() error {
	if t.historyFile == nil {
		return nil
	}

	if _, err := t.historyFile.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := t.historyFile.Truncate(0); err != nil {
		return err
	}
	if _, err := t.line.WriteHistory(t.historyFile); err != nil {
		fmt.Fprintln(t.stderr, "readline history error:", err)
		return err
	}
	if err := t.historyFile.Close(); err != nil {
		fmt.Fprintf(t.stderr, "error closing history file: %s\n", err)
		return err
	}
	t.historyFile = nil

	return nil
}
