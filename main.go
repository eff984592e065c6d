package main

import (
	"os"

	"github.com/mattn/go-colorable"

	"stealthmem/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args, colorable.NewColorableStdout(), colorable.NewColorableStderr()))
}
