package main

import (
	"fmt"
	"os"

	"github.com/temirov/iz/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the iz command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(cli.ExitCodeFor(executionError))
}
