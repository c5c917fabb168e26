package main

import (
	"fmt"
	"os"

	"permgate/internal/cli"
	"permgate/internal/gate"
	"permgate/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command tree and maps the result to an exit code:
// 0 pass/success, 1 detected drift, 2 infrastructure or input failure.
// Separated from main() to enable testing.
func run(args []string) int {
	root := cli.NewRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	logger.Sync()

	code := gate.ExitCode(err)
	if code == gate.ExitFailure {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return code
}
