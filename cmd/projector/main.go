// Command projector runs the journaled todo list and its trace, replay and
// scenario tooling.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/projector/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
