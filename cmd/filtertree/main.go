// Command filtertree parses, validates and translates filter queries.
package main

import (
	"fmt"
	"os"

	"github.com/hugr-lab/filtertree/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
