// Command cableclub runs the cable club matchmaking server and its
// operator tools.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cableclub/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
