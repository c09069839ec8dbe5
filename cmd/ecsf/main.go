// Command ecsf runs and inspects the scene-transition orchestrator.
package main

import (
	"fmt"
	"os"

	"github.com/zhanong/ecsframework/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
