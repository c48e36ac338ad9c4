package main

import (
	"os"

	"github.com/pinpoint-db/pinpoint/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
