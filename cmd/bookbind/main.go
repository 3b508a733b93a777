package main

import (
	"os"

	_ "go.uber.org/automaxprocs" // container-aware GOMAXPROCS

	"github.com/drennalls/bookbind/internal/cli"
)

// Version information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
