package main

import "github.com/raidtrust/raidtrust/pkg/cli"

// Set via ldflags at build time.
var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

func main() {
	cli.SetVersion(version, commit, date)
	cli.Execute()
}
