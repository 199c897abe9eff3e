package main

import (
	"os"

	"confmerge/cmd"
)

// version can be set during build with -ldflags.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	os.Exit(cmd.Execute())
}
