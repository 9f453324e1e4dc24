// Command dcmdump is the boundary CLI for the core decoder: it opens a
// Part 10 file, reads File Meta Information and the main Data Set, and
// prints both. It never touches pixel bytes unless -f/--frame is given.
package main

import (
	"fmt"
	"os"

	"github.com/hackermd/dcmslide/cmd/dcmdump/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Run(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
