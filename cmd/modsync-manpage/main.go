package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/modsync/cmd/modsync"
	"github.com/arthur-debert/modsync/internal/version"
)

// Writes the modsync(1) man page to stdout, or one page per command into
// the directory given as the only argument.
func main() {
	rootCmd := modsync.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "MODSYNC",
		Section: "1",
		Source:  "modsync " + version.Version,
		Manual:  "modsync manual",
	}

	var err error
	if len(os.Args) > 1 {
		err = doc.GenManTree(rootCmd, header, os.Args[1])
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
