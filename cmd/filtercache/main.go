// Package main provides filtercache, a local disk cache for SVO filter
// index and transmission data.
package main

import (
	"os"

	"filtercache/internal/cli"
)

func main() {
	exitCode := cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, os.Environ())

	os.Exit(exitCode)
}
