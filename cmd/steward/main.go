// Package main is the entry point for the steward CLI binary.
package main

import (
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/akanksha86/governance-metadata-propagation/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
