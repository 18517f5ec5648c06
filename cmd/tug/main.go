// Package main provides the entry point for the tug CLI.
package main

import (
	"github.com/tugapp/tug-cli/internal/cli"
)

func main() {
	cli.Execute()
}
