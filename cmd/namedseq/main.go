// Package main provides the namedseq CLI.
package main

import "github.com/mesh-intelligence/namedseq/internal/cli"

func main() {
	cli.Execute()
}
