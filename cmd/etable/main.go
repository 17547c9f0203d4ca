// Package main provides the etable CLI.
package main

import "github.com/mesh-intelligence/etable/internal/cli"

func main() {
	cli.Execute()
}
