// Package main provides the dwp CLI for consolidating PitchBook exports.
package main

import "github.com/ManeeGit/DataWithoutPeople/internal/cli"

func main() {
	cli.Execute()
}
