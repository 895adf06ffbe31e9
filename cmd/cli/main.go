package main

import "github.com/pagerank-analysis/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
