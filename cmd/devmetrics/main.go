package main

import "github.com/emiliopalmerini/devmetrics/internal/cli"

func main() {
	cli.Execute()
}
