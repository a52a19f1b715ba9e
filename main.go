package main

import "github.com/pdxmph/tasks-tui/internal/cli"

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	cli.Execute(Version)
}
