package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/oleg578/linecsv/internal/cli"
)

func main() {
	// Load .env file if it exists; variables already set in the environment win.
	_ = godotenv.Load()

	if err := cli.NewRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linecsv:", err)
		os.Exit(1)
	}
}
