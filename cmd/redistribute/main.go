package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/luxfi/redistribute/cmd/redistribute/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := commands.NewRootCommand(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date))

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
