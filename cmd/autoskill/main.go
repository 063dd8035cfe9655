package main

import (
	"github.com/jguan/autoskill/pkg/cli"
	"github.com/joho/godotenv"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Optional .env overlay for AUTOSKILL_* overrides; absence is fine.
	_ = godotenv.Load()

	cli.SetVersion(version, buildDate, gitCommit)
	cli.Execute()
}
