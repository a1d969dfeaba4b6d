package main

import (
	"github.com/joho/godotenv"

	"grundctl/pkg/cli"
)

func main() {
	// optional .env for local overrides like GRUNDCTL_DB
	_ = godotenv.Load()

	cli.Execute()
}
