package main

import (
	"github.com/joho/godotenv"

	"github.com/mhofmann/dpwt-tracker/internal/cli"
)

func main() {
	// Local runs keep the webhook and tokens in a .env file; scheduled
	// runners inject them as real environment variables.
	_ = godotenv.Load()

	cli.Execute()
}
