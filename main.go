package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"talklens/cli"
	"talklens/client"
	"talklens/config"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.FromEnv()
	deps := &cli.Dependencies{
		Client: client.New(cfg),
		Config: cfg,
	}

	if err := cli.NewRootCmd(deps).Execute(); err != nil {
		os.Exit(1)
	}
}
