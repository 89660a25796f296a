package main

import (
	"fmt"
	"os"

	"usuarios-service/config"
	"usuarios-service/database"
	"usuarios-service/server"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		fmt.Println(err)
		os.Exit(1)
	}

	switch cfg.Command {
	case "start":
		server.StartServer(cfg)
	case "create-migration":
		if err := database.CreateMigration(cfg.MigrationName, cfg.MigrationDir); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command %q\n", cfg.Command)
		os.Exit(1)
	}
}
