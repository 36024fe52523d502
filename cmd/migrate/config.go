package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

type options struct {
	command string
	name    string
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	command := fs.String("command", "up", "Migration command: up, down, status, create")
	name := fs.String("name", "", "Name for 'create' command")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	switch *command {
	case "up", "down", "status":
	case "create":
		if *name == "" {
			return options{}, errors.New("name is required for 'create' command")
		}
	default:
		return options{}, fmt.Errorf("unknown command: %s. Use: up, down, status, create", *command)
	}
	return options{command: *command, name: *name}, nil
}

func migrationsDir() string {
	if v := os.Getenv("LECTOPUS_MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
