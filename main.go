package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/wordhoard/internal/cli"
	"github.com/mrlokans/wordhoard/internal/config"
	"github.com/mrlokans/wordhoard/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	commandName := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch commandName {
	case "create-user":
		cmd = cli.NewCreateUserCommand()
	case "import-text":
		cmd = cli.NewImportTextCommand()
	case "library":
		cmd = cli.NewLibraryCommand()
	case "users":
		cmd = cli.NewUsersCommand()
	case "version":
		fmt.Printf("wordhoard %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", commandName)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  create-user   Create a reader or admin account\n")
	fmt.Fprintf(os.Stderr, "  import-text   Add a .txt, .docx or .html file to the community texts\n")
	fmt.Fprintf(os.Stderr, "  library       Print a user's saved meanings grouped by language\n")
	fmt.Fprintf(os.Stderr, "  users         List accounts, optionally promoting one to admin\n")
	fmt.Fprintf(os.Stderr, "  version       Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
