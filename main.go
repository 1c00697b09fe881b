package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/google-importer/internal/cli"
	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

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

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "google-auth":
		cmd = cli.NewGoogleAuthCommand()
	case "import-calendar":
		cmd = cli.NewImportCalendarCommand()
	case "import-contacts":
		cmd = cli.NewImportContactsCommand()
	case "import-photos":
		cmd = cli.NewImportFilesCommand(entities.ImportDomainPhotos)
	case "import-drive":
		cmd = cli.NewImportFilesCommand(entities.ImportDomainDrive)
	case "import-status":
		cmd = cli.NewImportStatusCommand()

	case "version":
		fmt.Printf("%s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve            Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  google-auth      Connect a Google account through a local OAuth flow\n")
	fmt.Fprintf(os.Stderr, "  import-calendar  List Google calendars or import one of them\n")
	fmt.Fprintf(os.Stderr, "  import-contacts  Import Google contacts into an address book\n")
	fmt.Fprintf(os.Stderr, "  import-photos    Import Google Photos into the data directory\n")
	fmt.Fprintf(os.Stderr, "  import-drive     Import Google Drive files into the data directory\n")
	fmt.Fprintf(os.Stderr, "  import-status    Show import progress and recent notifications\n")
	fmt.Fprintf(os.Stderr, "  version          Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
