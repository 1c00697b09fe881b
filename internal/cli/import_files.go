package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/entrypoint"
	"github.com/mrlokans/google-importer/internal/importers"
)

type batchedImporter interface {
	StartImport(ctx context.Context, userID string) (*importers.StartResult, error)
	Info(userID string) (*importers.ImportInfo, error)
	Cancel(userID string) error
}

// ImportFilesCommand runs a Photos or Drive import in the foreground. The
// batches go through the same task queue the server uses.
type ImportFilesCommand struct {
	commonFlags
	Domain       entities.ImportDomain
	PollInterval time.Duration
}

func NewImportFilesCommand(domain entities.ImportDomain) *ImportFilesCommand {
	return &ImportFilesCommand{Domain: domain}
}

func (cmd *ImportFilesCommand) name() string {
	return "import-" + string(cmd.Domain)
}

func (cmd *ImportFilesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet(cmd.name(), flag.ContinueOnError)
	cmd.register(fs)
	fs.DurationVar(&cmd.PollInterval, "poll", 2*time.Second, "How often progress is printed")

	usageHeader(fs, cmd.name(), fmt.Sprintf("Import Google %s files into the data directory.\n\n"+
		"Resumes an import that is already active for the user.", cmd.Domain))

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return cmd.validate()
}

func (cmd *ImportFilesCommand) importer(app *entrypoint.App) (batchedImporter, error) {
	switch cmd.Domain {
	case entities.ImportDomainPhotos:
		return app.Photos, nil
	case entities.ImportDomainDrive:
		return app.Drive, nil
	default:
		return nil, fmt.Errorf("unknown import domain %q", cmd.Domain)
	}
}

func (cmd *ImportFilesCommand) Run() error {
	app, err := cmd.openApp(true)
	if err != nil {
		return err
	}
	defer app.Close()

	imp, err := cmd.importer(app)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go app.Tasks.Start(ctx)
	defer app.Tasks.Stop(context.Background())

	started, err := imp.StartImport(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	fmt.Printf("Importing %s for %s into %s\n", cmd.Domain, cmd.UserID, started.TargetPath)

	ticker := time.NewTicker(cmd.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling import")
			return imp.Cancel(cmd.UserID)
		case <-ticker.C:
		}

		info, err := imp.Info(cmd.UserID)
		if err != nil {
			return err
		}
		if !info.Active {
			fmt.Println("Import finished")
			return nil
		}
		fmt.Printf("  %d items, %d bytes imported\n", info.ImportedCount, info.ImportedBytes)
	}
}
