package cli

import (
	"flag"
	"fmt"
	"time"
)

// ImportStatusCommand prints the state of the user's batched imports and
// the most recent notifications.
type ImportStatusCommand struct {
	commonFlags
	Limit int
}

func NewImportStatusCommand() *ImportStatusCommand {
	return &ImportStatusCommand{}
}

func (cmd *ImportStatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-status", flag.ContinueOnError)
	cmd.register(fs)
	fs.IntVar(&cmd.Limit, "limit", 5, "Number of notifications to show")

	usageHeader(fs, "import-status", "Show Photos and Drive import progress and recent notifications.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.validate()
}

func (cmd *ImportStatusCommand) Run() error {
	app, err := cmd.openApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	connected, err := app.Credentials.IsConnected(cmd.UserID)
	if err != nil {
		return err
	}
	fmt.Printf("User %s, Google account connected: %t\n\n", cmd.UserID, connected)

	photos, err := app.Photos.Info(cmd.UserID)
	if err != nil {
		return err
	}
	drive, err := app.Drive.Info(cmd.UserID)
	if err != nil {
		return err
	}

	for _, row := range []struct {
		label  string
		active bool
		count  int64
		bytes  int64
		path   string
		last   *time.Time
	}{
		{"Photos", photos.Active, photos.ImportedCount, photos.ImportedBytes, photos.TargetPath, photos.LastProgressAt},
		{"Drive", drive.Active, drive.ImportedCount, drive.ImportedBytes, drive.TargetPath, drive.LastProgressAt},
	} {
		if !row.active {
			fmt.Printf("%-7s idle\n", row.label)
			continue
		}
		fmt.Printf("%-7s active into %s: %d items, %d bytes", row.label, row.path, row.count, row.bytes)
		if row.last != nil {
			fmt.Printf(", last progress %s", row.last.Format(time.RFC3339))
		}
		fmt.Println()
	}

	list, err := app.Notifications.List(cmd.UserID, cmd.Limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return nil
	}
	fmt.Println("\nNotifications:")
	for _, n := range list {
		fmt.Printf("  %s %s %s\n", n.CreatedAt.Format(time.RFC3339), n.Type, n.Params)
	}
	return nil
}
