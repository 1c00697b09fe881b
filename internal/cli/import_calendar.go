package cli

import (
	"context"
	"flag"
	"fmt"
)

// ImportCalendarCommand lists the user's Google calendars, or imports one
// of them when -calendar is given.
type ImportCalendarCommand struct {
	commonFlags
	CalendarID string
	Name       string
	Color      string
}

func NewImportCalendarCommand() *ImportCalendarCommand {
	return &ImportCalendarCommand{}
}

func (cmd *ImportCalendarCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-calendar", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.CalendarID, "calendar", "", "Google calendar id to import (lists calendars when empty)")
	fs.StringVar(&cmd.Name, "name", "", "Display name of the local calendar (defaults to the remote summary)")
	fs.StringVar(&cmd.Color, "color", "", "Color of the local calendar, e.g. #16a765")

	usageHeader(fs, "import-calendar", "Import the events of a Google calendar into a local calendar.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.validate()
}

func (cmd *ImportCalendarCommand) Run() error {
	app, err := cmd.openApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	calendars, err := app.CalendarImporter.CalendarList(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("failed to list calendars: %w", err)
	}

	if cmd.CalendarID == "" {
		fmt.Printf("%d calendars for %s:\n\n", len(calendars), cmd.UserID)
		for _, c := range calendars {
			marker := " "
			if c.Primary {
				marker = "*"
			}
			fmt.Printf("%s %-50s %s\n", marker, c.Id, c.Summary)
		}
		fmt.Println("\nRe-run with -calendar <id> to import one of them.")
		return nil
	}

	name, color := cmd.Name, cmd.Color
	for _, c := range calendars {
		if c.Id != cmd.CalendarID {
			continue
		}
		if name == "" {
			name = c.Summary
		}
		if color == "" {
			color = c.BackgroundColor
		}
	}
	if name == "" {
		return fmt.Errorf("calendar %q not found, pass -name to import it anyway", cmd.CalendarID)
	}

	result, err := app.CalendarImporter.ImportCalendar(ctx, cmd.UserID, cmd.CalendarID, name, color)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d events into %q\n", result.NbAdded, result.CalName)
	return nil
}
