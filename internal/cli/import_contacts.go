package cli

import (
	"context"
	"flag"
	"fmt"
)

// ImportContactsCommand copies Google contacts into a local address book.
type ImportContactsCommand struct {
	commonFlags
	BookURI string
	BookKey uint
	NewName string
	Count   bool
}

func NewImportContactsCommand() *ImportContactsCommand {
	return &ImportContactsCommand{}
}

func (cmd *ImportContactsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-contacts", flag.ContinueOnError)
	cmd.register(fs)
	fs.StringVar(&cmd.BookURI, "uri", "", "URI of the target address book (created when missing)")
	fs.UintVar(&cmd.BookKey, "key", 0, "Id of an existing address book (used when -uri is empty)")
	fs.StringVar(&cmd.NewName, "name", "", "Display name for a newly created address book")
	fs.BoolVar(&cmd.Count, "count", false, "Only print the number of remote contacts")

	usageHeader(fs, "import-contacts", "Import Google contacts as vCards into a local address book.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if !cmd.Count && cmd.BookURI == "" && cmd.BookKey == 0 {
		return fmt.Errorf("either -uri or -key is required")
	}
	return cmd.validate()
}

func (cmd *ImportContactsCommand) Run() error {
	app, err := cmd.openApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	if cmd.Count {
		n, err := app.ContactsImporter.ContactCount(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		fmt.Printf("%d contacts\n", n)
		return nil
	}

	result, err := app.ContactsImporter.ImportContacts(ctx, cmd.UserID, cmd.BookURI, cmd.BookKey, cmd.NewName)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d contacts\n", result.NbAdded)
	return nil
}
