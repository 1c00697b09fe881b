package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/entrypoint"
)

// commonFlags are shared by every command that touches the database.
type commonFlags struct {
	UserID       string
	DatabasePath string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.UserID, "user", config.DefaultUserID, "Local user the import runs for")
	fs.StringVar(&c.DatabasePath, "db", "", "Path to the database (defaults to DATABASE_PATH)")
}

func (c *commonFlags) validate() error {
	if c.UserID == "" {
		return fmt.Errorf("user cannot be empty")
	}
	return nil
}

// openApp loads the configuration from the environment and wires the
// application against it.
func (c *commonFlags) openApp(withTasks bool) (*entrypoint.App, error) {
	cfg := config.NewConfig()
	if c.DatabasePath != "" {
		cfg.Database.Path = c.DatabasePath
	}
	cfg.Tasks.Enabled = withTasks
	return entrypoint.NewApp(cfg)
}

func usageHeader(fs *flag.FlagSet, name, description string) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s %s [options]\n\n", os.Args[0], name)
		fmt.Fprintf(os.Stderr, "%s\n\n", description)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
}
