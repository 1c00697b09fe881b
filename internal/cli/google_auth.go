package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mrlokans/google-importer/internal/oauth2"
	"github.com/mrlokans/google-importer/internal/settingsstore"
	"github.com/mrlokans/google-importer/internal/tokenstore"
)

// GoogleAuthCommand connects a Google account to a local user through a
// loopback OAuth flow.
type GoogleAuthCommand struct {
	commonFlags
	Port         int
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
}

// clientCredentialStore is implemented by settingsstore.SettingsStore.
type clientCredentialStore interface {
	GetClientCredentials() settingsstore.ClientCredentials
	SetClientCredentials(clientID, clientSecret string) error
}

func NewGoogleAuthCommand() *GoogleAuthCommand {
	return &GoogleAuthCommand{}
}

func (cmd *GoogleAuthCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("google-auth", flag.ContinueOnError)
	cmd.register(fs)
	fs.IntVar(&cmd.Port, "port", oauth2.DefaultCLIFlowConfig().Port, "Local port for OAuth callback server")
	fs.DurationVar(&cmd.Timeout, "timeout", 5*time.Minute, "How long to wait for the authorization")
	fs.StringVar(&cmd.ClientID, "client-id", "", "OAuth client id to store, overriding GOOGLE_CLIENT_ID")
	fs.StringVar(&cmd.ClientSecret, "client-secret", "", "OAuth client secret to store, overriding GOOGLE_CLIENT_SECRET")

	usageHeader(fs, "google-auth", "Authorize access to a Google account and store the credential.\n\n"+
		"Add http://localhost:<port>/callback to the OAuth client's redirect URIs first.")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Port <= 0 || cmd.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cmd.Port)
	}
	if (cmd.ClientID == "") != (cmd.ClientSecret == "") {
		return fmt.Errorf("-client-id and -client-secret must be given together")
	}
	return cmd.validate()
}

func (cmd *GoogleAuthCommand) Run() error {
	app, err := cmd.openApp(false)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := cmd.ensureClientCredentials(app.Settings); err != nil {
		return err
	}

	fmt.Println("Google OAuth Flow")
	fmt.Println("=================")
	fmt.Printf("\nStarting local server on port %d...\n", cmd.Port)

	flowCfg := oauth2.DefaultCLIFlowConfig()
	flowCfg.Port = cmd.Port
	flowCfg.Timeout = cmd.Timeout

	result, err := app.Flow.RunCLIFlow(context.Background(), cmd.UserID, flowCfg)
	if err != nil {
		return err
	}

	fmt.Println("\nGoogle account connected!")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("  User:    %s\n", result.UserID)
	if result.RemoteAccount != "" {
		fmt.Printf("  Account: %s\n", result.RemoteAccount)
	}
	if result.ExpiresAt != nil {
		fmt.Printf("  Access token expires in %.0f minutes\n", time.Until(*result.ExpiresAt).Minutes())
	}
	if result.Scope != "" {
		fmt.Printf("  Scope:   %s\n", result.Scope)
	}
	fmt.Printf("\nCredential stored in %s (key: %s)\n", app.Config.Database.Path,
		tokenstore.GetKeyFilePath(app.Config.Security.KeyFilePath))
	fmt.Fprintln(os.Stdout)
	return nil
}

// ensureClientCredentials stores the client given on the command line and
// checks that some client is configured.
func (cmd *GoogleAuthCommand) ensureClientCredentials(store clientCredentialStore) error {
	if cmd.ClientID != "" {
		if err := store.SetClientCredentials(cmd.ClientID, cmd.ClientSecret); err != nil {
			return fmt.Errorf("failed to store google client: %w", err)
		}
		fmt.Println("Google OAuth client stored in the database.")
	}
	if !store.GetClientCredentials().Configured() {
		return fmt.Errorf("google client is not configured: set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET or pass -client-id and -client-secret")
	}
	return nil
}
