// Package cli defines the cobra command tree for resa.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/resa/internal/client"
	"github.com/evcraddock/resa/internal/contacts"
	"github.com/evcraddock/resa/internal/db"
	"github.com/evcraddock/resa/internal/logging"
)

var (
	flagFormat  string
	flagDB      string
	flagServer  string
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resa",
		Short: "Plan showing tours and draft their emails",
		Long: "Turn a list of homes into a timed showing itinerary, appointment requests " +
			"for occupied homes, an updated-itinerary notice and a client tour summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagFormat != "text" && flagFormat != "json" {
				return fmt.Errorf("invalid --format %q (want text or json)", flagFormat)
			}
			logging.Setup(cmd.ErrOrStderr(), flagVerbose)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "listing-agent directory path (default: ~/.config/resa/contacts.db)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "generate on a running resa server instead of locally")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newGenerateCmd(),
		newServeCmd(),
		newContactsCmd(),
		newAgentCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the SQLite database using the --db flag, RESA_DB, the
// config file or the default path, in that order.
func openDB() (*sql.DB, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	slog.Debug("opening listing-agent directory", "path", path)
	return db.Open(path)
}

// newContactsRepo opens the database and returns a contacts repository.
func newContactsRepo() (*contacts.Repository, *sql.DB, error) {
	database, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return contacts.NewRepository(database), database, nil
}

// newAPIClient creates an HTTP client for a remote resa server, or nil
// when generation runs locally.
func newAPIClient() *client.Client {
	url := getServerURL()
	if url == "" {
		return nil
	}
	return client.New(url, getAPIKey())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
