package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/evcraddock/resa/internal/contacts"
)

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Manage the local listing-agent directory",
		Long: "The directory remembers which listing agent represents a listing, keyed by MLS number " +
			"or address, so tour documents can leave listing-agent details out.",
	}

	cmd.AddCommand(newContactsAddCmd(), newContactsListCmd(), newContactsRemoveCmd())
	return cmd
}

func newContactsAddCmd() *cobra.Command {
	var agent contacts.Agent
	var mlsID string

	cmd := &cobra.Command{
		Use:   "add [address]",
		Short: "Save the listing agent for a listing",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			address := strings.Join(args, " ")

			repo, database, err := newContactsRepo()
			if err != nil {
				return err
			}
			defer closeDB(database)

			e, err := repo.Add(agent, mlsID, address)
			if err != nil {
				return fmt.Errorf("saving listing agent: %w", err)
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s <%s> for %s.\n", dash(e.Agent.Name), e.Agent.Email, e.Key())
			return nil
		},
	}

	cmd.Flags().StringVar(&mlsID, "mls", "", "MLS number of the listing")
	cmd.Flags().StringVar(&agent.Name, "name", "", "listing agent name")
	cmd.Flags().StringVar(&agent.Email, "email", "", "listing agent email")
	cmd.Flags().StringVar(&agent.Phone, "phone", "", "listing agent phone")
	cmd.Flags().StringVar(&agent.Brokerage, "brokerage", "", "listing brokerage")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newContactsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved listing agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, database, err := newContactsRepo()
			if err != nil {
				return err
			}
			defer closeDB(database)

			entries, err := repo.List()
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return printContactTable(cmd.OutOrStdout(), entries)
		},
	}
}

func newContactsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <mls-number-or-address>",
		Short: "Forget the listing agent for a listing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.Join(args, " ")

			repo, database, err := newContactsRepo()
			if err != nil {
				return err
			}
			defer closeDB(database)

			if err := repo.Remove(key); err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"listing": key,
					"removed": true,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listing %s removed.\n", key)
			return nil
		},
	}
}
