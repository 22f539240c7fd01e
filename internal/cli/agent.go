package cli

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/evcraddock/resa/internal/tour"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage the default agent profile",
		Long:  "The default agent signs every draft when a tour document leaves the agent out.",
	}

	cmd.AddCommand(newAgentSetCmd(), newAgentShowCmd())
	return cmd
}

func newAgentSetCmd() *cobra.Command {
	var agent tour.AgentInfo
	var serverURL string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save the default agent profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Only flags given on the command line replace saved values.
			next := cfg.Agent
			if cmd.Flags().Changed("name") {
				next.Name = agent.Name
			}
			if cmd.Flags().Changed("email") {
				next.Email = agent.Email
			}
			if cmd.Flags().Changed("phone") {
				next.Phone = agent.Phone
			}
			if err := validator.New().Struct(next); err != nil {
				return fmt.Errorf("invalid agent profile: %w", err)
			}
			cfg.Agent = next

			if cmd.Flags().Changed("server-url") {
				cfg.ServerURL = serverURL
			}

			if err := saveConfig(cfg); err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Agent profile saved.")
			return printAgent(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&agent.Name, "name", "", "agent name")
	cmd.Flags().StringVar(&agent.Email, "email", "", "agent email")
	cmd.Flags().StringVar(&agent.Phone, "phone", "", "agent phone")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "default resa server for remote generation")

	return cmd
}

func newAgentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the default agent profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			return printAgent(cmd, cfg)
		},
	}
}

func printAgent(cmd *cobra.Command, cfg CLIConfig) error {
	w := cmd.OutOrStdout()
	if cfg.Agent == (tour.AgentInfo{}) {
		_, err := fmt.Fprintln(w, "No agent profile saved. Run: resa agent set --name ... --email ...")
		return err
	}
	_, err := fmt.Fprintf(w, "  Name:    %s\n  Email:   %s\n  Phone:   %s\n  Server:  %s\n",
		cfg.Agent.Name, cfg.Agent.Email, dash(cfg.Agent.Phone), dash(cfg.ServerURL))
	return err
}
