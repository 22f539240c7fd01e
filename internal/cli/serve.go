package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/evcraddock/resa/internal/logging"
	"github.com/evcraddock/resa/internal/web"
)

// serveConfig is the server configuration read from the environment.
type serveConfig struct {
	Web     web.Config
	DevMode bool
}

func newServeCmd() *cobra.Command {
	var port int
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: "Start an HTTP server exposing POST /api/generate and POST /api/itinerary.pdf. " +
			"Settings come from RESA_* environment variables, optionally loaded from a .env file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			cfg, err := serveConfigFromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Web.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on (overrides RESA_PORT)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	return cmd
}

// loadEnvFile loads path into the environment. A missing file is not an
// error; variables already set are not overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// serveConfigFromEnv reads RESA_PORT, RESA_DEV_MODE, RESA_CORS_ORIGINS and
// RESA_API_KEYS.
func serveConfigFromEnv() (serveConfig, error) {
	cfg := serveConfig{Web: web.Config{Port: 8080}}

	if v := os.Getenv("RESA_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return serveConfig{}, fmt.Errorf("invalid RESA_PORT %q", v)
		}
		cfg.Web.Port = port
	}

	if v := os.Getenv("RESA_DEV_MODE"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return serveConfig{}, fmt.Errorf("invalid RESA_DEV_MODE %q: %w", v, err)
		}
		cfg.DevMode = dev
	}

	cfg.Web.CORSOrigins = splitList(os.Getenv("RESA_CORS_ORIGINS"))
	cfg.Web.APIKeys = splitList(os.Getenv("RESA_API_KEYS"))

	return cfg, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func runServe(ctx context.Context, cfg serveConfig) error {
	logging.Setup(os.Stderr, cfg.DevMode || flagVerbose)

	repo, database, err := newContactsRepo()
	if err != nil {
		return fmt.Errorf("opening listing-agent directory: %w", err)
	}
	defer closeDB(database)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("server configured",
		"port", cfg.Web.Port,
		"dev_mode", cfg.DevMode,
		"cors_origins", cfg.Web.CORSOrigins,
		"api_keys", len(cfg.Web.APIKeys),
	)

	return web.NewServer(cfg.Web, repo).ListenAndServe(ctx)
}
