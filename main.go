package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/database"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	envFile string
	config  map[string]string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Portfolio site backend",
		Long:          "Serves the portfolio site and manages its database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.config = config.Load(opts.envFile)
			setupLogging(opts.config)

			if prefix := config.GetString(opts.config, "SSM_PARAMETER_PATH", ""); prefix != "" {
				client, err := config.NewSSMClient(cmd.Context())
				if err != nil {
					return err
				}
				if err := config.LoadSSM(cmd.Context(), client, prefix, opts.config); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newCreateAdminCommand(opts))
	cmd.AddCommand(newRecountLikesCommand(opts))
	cmd.AddCommand(newSchemaReportCommand(opts))

	return cmd
}

// setupLogging configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT.
func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(config.GetString(c, "LOG_FORMAT", "console"), "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// openDatabase connects using DB_TYPE and related settings.
func openDatabase(c map[string]string) (database.Database, error) {
	dbOpts, err := database.OptionsFromConfig(c)
	if err != nil {
		return database.Database{}, err
	}
	log.Info().Str("dbType", dbOpts.Type).Int("replicas", len(dbOpts.Replicas)).Msg("Connecting to database...")

	db, err := database.Open(dbOpts)
	if err != nil {
		return database.Database{}, err
	}

	currentDB := database.New(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := currentDB.Ping(ctx); err != nil {
		currentDB.Close()
		return database.Database{}, fmt.Errorf("error testing database connection: %w", err)
	}
	return currentDB, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
