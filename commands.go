package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	api "github.com/rpupo63/portfolio-backend/api"
	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDB, err := openDatabase(opts.config)
			if err != nil {
				return err
			}
			defer currentDB.Close()

			if config.GetBool(opts.config, "AUTO_MIGRATE", false) {
				log.Info().Msg("Running migrations...")
				if err := models.Migrate(currentDB.GetDB()); err != nil {
					return err
				}
			}

			server, err := api.NewServer(cmd.Context(), currentDB, opts.config)
			if err != nil {
				return fmt.Errorf("error initializing server: %w", err)
			}

			errChannel := make(chan error, 2)
			go server.Start(errChannel)

			// Listen for interrupt signals to gracefully shutdown the server
			go listenToInterrupt(errChannel)

			fatalErr := <-errChannel
			log.Info().Msgf("Closing server: %v", fatalErr)

			server.ShutdownGracefully(30 * time.Second)
			return nil
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDB, err := openDatabase(opts.config)
			if err != nil {
				return err
			}
			defer currentDB.Close()

			if err := models.Migrate(currentDB.GetDB()); err != nil {
				return err
			}
			log.Info().Int("models", len(models.All())).Msg("Schema is up to date")
			return nil
		},
	}
}

func newCreateAdminCommand(opts *rootOptions) *cobra.Command {
	var form services.RegisterForm

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the site administrator, or promote an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDB, err := openDatabase(opts.config)
			if err != nil {
				return err
			}
			defer currentDB.Close()

			if form.Password == "" {
				form.Password = os.Getenv("ADMIN_PASSWORD")
			}
			form.ConfirmPassword = form.Password

			auth := services.NewAuthService(currentDB, &services.ConsoleMailer{Out: cmd.OutOrStdout()})
			user, err := auth.CreateAdmin(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s <%s> is ready\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&form.Email, "email", "", "login email")
	cmd.Flags().StringVar(&form.Password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newRecountLikesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recount-likes",
		Short: "Rebuild every project's like counter from the likes table",
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDB, err := openDatabase(opts.config)
			if err != nil {
				return err
			}
			defer currentDB.Close()

			fixed, err := services.NewEngagementService(currentDB).RecountLikes(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Repaired %d project(s)\n", fixed)
			return nil
		},
	}
}

func newSchemaReportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema-report",
		Short: "List database columns that no model field maps to",
		RunE: func(cmd *cobra.Command, args []string) error {
			currentDB, err := openDatabase(opts.config)
			if err != nil {
				return err
			}
			defer currentDB.Close()

			mismatches, err := models.ColumnMismatchReport(currentDB.GetDB(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if mismatches > 0 {
				return fmt.Errorf("found %d unmapped column(s)", mismatches)
			}
			return nil
		},
	}
}
