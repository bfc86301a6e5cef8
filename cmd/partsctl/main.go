package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autoparts/internal/app"
	"autoparts/internal/config"
	"autoparts/internal/importer"
	"autoparts/internal/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "partsctl",
		Short:         "Operational tasks for the autoparts catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCommand(), newCreateSuperuserCommand(), newImportPartsCommand())
	return cmd
}

// open loads configuration and connects; connecting applies migrations.
func open(cmd *cobra.Command) (context.Context, *config.Config, *app.App, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	a, err := app.New(ctx, cfg, logger.New(cfg.LogLevel))
	if err != nil {
		return nil, nil, nil, err
	}
	return ctx, cfg, a, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateSuperuserCommand() *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create the bootstrap admin account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			email, username, password, err := superuserCredentials(cfg, email, username, password)
			if err != nil {
				return err
			}
			created, err := a.Identity.EnsureSuperuser(ctx, email, username, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&username, "username", "", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (at least 8 characters)")
	return cmd
}

// superuserCredentials prefers flags and falls back to the SUPERUSER_* settings.
func superuserCredentials(cfg *config.Config, email, username, password string) (string, string, string, error) {
	email = cmp.Or(email, cfg.SuperuserEmail)
	username = cmp.Or(username, cfg.SuperuserUsername)
	password = cmp.Or(password, cfg.SuperuserPassword)
	if email == "" || password == "" {
		return "", "", "", errors.New("--email and --password (or SUPERUSER_EMAIL/SUPERUSER_PASSWORD) are required")
	}
	return email, username, password, nil
}

func newImportPartsCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-parts",
		Short: "Bulk load parts from a CSV file",
		Long:  "The CSV needs a header with part_number,name,details,price,quantity. Nothing is written unless every row is valid.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			parts, err := importer.ParseParts(f)
			if err != nil {
				return err
			}
			ctx, _, a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Catalog.ImportParts(ctx, parts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d parts\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the CSV file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
