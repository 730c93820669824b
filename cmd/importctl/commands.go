package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pageza/alchemorsel-import/backend/internal/database"
	"github.com/pageza/alchemorsel-import/backend/internal/logging"
	"github.com/pageza/alchemorsel-import/backend/internal/service"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "importctl",
		Usage: "Operator tooling for the recipe import gateway",
		Commands: []*cli.Command{
			tokenCmd(),
			normalizeCmd(),
			migrateCmd(),
		},
	}
}

func tokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint an identity token accepted by /image-proxy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "subject",
				Aliases:  []string{"s"},
				Usage:    "User id to put in the sub claim",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "secret",
				Usage:    "HMAC secret shared with the server",
				Sources:  cli.EnvVars("TOKEN_SECRET"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "issuer",
				Usage:   "Value of the iss claim",
				Sources: cli.EnvVars("TOKEN_ISSUER"),
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Value: time.Hour,
				Usage: "Token lifetime",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			auth := service.NewAuthService(cmd.String("secret"), cmd.String("issuer"))
			token, err := auth.GenerateToken(cmd.String("subject"), cmd.Duration("ttl"))
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.Root().Writer, token)
			return err
		},
	}
}

func normalizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Usage:     "Normalize a saved model completion and print the recipe record",
		ArgsUsage: "[file]",
		Description: `Reads a raw completion from file, or from stdin when no file is given,
and prints the record the gateway would return for it.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var in io.Reader = cmd.Root().Reader
			if path := cmd.Args().First(); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open completion: %w", err)
				}
				defer f.Close()
				in = f
			}

			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("failed to read completion: %w", err)
			}

			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(service.NormalizeRecipe(string(raw)))
		},
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the upload ledger schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Postgres connection URL",
				Sources:  cli.EnvVars("DATABASE_URL"),
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logging.New("info", false)
			db, err := database.Open(cmd.String("database-url"), log)
			if err != nil {
				return err
			}
			if err := database.RunMigrations(db); err != nil {
				return err
			}
			log.Info("Migrations completed successfully")
			return nil
		},
	}
}
