// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"codeberg.org/envios/portal/internal/config"
	"codeberg.org/envios/portal/internal/database"
	"codeberg.org/envios/portal/internal/models"
	"codeberg.org/envios/portal/internal/repository"
	"codeberg.org/envios/portal/internal/server"
	"codeberg.org/envios/portal/internal/services/clientauth"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "portal",
		Usage:   "Client portal with magic link sign-in",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			migrateCommand(),
			clientCommand(),
			sweepCommand(),
		},
	}
}

// withRepo opens the configured database for a maintenance command.
func withRepo(cmd *cli.Command, fn func(db *sqlx.DB, repo *repository.Repository, cfg *config.Config) error) error {
	cfg := config.NewFromCLI(cmd)
	server.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	return fn(db, repository.New(db), cfg)
}

func out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					// Opening the database migrates it.
					return withRepo(cmd, func(db *sqlx.DB, _ *repository.Repository, _ *config.Config) error {
						return printVersion(cmd, db)
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the last migration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withRepo(cmd, func(db *sqlx.DB, _ *repository.Repository, _ *config.Config) error {
						if err := database.MigrateDown(db.DB); err != nil {
							return err
						}
						return printVersion(cmd, db)
					})
				},
			},
			{
				Name:  "reset",
				Usage: "Roll back all migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					return withRepo(cmd, func(db *sqlx.DB, _ *repository.Repository, _ *config.Config) error {
						if err := database.MigrateReset(db.DB); err != nil {
							return err
						}
						return printVersion(cmd, db)
					})
				},
			},
		},
	}
}

func printVersion(cmd *cli.Command, db *sqlx.DB) error {
	v, err := database.Version(db.DB)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out(cmd), "schema version %d\n", v)
	return err
}

func clientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Manage portal clients",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a client",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, Usage: "Email the client signs in with"},
					&cli.StringFlag{Name: "name", Required: true, Usage: "Display name"},
					&cli.StringFlag{Name: "sucursal", Usage: "Branch the client belongs to"},
				},
				Action: clientAdd,
			},
			{
				Name:      "archive",
				Usage:     "Archive a client and end its sessions",
				ArgsUsage: "<email>",
				Action:    clientArchive,
			},
			{
				Name:   "list",
				Usage:  "List all clients",
				Action: clientList,
			},
		},
	}
}

func clientAdd(ctx context.Context, cmd *cli.Command) error {
	email := strings.TrimSpace(cmd.String("email"))
	name := strings.TrimSpace(cmd.String("name"))
	sucursal := strings.TrimSpace(cmd.String("sucursal"))

	return withRepo(cmd, func(_ *sqlx.DB, repo *repository.Repository, _ *config.Config) error {
		var client *models.Client
		err := repo.InTx(ctx, func(tx *repository.Repository) error {
			var sucursalID *int64
			if sucursal != "" {
				s, err := tx.EnsureSucursal(ctx, sucursal)
				if err != nil {
					return err
				}
				sucursalID = &s.ID
			}
			var err error
			client, err = tx.CreateClient(ctx, email, name, sucursalID)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to add client: %w", err)
		}
		_, err = fmt.Fprintf(out(cmd), "added client %d <%s>\n", client.ID, client.Email)
		return err
	})
}

func clientArchive(ctx context.Context, cmd *cli.Command) error {
	email := strings.TrimSpace(cmd.Args().First())
	if email == "" {
		return errors.New("email argument is required")
	}

	return withRepo(cmd, func(_ *sqlx.DB, repo *repository.Repository, cfg *config.Config) error {
		client, err := repo.GetClientByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("no client with email %q", email)
		}
		if err != nil {
			return err
		}
		if err := repo.ArchiveClient(ctx, client.ID); err != nil {
			return err
		}

		a := clientauth.New(repo, clientauth.Config{TokenTTL: cfg.Auth.TokenTTL, SessionTTL: cfg.Auth.SessionTTL})
		n, err := a.RevokeAllSessions(ctx, client.ID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out(cmd), "archived client %d <%s>, ended %d sessions\n", client.ID, client.Email, n)
		return err
	})
}

func clientList(ctx context.Context, cmd *cli.Command) error {
	return withRepo(cmd, func(_ *sqlx.DB, repo *repository.Repository, _ *config.Config) error {
		clients, err := repo.ListClients(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tEMAIL\tNAME\tSUCURSAL\tSTATUS")
		for _, c := range clients {
			sucursal := "-"
			if c.SucursalName != nil {
				sucursal = *c.SucursalName
			}
			status := "active"
			if c.Archived {
				status = "archived"
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Email, c.Name, sucursal, status)
		}
		return w.Flush()
	})
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Delete expired sessions and used or expired magic link tokens",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRepo(cmd, func(_ *sqlx.DB, repo *repository.Repository, cfg *config.Config) error {
				a := clientauth.New(repo, clientauth.Config{TokenTTL: cfg.Auth.TokenTTL, SessionTTL: cfg.Auth.SessionTTL})
				res, err := a.Sweep(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out(cmd), "removed %d tokens and %d sessions\n", res.Tokens, res.Sessions)
				return err
			})
		},
	}
}
