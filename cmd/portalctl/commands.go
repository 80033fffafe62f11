package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	appMigrations "github.com/selvaalegre/portal/internal/app/migrations"
	"github.com/selvaalegre/portal/internal/app/models"
	"github.com/selvaalegre/portal/internal/app/repositories"
	"github.com/selvaalegre/portal/internal/bootstrap"
	"github.com/selvaalegre/portal/internal/config"
	"github.com/selvaalegre/portal/internal/db"
	"github.com/selvaalegre/portal/internal/pkg/logger"
	"github.com/selvaalegre/portal/internal/seed"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "portalctl",
		Usage: "administer the Selva Alegre portal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML configuration",
				EnvVars: []string{"PORTAL_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			createSuperuserCommand(),
			listUsersCommand(),
			neighborsCommand(),
			cleanupTokensCommand(),
		},
	}
}

// withDeps opens the database and builds the service graph for one command.
func withDeps(c *cli.Context, fn func(cfg *config.Config, deps *bootstrap.Dependencies) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return err
	}
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	deps, err := bootstrap.BuildDependencies(cfg, database.Pool, lgr)
	if err != nil {
		return err
	}
	return fn(cfg, deps)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "read migrations from this directory instead of the built-in set"},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
			if err != nil {
				return err
			}
			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := runMigrations(c.Context, database.Pool, cfg, c.String("dir"))
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(c.App.Writer, "schema is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintln(c.App.Writer, "applied", name)
			}
			return nil
		},
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, cfg *config.Config, dir string) ([]string, error) {
	migrator := appMigrations.NewMigrator(pool)
	if dir != "" {
		return migrator.MigrateFromDirectory(ctx, dir)
	}
	source, _ := bootstrap.MigrationSource(cfg)
	return migrator.Migrate(ctx, source)
}

func createSuperuserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-superuser",
		Usage: "create an administrator account with the superuser flag",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SUPERUSER_PASSWORD"}},
			&cli.StringFlag{Name: "unit", Value: "Administración"},
			&cli.BoolFlag{Name: "if-missing", Usage: "do nothing when a superuser already exists"},
		},
		Action: func(c *cli.Context) error {
			return withDeps(c, func(_ *config.Config, deps *bootstrap.Dependencies) error {
				account := seed.Superuser{
					Username: c.String("username"),
					Email:    c.String("email"),
					Password: c.String("password"),
					Unit:     c.String("unit"),
				}

				var user *models.User
				var err error
				if c.Bool("if-missing") {
					user, err = seed.EnsureSuperuser(c.Context, deps.Repos.UserRepository, deps.UserService, account, deps.Logger)
				} else {
					user, err = deps.UserService.CreateSuperuser(c.Context, account.Username, account.Email, account.Password, account.Unit)
				}
				if err != nil {
					return err
				}
				if user == nil {
					fmt.Fprintln(c.App.Writer, "superuser already exists")
					return nil
				}
				fmt.Fprintf(c.App.Writer, "created superuser %s (id %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}
}

func listUsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "list-users",
		Usage: "list accounts ordered by unit",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "role", Usage: "admin or vecino"},
			&cli.BoolFlag{Name: "active-only"},
			&cli.StringFlag{Name: "search"},
		},
		Action: func(c *cli.Context) error {
			role := models.Role(c.String("role"))
			if role != "" && !role.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			filter := repositories.UserListFilter{Role: role, Search: c.String("search")}
			if c.Bool("active-only") {
				active := true
				filter.IsActive = &active
			}

			return withDeps(c, func(_ *config.Config, deps *bootstrap.Dependencies) error {
				users, total, err := deps.Repos.UserRepository.List(c.Context, filter)
				if err != nil {
					return err
				}
				writeUsers(c.App.Writer, users)
				logger.Debug().Int64("total", total).Msg("Listed users")
				return nil
			})
		},
	}
}

func neighborsCommand() *cli.Command {
	return &cli.Command{
		Name:      "neighbors",
		Usage:     "show the neighbor directory as seen by a user",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			username := c.Args().First()
			if username == "" {
				return cli.Exit("a username is required", 2)
			}

			return withDeps(c, func(_ *config.Config, deps *bootstrap.Dependencies) error {
				viewer, err := deps.Repos.UserRepository.GetByUsername(c.Context, username)
				if err != nil {
					return err
				}
				neighbors, err := deps.Repos.UserRepository.ListNeighbors(c.Context, viewer.ID)
				if err != nil {
					return err
				}
				writeUsers(c.App.Writer, neighbors)
				return nil
			})
		},
	}
}

func cleanupTokensCommand() *cli.Command {
	return &cli.Command{
		Name:  "cleanup-tokens",
		Usage: "delete expired refresh tokens and revoked ones older than 30 days",
		Action: func(c *cli.Context) error {
			return withDeps(c, func(_ *config.Config, deps *bootstrap.Dependencies) error {
				removed, err := deps.Repos.TokenRepository.CleanupExpiredTokens(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "removed %d refresh tokens\n", removed)
				return nil
			})
		},
	}
}

func writeUsers(w io.Writer, users []*models.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUNIT\tUSERNAME\tNAME\tROLE\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%t\n", u.ID, u.Unit, u.Username, u.FullName(), u.Role, u.IsActive)
	}
	_ = tw.Flush()
}
