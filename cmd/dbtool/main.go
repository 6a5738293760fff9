package main

import (
	"database/sql"
	"fmt"
	"os"
	"outlet-route-service/internal/adapters/repositories"
	"outlet-route-service/internal/config"
	"outlet-route-service/internal/platform/db"
	"outlet-route-service/internal/platform/obs"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	obs.SetupLogger()
	config.LoadDotEnv()

	app := &cli.App{
		Name:  "dbtool",
		Usage: "Manage the outlet location catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "driver",
				Usage:   "Database driver (sqlite or postgres)",
				Value:   config.Get("DB_DRIVER", db.DriverSQLite),
				EnvVars: []string{"DB_DRIVER"},
			},
			&cli.StringFlag{
				Name:  "dsn",
				Usage: "Database file path (sqlite) or URL (postgres); defaults to DB_PATH or DATABASE_URL",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Create the catalog schema",
				Action: func(c *cli.Context) error {
					conn, err := openFromFlags(c)
					if err != nil {
						return err
					}
					defer conn.Close()

					log.Info().Msg("Initializing database schema...")
					if err := repositories.InitSchema(c.Context, conn); err != nil {
						return fmt.Errorf("schema initialization failed: %w", err)
					}
					log.Info().Msg("Schema ready.")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Create the schema and load outlets from a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Path of the outlet CSV",
						Value: config.Get("SEED_PATH", "data/seeds/outlets.csv"),
					},
				},
				Action: func(c *cli.Context) error {
					conn, err := openFromFlags(c)
					if err != nil {
						return err
					}
					defer conn.Close()

					if err := repositories.InitSchema(c.Context, conn); err != nil {
						return fmt.Errorf("schema initialization failed: %w", err)
					}

					log.Info().Str("file", c.String("file")).Msg("Seeding database...")
					dialect := repositories.DialectFor(c.String("driver"))
					n, err := repositories.SeedFromCSV(c.Context, conn, dialect, c.String("file"))
					if err != nil {
						return fmt.Errorf("seeding failed: %w", err)
					}
					log.Info().Int("locations", n).Msg("Seeding complete.")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func openFromFlags(c *cli.Context) (*sql.DB, error) {
	driver := c.String("driver")
	dsn := c.String("dsn")
	if dsn == "" {
		if repositories.DialectFor(driver) == repositories.DialectPostgres {
			dsn = os.Getenv("DATABASE_URL")
		} else {
			dsn = config.Get("DB_PATH", "data/app.db")
		}
	}
	if dsn == "" {
		return nil, fmt.Errorf("no database location for driver %q (set --dsn, DB_PATH or DATABASE_URL)", driver)
	}
	return db.Open(driver, dsn)
}
