// planctl runs inventory projections from the command line: print a series'
// day-by-day walk, summarize its risk, or export CSVs to object storage.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/flowplan/backend-go/internal/domain"
	"github.com/flowplan/backend-go/internal/export"
	"github.com/flowplan/backend-go/internal/projection"
	"github.com/flowplan/backend-go/internal/repository"
	"github.com/flowplan/backend-go/internal/repository/postgres"
	"github.com/flowplan/backend-go/internal/service"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "planctl.db"

const asOfLayout = "2006-01-02"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newHorizonFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "horizon",
		Usage: "Projection horizon in days",
		Value: projection.DefaultHorizonDays,
	}
}

func newAsOfFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "as-of",
		Usage: "Reference date (YYYY-MM-DD), defaults to today",
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func serviceFromContext(c *cli.Context) (*service.ProjectionService, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	repo := repository.NewPlanningRepository(postgres.Wrap(sqlx.NewDb(db, "pgx")))
	return service.NewProjectionService(repo, nil, c.Int("workers")), nil
}

func resolveAsOf(c *cli.Context) (time.Time, error) {
	raw := c.String("as-of")
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	asOf, err := time.Parse(asOfLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date %q: %w", raw, err)
	}
	return asOf, nil
}

func resolveHorizon(c *cli.Context) (int, error) {
	horizon := c.Int("horizon")
	if horizon < 0 {
		return 0, fmt.Errorf("--horizon must be >= 0")
	}
	return horizon, nil
}

// resolveSeriesIDs returns the explicitly requested series or, with --all,
// every series in the database.
func resolveSeriesIDs(c *cli.Context, svc *service.ProjectionService) ([]string, error) {
	if c.Bool("all") {
		series, err := svc.GetSeries(c.Context)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(series))
		for _, sr := range series {
			ids = append(ids, sr.ID)
		}
		return ids, nil
	}

	ids := c.StringSlice("series")
	if len(ids) == 0 {
		return nil, fmt.Errorf("provide --series or --all")
	}
	return ids, nil
}

func runProject(c *cli.Context) error {
	svc, err := serviceFromContext(c)
	if err != nil {
		return err
	}
	asOf, err := resolveAsOf(c)
	if err != nil {
		return err
	}
	horizon, err := resolveHorizon(c)
	if err != nil {
		return err
	}
	ids, err := resolveSeriesIDs(c, svc)
	if err != nil {
		return err
	}

	results, err := svc.ProjectMany(c.Context, ids, horizon, asOf)
	if err != nil {
		return err
	}

	for _, result := range results {
		if result.EmptySeries {
			fmt.Fprintf(c.App.Writer, "%s: no inventory observations\n", result.SeriesID)
			continue
		}

		if c.String("format") == "csv" {
			if err := export.WriteCSV(c.App.Writer, result.Days); err != nil {
				return err
			}
			continue
		}

		printProjectionTable(c, result)
	}

	return nil
}

func printProjectionTable(c *cli.Context, result domain.SeriesProjection) {
	fmt.Fprintf(c.App.Writer, "series %s (safety stock %.2f, reorder point %.2f)\n",
		result.SeriesID, result.Days[0].SafetyStock, result.Days[0].ReorderPoint)

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDEMAND\tCUMULATIVE\tPROJECTED\tSTATUS")
	for _, day := range result.Days {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%s\n",
			day.Date, day.ForecastDemand, day.CumulativeDemand, day.ProjectedInventory, day.Status)
	}
	w.Flush()
}

func runSummary(c *cli.Context) error {
	svc, err := serviceFromContext(c)
	if err != nil {
		return err
	}
	asOf, err := resolveAsOf(c)
	if err != nil {
		return err
	}
	horizon, err := resolveHorizon(c)
	if err != nil {
		return err
	}

	seriesID := c.String("series")
	if seriesID == "" {
		return fmt.Errorf("--series is required")
	}

	summary, err := svc.GetSummary(c.Context, seriesID, horizon, asOf)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "series:        %s\n", seriesID)
	fmt.Fprintf(c.App.Writer, "risk level:    %s\n", summary.RiskLevel)
	fmt.Fprintf(c.App.Writer, "stockout days: %d\n", summary.StockoutDays)
	fmt.Fprintf(c.App.Writer, "critical days: %d\n", summary.CriticalDays)
	fmt.Fprintf(c.App.Writer, "warning days:  %d\n", summary.WarningDays)
	fmt.Fprintf(c.App.Writer, "min inventory: %.2f\n", summary.MinInventory)
	fmt.Fprintf(c.App.Writer, "total demand:  %.2f\n", summary.TotalDemand)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "planctl",
		Usage: "Run and export inventory projections",
		Commands: []*cli.Command{
			{
				Name:  "project",
				Usage: "Project inventory for one or more series",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newHorizonFlag(),
					newAsOfFlag(),
					&cli.StringSliceFlag{Name: "series", Usage: "Series ID (repeatable)"},
					&cli.BoolFlag{Name: "all", Usage: "Project every series"},
					&cli.StringFlag{Name: "format", Usage: "Output format: table or csv", Value: "table"},
					&cli.IntFlag{Name: "workers", Usage: "Parallel projection workers", Value: 8},
				},
				Before: initDB,
				After:  closeDB,
				Action: runProject,
			},
			{
				Name:  "summary",
				Usage: "Summarize one series' projection risk",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newHorizonFlag(),
					newAsOfFlag(),
					&cli.StringFlag{Name: "series", Usage: "Series ID", Required: true},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSummary,
			},
			{
				Name:  "export",
				Usage: "Render projections as CSV and upload them to object storage",
				Flags: append([]cli.Flag{
					newDBURLFlag(),
					newHorizonFlag(),
					newAsOfFlag(),
					&cli.StringSliceFlag{Name: "series", Usage: "Series ID (repeatable)"},
					&cli.BoolFlag{Name: "all", Usage: "Export every series"},
					&cli.IntFlag{Name: "workers", Usage: "Parallel projection workers", Value: 8},
				}, storageFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
