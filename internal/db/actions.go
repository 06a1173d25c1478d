package db

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/sweep-schedules/internal/common"
	dbpkg "github.com/dtnitsch/sweep-schedules/pkg/db"
	"github.com/dtnitsch/sweep-schedules/pkg/header"
	"github.com/dtnitsch/sweep-schedules/pkg/storage"
	"github.com/urfave/cli/v2"
)

// BuildsAction lists recent builds.
func BuildsAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(c.Context, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	builds, err := database.ListBuilds(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list builds: %w", err)
	}

	if c.String("format") == "table" {
		printBuilds(builds)
		return nil
	}
	return common.Output(c, builds)
}

// BuildDetail is a build with its per-document outcomes.
type BuildDetail struct {
	dbpkg.Build `yaml:",inline"`
	Documents   []dbpkg.BuildDocument `json:"documents" yaml:"documents"`
}

// BuildAction shows one build, the latest when no id is given.
func BuildAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	database, err := dbpkg.Open(c.Context, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	buildID, err := GetBuildIDOrLatest(c.Context, c, database)
	if err != nil {
		return err
	}

	b, err := database.GetBuild(c.Context, buildID)
	if err != nil {
		return err
	}
	docs, err := database.BuildDocuments(c.Context, buildID)
	if err != nil {
		return err
	}

	if c.String("format") == "table" {
		printBuild(b, docs)
		return nil
	}
	return common.Output(c, BuildDetail{Build: *b, Documents: docs})
}

// DaysAction lists the dates that have data with the API's day id and the
// number of stored and rejected records.
func DaysAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}
	store := &storage.Store{DataDir: cfg.DataDir, InvalidDir: cfg.InvalidDir}
	days, err := store.Days()
	if err != nil {
		return err
	}

	type day struct {
		storage.DaySummary `yaml:",inline"`
		ID                 int64 `json:"id" yaml:"id"`
	}
	out := make([]day, 0, len(days))
	for _, d := range days {
		t, err := header.ParseID(d, cfg.Location())
		if err != nil {
			continue
		}
		sum, err := store.Summary(d)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", d, err)
		}
		out = append(out, day{DaySummary: sum, ID: t.UnixMilli()})
	}

	if c.String("format") == "table" {
		fmt.Printf("%-12s %-15s %-8s %-11s %-8s\n", "Date", "ID", "Future", "Activities", "Invalid")
		fmt.Println(strings.Repeat("-", 58))
		for _, d := range out {
			fmt.Printf("%-12s %-15d %-8t %-11d %-8d\n", d.DateID, d.ID, d.Future, d.Activities, d.Invalid)
		}
		fmt.Printf("\nTotal: %d days\n", len(out))
		return nil
	}
	return common.Output(c, out)
}

func printBuilds(builds []dbpkg.Build) {
	if len(builds) == 0 {
		fmt.Println("No builds found")
		return
	}

	fmt.Printf("%-36s %-20s %-10s %-8s %-8s %-8s\n",
		"ID", "Started", "Status", "Docs", "OK", "Failed")
	fmt.Println(strings.Repeat("-", 96))
	for _, b := range builds {
		fmt.Printf("%-36s %-20s %-10s %-8d %-8d %-8d\n",
			b.BuildID,
			b.StartedAt.Local().Format("2006-01-02 15:04:05"),
			b.Status,
			b.Selected,
			b.Succeeded,
			b.Failed,
		)
	}
	fmt.Printf("\nTotal: %d builds\n", len(builds))
	fmt.Printf("\nTip: Use 'sweeps builds show <id>' to see details\n")
}

func printBuild(b *dbpkg.Build, docs []dbpkg.BuildDocument) {
	fmt.Printf("Build %s\n", b.BuildID)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Started:   %s\n", b.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if b.FinishedAt != nil {
		fmt.Printf("Finished:  %s\n", b.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Status:    %s\n", b.Status)
	fmt.Printf("Documents: %d total (%d ok, %d failed)\n", b.Selected, b.Succeeded, b.Failed)

	fmt.Printf("\nDocuments (%d):\n", len(docs))
	fmt.Println(strings.Repeat("-", 60))
	for i, d := range docs {
		fmt.Printf("%2d. [%s] %s\n", i+1, d.Status, d.URL)
		if d.Status == dbpkg.DocumentFailed {
			fmt.Printf("    Error: [%s] %s\n", d.ErrorType, d.ErrorMessage)
		} else {
			fmt.Printf("    Date: %s | Future: %t | Activities: %d | Invalid: %d\n",
				d.DateID, d.Future, d.Activities, d.Invalid)
		}
	}
}
