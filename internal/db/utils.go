package db

import (
	"context"
	"fmt"

	dbpkg "github.com/dtnitsch/sweep-schedules/pkg/db"
	"github.com/urfave/cli/v2"
)

// GetBuildIDOrLatest returns the build ID from args, or the latest build if not provided
func GetBuildIDOrLatest(ctx context.Context, c *cli.Context, database *dbpkg.DB) (string, error) {
	if c.NArg() > 0 {
		return c.Args().First(), nil
	}

	builds, err := database.ListBuilds(ctx, 1)
	if err != nil {
		return "", fmt.Errorf("failed to get latest build: %w", err)
	}
	if len(builds) == 0 {
		return "", fmt.Errorf("no builds found. Run 'sweeps build' first")
	}
	return builds[0].BuildID, nil
}
