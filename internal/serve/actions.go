package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dtnitsch/sweep-schedules/internal/build"
	"github.com/dtnitsch/sweep-schedules/internal/common"
	"github.com/dtnitsch/sweep-schedules/pkg/api"
	"github.com/dtnitsch/sweep-schedules/pkg/storage"
	"github.com/urfave/cli/v2"
)

// ServeAction runs a build in the background (unless disabled) and serves
// the read API until interrupted.
func ServeAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load config: %v", err), common.ExitFailure)
	}
	logger := common.NewLogger(c, cfg.Log)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.BuildOnStart && !c.Bool("no-build") {
		go func() {
			summary, err := build.Run(ctx, cfg, logger, build.Options{})
			if err != nil {
				logger.Error("Startup build failed", "error", err)
				return
			}
			logger.Info("Startup build done", "build_id", summary.BuildID, "status", summary.Status,
				"selected", summary.Selected, "failed", summary.Failed)
		}()
	}

	store := &storage.Store{DataDir: cfg.DataDir, InvalidDir: cfg.InvalidDir}
	srv := api.NewServer(store, cfg.Location(), logger)
	if err := srv.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logger.Error("Server stopped", "error", err)
		return cli.Exit("", common.ExitFailure)
	}
	return nil
}
