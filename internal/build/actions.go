package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dtnitsch/sweep-schedules/internal/common"
	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/dtnitsch/sweep-schedules/pkg/assets"
	"github.com/dtnitsch/sweep-schedules/pkg/caching"
	"github.com/dtnitsch/sweep-schedules/pkg/db"
	"github.com/dtnitsch/sweep-schedules/pkg/fetcher"
	"github.com/dtnitsch/sweep-schedules/pkg/glyphs"
	"github.com/dtnitsch/sweep-schedules/pkg/header"
	"github.com/dtnitsch/sweep-schedules/pkg/pipeline"
	"github.com/dtnitsch/sweep-schedules/pkg/publish"
	"github.com/dtnitsch/sweep-schedules/pkg/rows"
	"github.com/dtnitsch/sweep-schedules/pkg/storage"
	"github.com/dtnitsch/sweep-schedules/pkg/watermark"
	"github.com/urfave/cli/v2"
)

// Summary is the structured output of a build.
type Summary struct {
	BuildID   string             `json:"build_id,omitempty" yaml:"build_id,omitempty"`
	Status    string             `json:"status" yaml:"status"`
	Listed    int                `json:"listed" yaml:"listed"`
	Dropped   int                `json:"dropped_lines" yaml:"dropped_lines"`
	Selected  int                `json:"selected" yaml:"selected"`
	Succeeded int                `json:"succeeded" yaml:"succeeded"`
	Failed    int                `json:"failed" yaml:"failed"`
	Advanced  bool               `json:"watermark_advanced" yaml:"watermark_advanced"`
	Seconds   float64            `json:"total_time_seconds" yaml:"total_time_seconds"`
	Documents []db.BuildDocument `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// Options tune a single build.
type Options struct {
	// IgnoreWatermark rebuilds every non-deleted asset.
	IgnoreWatermark bool
	// Glyphs overrides the PDF reader.
	Glyphs glyphs.Source
	// Now overrides the clock.
	Now func() time.Time
}

func BuildAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load config: %v", err), common.ExitFailure)
	}
	logger := common.NewLogger(c, cfg.Log)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := Run(ctx, cfg, logger, Options{IgnoreWatermark: c.Bool("force")})
	if err != nil {
		logger.Error("Build failed", "error", err)
		return cli.Exit("", common.ExitFailure)
	}

	if err := common.Output(c, summary); err != nil {
		return err
	}

	switch summary.Status {
	case db.StatusFailed:
		return cli.Exit("", common.ExitFailure)
	case db.StatusPartial:
		return cli.Exit("", common.ExitPartial)
	}
	return nil
}

// Run selects changed assets, processes them and records the build.
// It returns an error only for setup failures; per-document failures
// are reported in the Summary.
func Run(ctx context.Context, cfg *models.Config, logger *slog.Logger, opts Options) (*Summary, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	startTime := now()

	database, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var marks watermark.Store = watermark.FileStore{Path: cfg.Watermark.Path}
	if cfg.Watermark.Mode == "db" {
		marks = watermark.LedgerStore{DB: database}
	}

	listed, dropped, err := assets.Load(cfg.AssetsFile)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		logger.Warn("Dropped malformed asset lines", "count", dropped, "file", cfg.AssetsFile)
	}

	mark, hasMark, err := marks.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.IgnoreWatermark {
		hasMark = false
	}
	selected := assets.Select(listed, mark, hasMark)
	logger.Info("Selected assets", "listed", len(listed), "selected", len(selected),
		"has_watermark", hasMark, "watermark", mark)

	summary := &Summary{
		Status:   db.StatusSucceeded,
		Listed:   len(listed),
		Dropped:  dropped,
		Selected: len(selected),
	}
	if len(selected) == 0 {
		summary.Seconds = time.Since(startTime).Seconds()
		return summary, nil
	}

	buildID, err := database.StartBuild(ctx, startTime, len(selected))
	if err != nil {
		return nil, err
	}
	summary.BuildID = buildID

	proc, closeProc, err := newProcessor(cfg, logger, opts)
	if err != nil {
		_ = database.FinishBuild(ctx, buildID, now(), 0, len(selected))
		return nil, err
	}
	defer closeProc()

	outcomes := pipeline.Run(ctx, proc, buildID, selected, cfg.Workers)
	summary.Succeeded, summary.Failed = pipeline.Tally(outcomes)
	summary.Status = db.BuildStatus(summary.Succeeded, summary.Failed)

	// The ledger outlives a cancelled build.
	ledgerCtx := context.WithoutCancel(ctx)
	for _, o := range outcomes {
		doc := document(buildID, o)
		if err := database.RecordDocument(ledgerCtx, doc); err != nil {
			logger.Error("Failed to record document", "asset", o.Asset.UUID, "error", err)
		}
		summary.Documents = append(summary.Documents, doc)
	}
	if err := database.FinishBuild(ledgerCtx, buildID, now(), summary.Succeeded, summary.Failed); err != nil {
		logger.Error("Failed to finish build", "build_id", buildID, "error", err)
	}

	if summary.Failed == 0 || cfg.Watermark.AdvanceOnPartialFailure {
		if err := marks.Advance(ledgerCtx, startTime); err != nil {
			logger.Error("Failed to advance watermark", "error", err)
		} else {
			summary.Advanced = true
		}
	} else {
		logger.Warn("Watermark not advanced, failed documents will be retried",
			"build_id", buildID, "failed", summary.Failed)
	}

	summary.Seconds = time.Since(startTime).Seconds()
	logger.Info("Build finished", "build_id", buildID, "status", summary.Status,
		"succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, nil
}

func newProcessor(cfg *models.Config, logger *slog.Logger, opts Options) (*pipeline.Processor, func(), error) {
	cache, err := caching.NewCache(cfg.Cache.Dir, cfg.Cache.TTL)
	if err != nil {
		return nil, nil, err
	}

	var pub publish.Publisher = publish.Nop{}
	if cfg.AMQP.URL != "" {
		p, err := publish.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return nil, nil, err
		}
		pub = p
	}

	var source glyphs.Source = glyphs.Extractor{}
	if opts.Glyphs != nil {
		source = opts.Glyphs
	}

	hp := header.NewParser(cfg.Location())
	if opts.Now != nil {
		hp.Now = opts.Now
	}

	proc := &pipeline.Processor{
		Fetcher: fetcher.NewFetcher(cache),
		Glyphs:  source,
		Assembler: rows.Assembler{
			CellTolerance: cfg.Tolerances.Cell,
			RowTolerance:  cfg.Tolerances.Row,
		},
		Header: hp,
		Store: &storage.Store{
			DataDir:    filepath.Clean(cfg.DataDir),
			InvalidDir: filepath.Clean(cfg.InvalidDir),
		},
		Publisher: pub,
		Logger:    logger,
	}
	closeFn := func() {
		if err := pub.Close(); err != nil {
			logger.Warn("Failed to close publisher", "error", err)
		}
	}
	return proc, closeFn, nil
}

func document(buildID string, o pipeline.Outcome) db.BuildDocument {
	doc := db.BuildDocument{
		BuildID:    buildID,
		AssetUUID:  o.Asset.UUID,
		AssetName:  o.Asset.Name,
		URL:        o.Asset.URL,
		DateID:     o.DateID,
		Future:     o.Future,
		Activities: o.Activities,
		Invalid:    o.Invalid,
		Status:     db.DocumentOK,
	}
	if !o.OK() {
		doc.Status = db.DocumentFailed
		doc.ErrorType = o.ErrorType
		doc.ErrorMessage = o.Error.Error()
	}
	return doc
}
