package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/dtnitsch/sweep-schedules/pkg/db"
	"github.com/dtnitsch/sweep-schedules/pkg/glyphs"
	"github.com/dtnitsch/sweep-schedules/pkg/storage"
)

func g(text string, x, y, width float64) models.Glyph {
	return models.Glyph{Text: text, X: x, Y: y, Width: width}
}

var schedule = glyphs.Static{{
	g("Encampment Sweeps", 10, 760, 120),
	g("Monday, January 7th @ 9:30", 15, 740, 150),
	g("Auth#", 20, 700, 30),
	g("Address", 110, 700, 45),
	g("12345", 22, 680, 28),
	g("100 Main St", 112, 680, 40),
}}

// setupBuild writes an asset list of one readable and one missing document.
func setupBuild(t *testing.T) *models.Config {
	t.Helper()
	root := t.TempDir()

	good := filepath.Join(root, "jan7.pdf")
	if err := os.WriteFile(good, []byte("%PDF"), 0600); err != nil {
		t.Fatal(err)
	}
	lines := []string{
		fmt.Sprintf(`{"uuid":"good","url":%q,"name":"jan7.pdf","date":"2024-02-01T00:00:00.000Z"}`, good),
		fmt.Sprintf(`{"uuid":"missing","url":%q,"name":"gone.pdf","date":"2024-02-02T00:00:00.000Z"}`, filepath.Join(root, "gone.pdf")),
		`garbage`,
	}
	assetsFile := filepath.Join(root, ".glitch-assets")
	if err := os.WriteFile(assetsFile, []byte(strings.Join(lines, "\n")), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := models.DefaultConfig()
	cfg.DataDir = filepath.Join(root, "data")
	cfg.InvalidDir = filepath.Join(root, "invalid")
	cfg.AssetsFile = assetsFile
	cfg.Watermark.Path = filepath.Join(cfg.DataDir, "lastChanged.txt")
	cfg.Cache.Dir = filepath.Join(root, "cache")
	cfg.Database.DSN = filepath.Join(root, "sweeps.db")
	cfg.Workers = 2
	return cfg
}

func testOptions() Options {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return Options{Glyphs: schedule, Now: func() time.Time { return now }}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_PartialFailureKeepsWatermark(t *testing.T) {
	cfg := setupBuild(t)
	ctx := context.Background()

	summary, err := Run(ctx, cfg, discard(), testOptions())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Listed != 2 || summary.Dropped != 1 || summary.Selected != 2 {
		t.Errorf("summary counts = %+v", summary)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 || summary.Status != db.StatusPartial {
		t.Errorf("summary outcome = %+v", summary)
	}
	if summary.Advanced {
		t.Error("watermark advanced after a partial failure")
	}
	if _, err := os.Stat(cfg.Watermark.Path); !os.IsNotExist(err) {
		t.Errorf("watermark file exists: %v", err)
	}

	store := &storage.Store{DataDir: cfg.DataDir, InvalidDir: cfg.InvalidDir}
	data, err := store.LoadData("2024-01-07", false)
	if err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}
	if len(data.Activities) != 1 || data.Name != "jan7.pdf" {
		t.Errorf("data file = %+v", data)
	}

	database, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	defer database.Close()
	docs, err := database.BuildDocuments(ctx, summary.BuildID)
	if err != nil {
		t.Fatalf("BuildDocuments() error = %v", err)
	}
	if len(docs) != 2 || docs[1].ErrorType != "fetch_error" {
		t.Errorf("ledger documents = %+v", docs)
	}
}

func TestRun_AdvanceOnPartialFailure(t *testing.T) {
	cfg := setupBuild(t)
	cfg.Watermark.AdvanceOnPartialFailure = true
	opts := testOptions()

	summary, err := Run(context.Background(), cfg, discard(), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !summary.Advanced {
		t.Fatal("watermark not advanced")
	}

	// Nothing was uploaded after the watermark.
	summary, err = Run(context.Background(), cfg, discard(), opts)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Selected != 0 || summary.BuildID != "" {
		t.Errorf("second summary = %+v, want nothing selected", summary)
	}

	opts.IgnoreWatermark = true
	summary, err = Run(context.Background(), cfg, discard(), opts)
	if err != nil {
		t.Fatalf("forced Run() error = %v", err)
	}
	if summary.Selected != 2 {
		t.Errorf("forced Run() selected %d, want 2", summary.Selected)
	}
}

func TestRun_LedgerWatermark(t *testing.T) {
	cfg := setupBuild(t)
	cfg.Watermark.Mode = "db"
	cfg.Watermark.AdvanceOnPartialFailure = true

	if _, err := Run(context.Background(), cfg, discard(), testOptions()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	summary, err := Run(context.Background(), cfg, discard(), testOptions())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if summary.Selected != 0 {
		t.Errorf("second Run() selected %d, want 0", summary.Selected)
	}
}

func TestRun_MissingAssetList(t *testing.T) {
	cfg := setupBuild(t)
	cfg.AssetsFile = filepath.Join(t.TempDir(), "none")

	if _, err := Run(context.Background(), cfg, discard(), testOptions()); err == nil {
		t.Error("Run() error = nil for missing asset list")
	}
}
