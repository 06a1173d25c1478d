package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Build statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Document statuses.
const (
	DocumentOK     = "ok"
	DocumentFailed = "failed"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrBuildNotFound = errors.New("build not found")

// Build is one run of the build pipeline.
type Build struct {
	BuildID    string     `json:"build_id" yaml:"build_id"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Status     string     `json:"status" yaml:"status"`
	Selected   int        `json:"selected" yaml:"selected"`
	Succeeded  int        `json:"succeeded" yaml:"succeeded"`
	Failed     int        `json:"failed" yaml:"failed"`
}

// BuildDocument is the outcome of one asset within a build.
type BuildDocument struct {
	BuildID      string `db:"build_id" json:"-" yaml:"-"`
	AssetUUID    string `db:"asset_uuid" json:"asset_uuid" yaml:"asset_uuid"`
	AssetName    string `db:"asset_name" json:"asset_name" yaml:"asset_name"`
	URL          string `db:"url" json:"url" yaml:"url"`
	DateID       string `db:"date_id" json:"date_id,omitempty" yaml:"date_id,omitempty"`
	Future       bool   `db:"future" json:"future" yaml:"future"`
	Activities   int    `db:"activities" json:"activities" yaml:"activities"`
	Invalid      int    `db:"invalid" json:"invalid" yaml:"invalid"`
	Status       string `db:"status" json:"status" yaml:"status"`
	ErrorType    string `db:"error_type" json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string `db:"error_message" json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// buildRow is the stored shape of a Build.
type buildRow struct {
	BuildID    string         `db:"build_id"`
	StartedAt  string         `db:"started_at"`
	FinishedAt sql.NullString `db:"finished_at"`
	Status     string         `db:"status"`
	Selected   int            `db:"selected"`
	Succeeded  int            `db:"succeeded"`
	Failed     int            `db:"failed"`
}

func (r buildRow) build() (Build, error) {
	b := Build{
		BuildID:   r.BuildID,
		Status:    r.Status,
		Selected:  r.Selected,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
	}
	started, err := parseTime(r.StartedAt)
	if err != nil {
		return Build{}, err
	}
	b.StartedAt = started
	if r.FinishedAt.Valid {
		finished, err := parseTime(r.FinishedAt.String)
		if err != nil {
			return Build{}, err
		}
		b.FinishedAt = &finished
	}
	return b, nil
}

const buildColumns = `build_id, started_at, finished_at, status, selected, succeeded, failed`

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// BuildStatus derives a build's status from its document counts.
func BuildStatus(succeeded, failed int) string {
	switch {
	case failed == 0:
		return StatusSucceeded
	case succeeded == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// StartBuild records a new running build and returns its id.
func (db *DB) StartBuild(ctx context.Context, startedAt time.Time, selected int) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO builds (build_id, started_at, status, selected)
		VALUES (?, ?, ?, ?)
	`), id, formatTime(startedAt), StatusRunning, selected)
	if err != nil {
		return "", fmt.Errorf("failed to start build: %w", err)
	}
	return id, nil
}

// RecordDocument stores the outcome of one asset.
func (db *DB) RecordDocument(ctx context.Context, doc BuildDocument) error {
	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO build_documents
			(build_id, asset_uuid, asset_name, url, date_id, future, activities, invalid,
			 status, error_type, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), doc.BuildID, doc.AssetUUID, doc.AssetName, doc.URL, doc.DateID, boolInt(doc.Future),
		doc.Activities, doc.Invalid, doc.Status, doc.ErrorType, doc.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to record document: %w", err)
	}
	return nil
}

// FinishBuild closes a build with its final counts.
func (db *DB) FinishBuild(ctx context.Context, buildID string, finishedAt time.Time, succeeded, failed int) error {
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE builds
		SET finished_at = ?, status = ?, succeeded = ?, failed = ?
		WHERE build_id = ?
	`), formatTime(finishedAt), BuildStatus(succeeded, failed), succeeded, failed, buildID)
	if err != nil {
		return fmt.Errorf("failed to finish build: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrBuildNotFound, buildID)
	}
	return nil
}

// GetBuild retrieves one build.
func (db *DB) GetBuild(ctx context.Context, buildID string) (*Build, error) {
	var row buildRow
	err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+buildColumns+` FROM builds WHERE build_id = ?`), buildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBuildNotFound, buildID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}
	b, err := row.build()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBuilds retrieves builds, most recent first.
func (db *DB) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	query := `SELECT ` + buildColumns + ` FROM builds ORDER BY started_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var rows []buildRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}

	builds := make([]Build, 0, len(rows))
	for _, row := range rows {
		b, err := row.build()
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, nil
}

// BuildDocuments retrieves the per-asset outcomes of a build in insert order.
func (db *DB) BuildDocuments(ctx context.Context, buildID string) ([]BuildDocument, error) {
	var docs []BuildDocument
	err := db.SelectContext(ctx, &docs, db.Rebind(`
		SELECT build_id, asset_uuid, asset_name, url, date_id, future, activities, invalid,
		       status, error_type, COALESCE(error_message, '') AS error_message
		FROM build_documents
		WHERE build_id = ?
		ORDER BY id
	`), buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get build documents: %w", err)
	}
	return docs, nil
}

// LastSuccessfulBuild returns the most recent build that finished without failures.
func (db *DB) LastSuccessfulBuild(ctx context.Context) (*Build, bool, error) {
	var row buildRow
	err := db.GetContext(ctx, &row, db.Rebind(`
		SELECT `+buildColumns+`
		FROM builds
		WHERE status = ? AND finished_at IS NOT NULL
		ORDER BY started_at DESC
		LIMIT 1
	`), StatusSucceeded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get last successful build: %w", err)
	}
	b, err := row.build()
	if err != nil {
		return nil, false, err
	}
	return &b, true, nil
}

// Watermark returns the named watermark.
func (db *DB) Watermark(ctx context.Context, name string) (time.Time, bool, error) {
	var at string
	err := db.GetContext(ctx, &at, db.Rebind(`SELECT marked_at FROM watermarks WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get watermark: %w", err)
	}
	t, err := parseTime(at)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// SetWatermark creates or moves the named watermark.
func (db *DB) SetWatermark(ctx context.Context, name string, at time.Time) error {
	if _, err := db.ExecContext(ctx, db.Rebind(upsertWatermark[db.driver]), name, formatTime(at)); err != nil {
		return fmt.Errorf("failed to set watermark: %w", err)
	}
	return nil
}
