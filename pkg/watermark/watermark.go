// Package watermark remembers when the last build ran, so unchanged
// source documents can be skipped.
package watermark

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/sweep-schedules/pkg/db"
)

// Store loads and advances the watermark. There is a single writer: the
// build that just finished.
type Store interface {
	Load(ctx context.Context) (time.Time, bool, error)
	Advance(ctx context.Context, at time.Time) error
}

// FileStore keeps the watermark as the modification time of a marker file.
type FileStore struct {
	Path string
}

func (s FileStore) Load(ctx context.Context) (time.Time, bool, error) {
	info, err := os.Stat(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read watermark: %w", err)
	}
	return info.ModTime(), true, nil
}

func (s FileStore) Advance(ctx context.Context, at time.Time) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create watermark directory: %w", err)
	}
	if err := os.WriteFile(s.Path, nil, 0644); err != nil {
		return fmt.Errorf("failed to write watermark: %w", err)
	}
	if err := os.Chtimes(s.Path, at, at); err != nil {
		return fmt.Errorf("failed to set watermark time: %w", err)
	}
	return nil
}

// LedgerName is the watermark row used by LedgerStore.
const LedgerName = "build"

// LedgerStore keeps the watermark in the build ledger. Before the first
// advance it falls back to the start of the last successful build.
type LedgerStore struct {
	DB *db.DB
}

func (s LedgerStore) Load(ctx context.Context) (time.Time, bool, error) {
	at, ok, err := s.DB.Watermark(ctx, LedgerName)
	if err != nil || ok {
		return at, ok, err
	}
	b, ok, err := s.DB.LastSuccessfulBuild(ctx)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return b.StartedAt, true, nil
}

func (s LedgerStore) Advance(ctx context.Context, at time.Time) error {
	return s.DB.SetWatermark(ctx, LedgerName, at)
}
