// Package assets reads the uploaded document list and picks what to build.
package assets

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dtnitsch/sweep-schedules/models"
)

// ErrMalformedLine marks a line of the asset list that is not an asset.
var ErrMalformedLine = errors.New("malformed asset line")

// maxLineSize bounds a single line of the asset list.
const maxLineSize = 1024 * 1024

// Parse reads one JSON asset per line. Lines that do not decode are
// dropped and counted; blank lines are skipped silently.
func Parse(r io.Reader) ([]models.Asset, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []models.Asset
	dropped := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		asset, err := parseLine(line)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, asset)
	}
	if err := scanner.Err(); err != nil {
		return out, dropped, fmt.Errorf("failed to read asset list: %w", err)
	}
	return out, dropped, nil
}

func parseLine(line string) (models.Asset, error) {
	var asset models.Asset
	if err := json.Unmarshal([]byte(line), &asset); err != nil {
		return models.Asset{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}
	return asset, nil
}

// Load parses the asset list at path.
func Load(path string) ([]models.Asset, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open asset list: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Select drops every asset whose uuid was ever marked deleted and, when a
// watermark is set, every asset not uploaded strictly after it.
func Select(all []models.Asset, watermark time.Time, hasWatermark bool) []models.Asset {
	deleted := make(map[string]bool)
	for _, a := range all {
		if a.Deleted {
			deleted[a.UUID] = true
		}
	}

	var out []models.Asset
	for _, a := range all {
		if deleted[a.UUID] {
			continue
		}
		if hasWatermark {
			uploaded, err := UploadedAt(a)
			if err != nil || !uploaded.After(watermark) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// UploadedAt parses the asset's ISO-8601 upload time. Dates without a
// zone or time of day are read as UTC.
func UploadedAt(a models.Asset) (time.Time, error) {
	t, err := dateparse.ParseIn(a.Date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("asset %s: bad date %q: %w", a.UUID, a.Date, err)
	}
	return t, nil
}
