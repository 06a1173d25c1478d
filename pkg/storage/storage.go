package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dtnitsch/sweep-schedules/models"
)

var ErrNotFound = errors.New("no file for date")

// Store persists documents as date-keyed JSON files.
//
//	<DataDir>/<dateId>[-future].json
//	<InvalidDir>/<dateId>-invalid[-future].json
type Store struct {
	DataDir    string
	InvalidDir string
}

func suffix(future bool) string {
	if future {
		return "-future"
	}
	return ""
}

func (s *Store) DataPath(dateID string, future bool) string {
	return filepath.Join(s.DataDir, dateID+suffix(future)+".json")
}

func (s *Store) InvalidPath(dateID string, future bool) string {
	return filepath.Join(s.InvalidDir, dateID+"-invalid"+suffix(future)+".json")
}

// SaveDocument writes the valid and invalid records of doc. A second
// document resolving to the same date and variant replaces the first.
// Both files are staged before either is renamed into place, and the data
// file goes last, so a failed save leaves the previous data file intact.
func (s *Store) SaveDocument(doc models.Document, asset models.Asset) error {
	data := models.DataFile{
		Date:       doc.Date,
		Activities: doc.Activities,
		URL:        asset.URL,
		Name:       asset.Name,
	}
	invalid := models.InvalidFile{
		Date:    doc.Date,
		Invalid: doc.Invalid,
	}

	invalidTmp, err := stageJSON(s.InvalidPath(doc.DateID, doc.Future), invalid)
	if err != nil {
		return err
	}
	defer os.Remove(invalidTmp)

	dataTmp, err := stageJSON(s.DataPath(doc.DateID, doc.Future), data)
	if err != nil {
		return err
	}
	defer os.Remove(dataTmp)

	if err := os.Rename(invalidTmp, s.InvalidPath(doc.DateID, doc.Future)); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	if err := os.Rename(dataTmp, s.DataPath(doc.DateID, doc.Future)); err != nil {
		return fmt.Errorf("error saving file: %w", err)
	}
	return nil
}

// LoadData reads a data file, returning ErrNotFound when it does not exist.
func (s *Store) LoadData(dateID string, future bool) (*models.DataFile, error) {
	var out models.DataFile
	if err := readJSON(s.DataPath(dateID, future), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadInvalid reads an invalid-records file.
func (s *Store) LoadInvalid(dateID string, future bool) (*models.InvalidFile, error) {
	var out models.InvalidFile
	if err := readJSON(s.InvalidPath(dateID, future), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DaySummary counts the records stored for one date across both variants.
type DaySummary struct {
	DateID     string `json:"date_id" yaml:"date_id"`
	Future     bool   `json:"future" yaml:"future"`
	Activities int    `json:"activities" yaml:"activities"`
	Invalid    int    `json:"invalid" yaml:"invalid"`
}

// Summary reads the current and future files of dateID. Missing files
// count as empty; ErrNotFound is returned only when no data file exists.
func (s *Store) Summary(dateID string) (DaySummary, error) {
	sum := DaySummary{DateID: dateID}
	found := false
	for _, future := range []bool{false, true} {
		data, err := s.LoadData(dateID, future)
		switch {
		case errors.Is(err, ErrNotFound):
			continue
		case err != nil:
			return DaySummary{}, err
		}
		found = true
		sum.Future = sum.Future || future
		sum.Activities += len(data.Activities)

		invalid, err := s.LoadInvalid(dateID, future)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return DaySummary{}, err
		default:
			sum.Invalid += len(invalid.Invalid)
		}
	}
	if !found {
		return DaySummary{}, fmt.Errorf("%w: %s", ErrNotFound, dateID)
	}
	return sum, nil
}

// Days lists the date ids that have a data file, ascending. Files whose
// name is not a date, such as the watermark marker, are ignored.
func (s *Store) Days() ([]string, error) {
	entries, err := os.ReadDir(s.DataDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error listing data files: %w", err)
	}

	seen := make(map[string]bool)
	days := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := dateIDOf(e.Name())
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		days = append(days, id)
	}
	sort.Strings(days)
	return days, nil
}

func dateIDOf(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return "", false
	}
	base = strings.TrimSuffix(base, "-future")
	if _, err := time.Parse("2006-01-02", base); err != nil {
		return "", false
	}
	return base, true
}

// stageJSON writes v compactly to a temp file next to path and returns the
// temp file's name. Renaming it onto path publishes it atomically.
func stageJSON(path string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("error encoding %s: %w", filepath.Base(path), err)
	}
	content := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error saving file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error saving file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return tmp.Name(), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}
