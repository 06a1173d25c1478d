package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/sweep-schedules/models"
)

const sampleList = `{"uuid":"a","url":"https://cdn.example.com/a.pdf","name":"a.pdf","date":"2024-01-05T10:00:00.000Z"}
not json at all

{"uuid":"b","url":"https://cdn.example.com/b.pdf","name":"b.pdf","date":"2024-01-06T10:00:00.000Z"}
{"uuid":"b","deleted":true}
{"uuid":"c","url":"https://cdn.example.com/c.pdf","name":"c.pdf","date":"2024-01-07T10:00:00.000Z"}
{"uuid":"d","url":"https://cdn.example.com/d.pdf","name":"d.pdf","date":"yesterday"}
`

func TestParse(t *testing.T) {
	got, dropped, err := Parse(strings.NewReader(sampleList))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if dropped != 1 {
		t.Errorf("Parse() dropped = %d, want 1", dropped)
	}
	if len(got) != 5 {
		t.Fatalf("Parse() returned %d assets, want 5", len(got))
	}
	if got[0].UUID != "a" || got[0].Name != "a.pdf" {
		t.Errorf("first asset = %+v", got[0])
	}
	if !got[2].Deleted {
		t.Error("deleted flag not decoded")
	}
}

func TestSelect_NoWatermark(t *testing.T) {
	all, _, _ := Parse(strings.NewReader(sampleList))

	got := Select(all, time.Time{}, false)
	var ids []string
	for _, a := range got {
		ids = append(ids, a.UUID)
	}
	if strings.Join(ids, ",") != "a,c,d" {
		t.Errorf("Select() = %v, want [a c d]", ids)
	}
}

func TestSelect_Watermark(t *testing.T) {
	all, _, _ := Parse(strings.NewReader(sampleList))

	mark := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	got := Select(all, mark, true)
	if len(got) != 1 || got[0].UUID != "c" {
		t.Errorf("Select() = %+v, want only c", got)
	}
}

func TestSelect_DeletedAnywhereExcludesAll(t *testing.T) {
	all := []models.Asset{
		{UUID: "x", Deleted: true},
		{UUID: "x", URL: "u", Date: "2024-01-01T00:00:00Z"},
	}
	if got := Select(all, time.Time{}, false); len(got) != 0 {
		t.Errorf("Select() = %+v, want none", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".glitch-assets")
	if err := os.WriteFile(path, []byte(sampleList), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, dropped, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 5 || dropped != 1 {
		t.Errorf("Load() = %d assets, %d dropped", len(got), dropped)
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestSelect_WatermarkISOVariants(t *testing.T) {
	mark := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := []string{
		"2019-01-07T18:25:13.532Z",
		"2019-01-07T18:25:13",
		"2019-01-07",
		"2019-01-07T18:25:13+0000",
		"2019-01-07T10:25:13-08:00",
	}
	for _, d := range dates {
		t.Run(d, func(t *testing.T) {
			got := Select([]models.Asset{{UUID: "a", Date: d}}, mark, true)
			if len(got) != 1 {
				t.Errorf("Select(%q) selected %d, want 1", d, len(got))
			}
		})
	}

	before := Select([]models.Asset{{UUID: "a", Date: "2018-12-31"}}, mark, true)
	if len(before) != 0 {
		t.Errorf("Select() kept an asset dated before the watermark: %+v", before)
	}
}

func TestUploadedAt_NoZoneIsUTC(t *testing.T) {
	got, err := UploadedAt(models.Asset{Date: "2019-01-07T18:25:13"})
	if err != nil {
		t.Fatalf("UploadedAt() error = %v", err)
	}
	want := time.Date(2019, 1, 7, 18, 25, 13, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("UploadedAt() = %v, want %v", got, want)
	}
}
