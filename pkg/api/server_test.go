package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/dtnitsch/sweep-schedules/pkg/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.Store) {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	root := t.TempDir()
	store := &storage.Store{DataDir: filepath.Join(root, "data"), InvalidDir: filepath.Join(root, "invalid")}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewServer(store, loc, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body error = %v", err)
	}
	return resp, string(body)
}

func save(t *testing.T, store *storage.Store, doc models.Document, name string) {
	t.Helper()
	asset := models.Asset{URL: "https://cdn.example.com/" + name, Name: name}
	if err := store.SaveDocument(doc, asset); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}
}

func TestSweeps_NoFiles(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/sweeps/2024-01-01")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	want := `{"date":"2024-01-01T08:00:00.000Z","activities":[]}` + "\n"
	if body != want {
		t.Errorf("body = %s, want %s", body, want)
	}
}

func TestSweeps_CurrentAndFuture(t *testing.T) {
	srv, store := newTestServer(t)
	save(t, store, models.Document{
		DateID: "2024-01-07", Date: "2024-01-07T08:00:00.000Z",
		Activities: models.Records{&models.DivisionRecord{AuthNumber: "1", Address: "100 Main St"}},
	}, "jan7.pdf")
	save(t, store, models.Document{
		DateID: "2024-01-07", Date: "2024-01-07T08:00:00.000Z", Future: true,
		Activities: models.Records{&models.FutureRecord{FutureAction: true, Address: "9 Oak Ave"}},
	}, "jan7-future.pdf")

	resp, body := get(t, srv.URL+"/api/sweeps/2024-01-07")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got Sweeps
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(got.Activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(got.Activities))
	}
	if _, ok := got.Activities[0].(*models.DivisionRecord); !ok {
		t.Errorf("first activity is %T, want current record first", got.Activities[0])
	}
	if _, ok := got.Activities[1].(*models.FutureRecord); !ok {
		t.Errorf("second activity is %T, want future record", got.Activities[1])
	}
	if got.CurrentFile == nil || got.CurrentFile.Name != "jan7.pdf" {
		t.Errorf("currentFile = %+v", got.CurrentFile)
	}
	if got.FutureFile == nil || got.FutureFile.Name != "jan7-future.pdf" {
		t.Errorf("futureFile = %+v", got.FutureFile)
	}
}

func TestInvalidDate(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{
		"/api/sweeps/20240101", "/api/sweeps/x2024-01-01", "/api/csv/2024-01-01x", "/api/csv/2024-13-40",
	} {
		resp, body := get(t, srv.URL+path)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", path, resp.StatusCode)
		}
		if body != msgInvalidDate {
			t.Errorf("%s body = %q", path, body)
		}
	}
}

func TestDays(t *testing.T) {
	srv, store := newTestServer(t)
	for _, id := range []string{"2024-01-09", "2024-01-07"} {
		save(t, store, models.Document{DateID: id, Date: id}, "x.pdf")
	}
	save(t, store, models.Document{DateID: "2024-01-07", Future: true}, "y.pdf")

	resp, body := get(t, srv.URL+"/api/days")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got []Day
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	// 2024-01-07 and 2024-01-09 at Pacific midnight.
	want := []int64{1704614400000, 1704787200000}
	if len(got) != len(want) {
		t.Fatalf("days = %+v, want %v", got, want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("day %d = %d, want %d", i, got[i].ID, want[i])
		}
	}
}

func TestDays_Empty(t *testing.T) {
	srv, _ := newTestServer(t)
	_, body := get(t, srv.URL+"/api/days")
	if strings.TrimSpace(body) != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestCSV_FutureOnly(t *testing.T) {
	srv, store := newTestServer(t)
	save(t, store, models.Document{
		DateID: "2024-07-04", Date: "2024-07-04T07:00:00.000Z", Future: true,
		Activities: models.Records{&models.FutureRecord{FutureAction: true, AuthNumber: "A-1", Address: "9 Oak Ave", Status: "Pending"}},
	}, "july4.pdf")

	resp, body := get(t, srv.URL+"/api/csv/2024-07-04")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment;filename="july4.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	want := "authNumber,idTeam,address,crossStreetOne,crossStreetTwo,location,comments,cleaningTime,division,status\n" +
		`"A-1","","9 Oak Ave","","","","","","","Unconfirmed - Pending"`
	if body != want {
		t.Errorf("body =\n%s\nwant\n%s", body, want)
	}
}

func TestCSV_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv.URL+"/api/csv/2024-01-01")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if body != msgNoCSV {
		t.Errorf("body = %q, want %q", body, msgNoCSV)
	}
}
