package api

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/dtnitsch/sweep-schedules/pkg/export"
	"github.com/dtnitsch/sweep-schedules/pkg/header"
	"github.com/dtnitsch/sweep-schedules/pkg/storage"
)

const (
	msgInvalidDate = "Invalid request, date must be in the YYYY-MM-DD format"
	msgNoCSV       = "Activities for that date do not exist."
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Day is one entry of /api/days.
type Day struct {
	ID int64 `json:"id"` // epoch millis of local midnight
}

// FileRef points at the source document of a data file.
type FileRef struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Sweeps is the response of /api/sweeps/{date}.
type Sweeps struct {
	Date        string         `json:"date"`
	Activities  models.Records `json:"activities"`
	CurrentFile *FileRef       `json:"currentFile,omitempty"`
	FutureFile  *FileRef       `json:"futureFile,omitempty"`
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.Days()
	if err != nil {
		s.Logger.Error("Failed to list days", "error", err)
		writeText(w, http.StatusInternalServerError, fmt.Sprintf("Error listing days: %v", err))
		return
	}

	days := make([]Day, 0, len(ids))
	for _, id := range ids {
		t, err := header.ParseID(id, s.Location)
		if err != nil {
			continue
		}
		days = append(days, Day{ID: t.UnixMilli()})
	}
	s.writeJSON(w, days)
}

func (s *Server) handleSweeps(w http.ResponseWriter, r *http.Request) {
	dateID, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	current, future, err := s.load(dateID)
	if err != nil {
		s.Logger.Error("Failed to load data", "date_id", dateID, "error", err)
		writeText(w, http.StatusInternalServerError, fmt.Sprintf("Error getting data: %v", err))
		return
	}

	resp := Sweeps{
		Date:        s.dateOf(dateID, current, future),
		Activities:  models.Records{},
		CurrentFile: fileRef(current),
		FutureFile:  fileRef(future),
	}
	if current != nil {
		resp.Activities = append(resp.Activities, current.Activities...)
	}
	if future != nil {
		resp.Activities = append(resp.Activities, future.Activities...)
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	dateID, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	current, future, err := s.load(dateID)
	if err != nil {
		s.Logger.Error("Failed to load data", "date_id", dateID, "error", err)
		writeText(w, http.StatusNotFound, msgNoCSV)
		return
	}
	if current == nil && future == nil {
		writeText(w, http.StatusNotFound, msgNoCSV)
		return
	}

	body, err := export.CSV(current, future)
	if err != nil {
		s.Logger.Error("Failed to render CSV", "date_id", dateID, "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment;filename="%s"`, export.FileName(current, future, dateID)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// dateParam validates the {date} parameter, writing a 400 when it is not
// a YYYY-MM-DD calendar date.
func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	dateID := chi.URLParam(r, "date")
	if !datePattern.MatchString(dateID) {
		writeText(w, http.StatusBadRequest, msgInvalidDate)
		return "", false
	}
	if _, err := header.ParseID(dateID, s.Location); err != nil {
		writeText(w, http.StatusBadRequest, msgInvalidDate)
		return "", false
	}
	return dateID, true
}

// load reads both variants of a date. A missing file comes back nil.
func (s *Server) load(dateID string) (current, future *models.DataFile, err error) {
	current, err = s.Store.LoadData(dateID, false)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, err
	}
	future, err = s.Store.LoadData(dateID, true)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, err
	}
	return current, future, nil
}

func (s *Server) dateOf(dateID string, current, future *models.DataFile) string {
	if current != nil && current.Date != "" {
		return current.Date
	}
	if future != nil && future.Date != "" {
		return future.Date
	}
	t, _ := header.ParseID(dateID, s.Location)
	return header.FormatISO(t)
}

func fileRef(f *models.DataFile) *FileRef {
	if f == nil || f.URL == "" || f.Name == "" {
		return nil
	}
	return &FileRef{URL: f.URL, Name: f.Name}
}
