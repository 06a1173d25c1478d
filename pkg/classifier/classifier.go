// Package classifier turns assembled rows into typed sweep records.
//
// Rows are scanned in order. A row whose first cell is a known header marker
// switches the active mode and becomes the header for the rows that follow.
// Every other row (with more than one cell) is mapped onto the header columns
// by horizontal containment and validated.
package classifier

import "github.com/dtnitsch/sweep-schedules/models"

// Header markers, matched exactly against the first cell of a row.
const (
	DivisionMarker    = "Auth#"
	MaintenanceMarker = "ID TEAM"
	FutureMarker      = "Authorization#"
)

// futureDecoration is a header cell of the future layout that is not a column.
const futureDecoration = "Auth Address/"

// Result is the classified content of one document.
type Result struct {
	Activities models.Records
	Invalid    models.Records
	// SawFuture is set once a future header has been seen.
	SawFuture bool
}

// Classify maps rows onto records. Rows of a single cell are page furniture
// and never contribute. Rows before the first header are ignored.
func Classify(rows []models.Row) Result {
	res := Result{
		Activities: models.Records{},
		Invalid:    models.Records{},
	}

	mode := models.ModeNone
	var headers models.Row

	for _, row := range rows {
		if len(row) <= 1 {
			continue
		}

		if next, ok := markerMode(row.FirstText()); ok {
			mode = next
			headers = row
			if mode == models.ModeFuture {
				headers = withoutCell(row, futureDecoration)
				res.SawFuture = true
			}
			continue
		}

		var rec models.Record
		switch mode {
		case models.ModeDivision:
			r := &models.DivisionRecord{}
			divisionLayout.fill(r, mode, headers, row)
			rec = r
		case models.ModeFuture:
			r := &models.FutureRecord{FutureAction: true}
			futureLayout.fill(r, mode, headers, row)
			rec = r
		case models.ModeMaintenance:
			r := &models.MaintenanceRecord{}
			maintenanceLayout.fill(r, mode, headers, row)
			rec = r
		default:
			continue
		}

		if Valid(rec) {
			res.Activities = append(res.Activities, rec)
		} else {
			res.Invalid = append(res.Invalid, rec)
		}
	}
	return res
}

func markerMode(text string) (models.Mode, bool) {
	switch text {
	case DivisionMarker:
		return models.ModeDivision, true
	case MaintenanceMarker:
		return models.ModeMaintenance, true
	case FutureMarker:
		return models.ModeFuture, true
	}
	return models.ModeNone, false
}

func withoutCell(row models.Row, text string) models.Row {
	out := make(models.Row, 0, len(row))
	for _, cell := range row {
		if cell.Text != text {
			out = append(out, cell)
		}
	}
	return out
}
