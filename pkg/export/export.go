// Package export renders a day's activities as CSV.
package export

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/jszwec/csvutil"
)

// UnconfirmedPrefix marks the status of rows taken from a future schedule.
const UnconfirmedPrefix = "Unconfirmed - "

// Header returns the CSV column names.
func Header() ([]string, error) {
	return csvutil.Header(models.Activity{}, "csv")
}

// CSV renders current activities followed by future ones. Every value is
// quoted and rows are separated by a bare newline. Either file may be nil.
func CSV(current, future *models.DataFile) ([]byte, error) {
	header, err := Header()
	if err != nil {
		return nil, fmt.Errorf("failed to build CSV header: %w", err)
	}

	lines := []string{strings.Join(header, ",")}
	if current != nil {
		for _, rec := range current.Activities {
			lines = append(lines, line(rec.Activity()))
		}
	}
	if future != nil {
		for _, rec := range future.Activities {
			a := rec.Activity()
			a.Status = UnconfirmedPrefix + a.Status
			lines = append(lines, line(a))
		}
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func line(a models.Activity) string {
	values := []string{
		a.AuthNumber, a.IDTeam, a.Address, a.CrossStreetOne, a.CrossStreetTwo,
		a.Location, a.Comments, a.CleaningTime, a.Division, a.Status,
	}
	for i, v := range values {
		values[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(values, ",")
}

// FileName derives the download name from the current file's source name,
// falling back to the future file's and then to the date itself.
// "schedule.pdf" becomes "schedule.csv"; "schedule.xls" becomes
// "schedule-xls.csv".
func FileName(current, future *models.DataFile, dateID string) string {
	name := ""
	if current != nil {
		name = current.Name
	}
	if name == "" && future != nil {
		name = future.Name
	}
	if name == "" {
		return dateID + ".csv"
	}

	parts := strings.Split(name, ".")
	base := parts[0]
	if len(parts) < 2 || parts[1] == "pdf" {
		return base + ".csv"
	}
	return base + "-" + parts[1] + ".csv"
}
