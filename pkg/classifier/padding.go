package classifier

import "github.com/dtnitsch/sweep-schedules/models"

// DefaultPadding is the horizontal slack added to both sides of a header
// column before testing whether a data cell falls inside it.
const DefaultPadding = 20.0

// Padding returns the slack for a header column in the given mode.
// Column-specific overrides win over mode-specific ones.
func Padding(mode models.Mode, header string) float64 {
	padding := DefaultPadding

	if mode == models.ModeMaintenance {
		switch header {
		case "ID TEAM":
			padding = 5
		case "Address":
			padding = 75
		case "Comments/Survey":
			padding = 50
		}
	}

	switch header {
	case "Est. Clean Time":
		padding = 3
	case "Status":
		padding = 30
	}
	return padding
}

// Contains reports whether cell lies fully inside the padded span of column.
func Contains(mode models.Mode, column, cell models.Cell) bool {
	padding := Padding(mode, column.Text)
	return column.Start-padding <= cell.Start && column.End+padding >= cell.End
}
