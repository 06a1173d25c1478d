package classifier

import "github.com/dtnitsch/sweep-schedules/models"

// layout maps header column positions to record fields, in column order.
type layout[R any] []func(*R) *string

var divisionLayout = layout[models.DivisionRecord]{
	func(r *models.DivisionRecord) *string { return &r.AuthNumber },
	func(r *models.DivisionRecord) *string { return &r.Address },
	func(r *models.DivisionRecord) *string { return &r.CrossStreetOne },
	func(r *models.DivisionRecord) *string { return &r.CrossStreetTwo },
	func(r *models.DivisionRecord) *string { return &r.Location },
	func(r *models.DivisionRecord) *string { return &r.Comments },
	func(r *models.DivisionRecord) *string { return &r.CleaningTime },
	func(r *models.DivisionRecord) *string { return &r.Division },
	func(r *models.DivisionRecord) *string { return &r.Status },
}

// futureAction is constant and has no column.
var futureLayout = layout[models.FutureRecord]{
	func(r *models.FutureRecord) *string { return &r.AuthNumber },
	func(r *models.FutureRecord) *string { return &r.Address },
	func(r *models.FutureRecord) *string { return &r.CrossStreetOne },
	func(r *models.FutureRecord) *string { return &r.CrossStreetTwo },
	func(r *models.FutureRecord) *string { return &r.Location },
	func(r *models.FutureRecord) *string { return &r.Comments },
	func(r *models.FutureRecord) *string { return &r.Division },
	func(r *models.FutureRecord) *string { return &r.Status },
}

var maintenanceLayout = layout[models.MaintenanceRecord]{
	func(r *models.MaintenanceRecord) *string { return &r.IDTeam },
	func(r *models.MaintenanceRecord) *string { return &r.Address },
	func(r *models.MaintenanceRecord) *string { return &r.Location },
	func(r *models.MaintenanceRecord) *string { return &r.Comments },
	func(r *models.MaintenanceRecord) *string { return &r.Division },
	func(r *models.MaintenanceRecord) *string { return &r.Status },
}

// fill appends every cell of row that falls inside a header column to the
// field at that column's position. A cell inside two padded columns lands
// in both. Columns past the end of the layout are ignored.
func (l layout[R]) fill(rec *R, mode models.Mode, headers, row models.Row) {
	for i, column := range headers {
		if i >= len(l) {
			return
		}
		field := l[i](rec)
		for _, cell := range row {
			if Contains(mode, column, cell) {
				*field += cell.Text
			}
		}
	}
}
