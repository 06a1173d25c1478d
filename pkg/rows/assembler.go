// Package rows rebuilds table rows from the positioned glyphs of a PDF page.
//
// The assembler is a small state machine driven one glyph at a time. A glyph
// either extends the pending cell, closes it and starts a new cell on the same
// row, or closes the whole row. Pages are assembled independently and their
// rows concatenated in page order.
package rows

import "github.com/dtnitsch/sweep-schedules/models"

const (
	// DefaultCellTolerance is the horizontal slack for merging a glyph into
	// the pending cell.
	DefaultCellTolerance = 2.0
	// DefaultRowTolerance is the vertical slack for keeping a glyph on the
	// current row.
	DefaultRowTolerance = 3.0
)

// Assembler groups glyphs into cells and cells into rows.
// CellTolerance must stay tighter than RowTolerance or close columns merge.
type Assembler struct {
	CellTolerance float64
	RowTolerance  float64
}

// New returns an Assembler with the default tolerances.
func New() Assembler {
	return Assembler{
		CellTolerance: DefaultCellTolerance,
		RowTolerance:  DefaultRowTolerance,
	}
}

// State is the accumulator carried across the glyphs of one page.
type State struct {
	Results []models.Row
	Current models.Row
	// Pending is the open cell. A merged cell keeps the position of its
	// first glyph and grows to cover the right edge of the last one.
	Pending    models.Glyph
	HasPending bool
	BaselineY  float64
}

// Step applies one glyph to s and returns the next state.
// Step takes ownership of s; callers must not reuse the state they passed in.
func (a Assembler) Step(s State, g models.Glyph) State {
	if !s.HasPending {
		s.Pending = g
		s.HasPending = true
		s.BaselineY = g.Y
		return s
	}

	prevX := s.Pending.X
	prevEnd := prevX + s.Pending.Width

	switch {
	case g.X == prevX || within(a.CellTolerance, prevEnd, g.X):
		s.Pending.Text += g.Text
		if end := g.X + g.Width; end > prevEnd {
			s.Pending.Width = end - prevX
		}
	case within(a.RowTolerance, s.BaselineY, g.Y) || g.Y > s.BaselineY:
		s.Current = append(s.Current, cellOf(s.Pending))
		s.Pending = g
	default:
		s.Current = append(s.Current, cellOf(s.Pending))
		s.Results = append(s.Results, s.Current)
		s.Current = nil
		s.Pending = g
		s.BaselineY = g.Y
	}
	return s
}

// Flush closes the pending cell and the current row and returns every row.
func (a Assembler) Flush(s State) []models.Row {
	if s.HasPending {
		s.Current = append(s.Current, cellOf(s.Pending))
		s.HasPending = false
	}
	if len(s.Current) > 0 {
		s.Results = append(s.Results, s.Current)
	}
	return s.Results
}

// Page assembles the glyphs of a single page.
func (a Assembler) Page(glyphs []models.Glyph) []models.Row {
	var s State
	for _, g := range glyphs {
		s = a.Step(s, g)
	}
	return a.Flush(s)
}

// Document assembles every page on its own and concatenates the rows in page order.
func (a Assembler) Document(pages [][]models.Glyph) []models.Row {
	var out []models.Row
	for _, page := range pages {
		out = append(out, a.Page(page)...)
	}
	return out
}

func cellOf(g models.Glyph) models.Cell {
	return models.Cell{Text: g.Text, Start: g.X, End: g.X + g.Width}
}

func within(delta, source, value float64) bool {
	return value >= source-delta && value <= source+delta
}
