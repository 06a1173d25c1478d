package rows

import (
	"testing"

	"github.com/dtnitsch/sweep-schedules/models"
)

func glyph(text string, x, y, width float64) models.Glyph {
	return models.Glyph{Text: text, X: x, Y: y, Width: width}
}

func TestStep_FirstGlyphSeedsPending(t *testing.T) {
	a := New()
	s := a.Step(State{}, glyph("Auth#", 10, 700, 30))

	if !s.HasPending {
		t.Fatal("Step() HasPending = false, want true")
	}
	if s.BaselineY != 700 {
		t.Errorf("BaselineY = %v, want 700", s.BaselineY)
	}
	if len(s.Results) != 0 || len(s.Current) != 0 {
		t.Errorf("Step() emitted rows/cells on first glyph: results=%d current=%d", len(s.Results), len(s.Current))
	}
}

func TestStep_ContiguousGlyphsMergeIntoOneCell(t *testing.T) {
	a := New()
	glyphs := []models.Glyph{
		glyph("100 ", 50, 500, 20),
		glyph("Main ", 71, 500, 25), // 1 unit past the first glyph's end
		glyph("St", 97.5, 500, 10),   // 1.5 units past the merged end
		glyph("Next", 200, 500, 20),  // new cell
	}

	got := a.Page(glyphs)
	if len(got) != 1 {
		t.Fatalf("Page() returned %d rows, want 1", len(got))
	}
	row := got[0]
	if len(row) != 2 {
		t.Fatalf("row has %d cells, want 2: %+v", len(row), row)
	}
	if row[0].Text != "100 Main St" {
		t.Errorf("cell text = %q, want %q", row[0].Text, "100 Main St")
	}
	if row[0].Start != 50 || row[0].End != 107.5 {
		t.Errorf("cell span = [%v, %v], want [50, 107.5]", row[0].Start, row[0].End)
	}
	if row[1].Text != "Next" {
		t.Errorf("second cell = %q, want %q", row[1].Text, "Next")
	}
}

func TestStep_SameXMerges(t *testing.T) {
	a := New()
	got := a.Page([]models.Glyph{
		glyph("A", 10, 500, 5),
		glyph("B", 10, 490, 5), // same x, different y: still the same cell
	})
	if len(got) != 1 || len(got[0]) != 1 || got[0][0].Text != "AB" {
		t.Errorf("Page() = %+v, want single cell AB", got)
	}
}

func TestStep_RowBreakWhenYDropsBeyondTolerance(t *testing.T) {
	a := New()
	got := a.Page([]models.Glyph{
		glyph("a", 10, 100, 5),
		glyph("b", 100, 100, 5),
		glyph("c", 10, 96, 5), // drop of 4 > 3
		glyph("d", 100, 96, 5),
	})

	if len(got) != 2 {
		t.Fatalf("Page() returned %d rows, want 2: %+v", len(got), got)
	}
	if got[0][0].Text != "a" || got[0][1].Text != "b" {
		t.Errorf("first row = %+v, want [a b]", got[0])
	}
	if got[1][0].Text != "c" || got[1][1].Text != "d" {
		t.Errorf("second row = %+v, want [c d]", got[1])
	}
}

func TestStep_RowContinuesWithinToleranceOrHigher(t *testing.T) {
	a := New()
	got := a.Page([]models.Glyph{
		glyph("a", 10, 100, 5),
		glyph("b", 100, 97, 5),  // within 3
		glyph("c", 200, 110, 5), // higher on the page
		glyph("d", 300, 100, 5), // exact y
	})

	if len(got) != 1 {
		t.Fatalf("Page() returned %d rows, want 1: %+v", len(got), got)
	}
	if len(got[0]) != 4 {
		t.Errorf("row has %d cells, want 4", len(got[0]))
	}
}

func TestStep_BaselineFixedForRow(t *testing.T) {
	a := New()
	// Each glyph is 2 below the previous one but the baseline stays at 100,
	// so the third glyph (4 below) starts a new row.
	got := a.Page([]models.Glyph{
		glyph("a", 10, 100, 5),
		glyph("b", 100, 98, 5),
		glyph("c", 200, 96, 5),
	})
	if len(got) != 2 {
		t.Fatalf("Page() returned %d rows, want 2", len(got))
	}
	if len(got[1]) != 1 || got[1][0].Text != "c" {
		t.Errorf("second row = %+v, want [c]", got[1])
	}
}

func TestFlush_EmitsPendingCell(t *testing.T) {
	a := New()
	got := a.Page([]models.Glyph{glyph("only", 10, 100, 20)})
	if len(got) != 1 || len(got[0]) != 1 || got[0][0].Text != "only" {
		t.Errorf("Page() = %+v, want one row with the pending cell", got)
	}
}

func TestPage_Empty(t *testing.T) {
	if got := New().Page(nil); len(got) != 0 {
		t.Errorf("Page(nil) = %+v, want no rows", got)
	}
}

func TestDocument_PagesAssembledIndependently(t *testing.T) {
	a := New()
	pages := [][]models.Glyph{
		{glyph("p1a", 10, 100, 5), glyph("p1b", 100, 100, 5)},
		// Second page starts high again; it must not join the last row of page one.
		{glyph("p2a", 10, 700, 5), glyph("p2b", 100, 700, 5)},
	}

	got := a.Document(pages)
	if len(got) != 2 {
		t.Fatalf("Document() returned %d rows, want 2", len(got))
	}
	if got[0][0].Text != "p1a" || got[1][0].Text != "p2a" {
		t.Errorf("Document() order = %q, %q", got[0][0].Text, got[1][0].Text)
	}
}

func TestStep_CustomCellTolerance(t *testing.T) {
	a := Assembler{CellTolerance: 1, RowTolerance: 3}
	got := a.Page([]models.Glyph{
		glyph("a", 10, 100, 10),
		glyph("b", 21.5, 100, 10), // 1.5 past the end: outside a 1 unit tolerance
	})
	if len(got) != 1 || len(got[0]) != 2 {
		t.Errorf("Page() = %+v, want two cells", got)
	}
}
