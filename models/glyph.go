package models

// Glyph is a positioned text run taken from one PDF page.
// Coordinates are in PDF user space, so Y grows upward.
type Glyph struct {
	Text  string
	X, Y  float64
	Width float64
}

// Cell is a horizontal span built from one or more contiguous glyphs.
type Cell struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Row is an ordered run of cells sharing a vertical band.
type Row []Cell

// FirstText returns the text of the first cell, or "" for an empty row.
func (r Row) FirstText() string {
	if len(r) == 0 {
		return ""
	}
	return r[0].Text
}
