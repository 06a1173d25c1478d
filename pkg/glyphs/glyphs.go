// Package glyphs reads positioned text runs from PDF pages.
package glyphs

import (
	"context"
	"fmt"

	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/text"
)

// Source yields the glyphs of a document, one slice per page, in page order.
type Source interface {
	Pages(ctx context.Context, path string) ([][]models.Glyph, error)
}

// Extractor reads the text layer of PDF files.
type Extractor struct{}

// Pages opens the PDF at path and extracts every page sequentially.
// Row assembly depends on page order, so pages are never read concurrently.
func (Extractor) Pages(ctx context.Context, path string) ([][]models.Glyph, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	pages := make([][]models.Glyph, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := r.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		fragments, err := r.ExtractTextFragments(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, FromFragments(fragments))
	}
	return pages, nil
}

// FromFragments converts extracted text fragments to glyphs, keeping order.
func FromFragments(fragments []text.TextFragment) []models.Glyph {
	out := make([]models.Glyph, len(fragments))
	for i, f := range fragments {
		out[i] = models.Glyph{
			Text:  f.Text,
			X:     f.X,
			Y:     f.Y,
			Width: f.Width,
		}
	}
	return out
}

// Static serves fixed pages regardless of path. Useful for tests and replays.
type Static [][]models.Glyph

func (s Static) Pages(ctx context.Context, _ string) ([][]models.Glyph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}
