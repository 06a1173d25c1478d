// Package pipeline turns source assets into persisted record files.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/dtnitsch/sweep-schedules/pkg/classifier"
	"github.com/dtnitsch/sweep-schedules/pkg/glyphs"
	"github.com/dtnitsch/sweep-schedules/pkg/header"
	"github.com/dtnitsch/sweep-schedules/pkg/publish"
	"github.com/dtnitsch/sweep-schedules/pkg/rows"
	"github.com/dtnitsch/sweep-schedules/pkg/storage"
)

// Error types reported per document.
const (
	FetchError   = "fetch_error"
	ExtractError = "extract_error"
	HeaderError  = "header_error"
	SaveError    = "save_error"
	PublishError = "publish_error"
	// Cancelled marks documents abandoned because the build was interrupted.
	Cancelled = "cancelled"
)

// Downloader resolves a source URL to a local file.
type Downloader interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Processor runs one asset through fetch, extraction, row assembly,
// classification and persistence.
type Processor struct {
	Fetcher   Downloader
	Glyphs    glyphs.Source
	Assembler rows.Assembler
	Header    *header.Parser
	Store     *storage.Store
	Publisher publish.Publisher
	Logger    *slog.Logger
}

// Outcome is the result of processing one asset.
type Outcome struct {
	Asset      models.Asset
	DateID     string
	Future     bool
	Activities int
	Invalid    int
	Error      error
	ErrorType  string
}

func (o Outcome) OK() bool {
	return o.Error == nil
}

// Parse reconstructs a document from its pages of glyphs.
func (p *Processor) Parse(pages [][]models.Glyph) (models.Document, error) {
	assembled := p.Assembler.Document(pages)

	date, err := p.Header.Parse(assembled)
	if err != nil {
		return models.Document{}, err
	}

	res := classifier.Classify(assembled)
	return models.Document{
		DateID:     date.ID,
		Date:       date.ISO,
		Future:     date.Future || res.SawFuture,
		Activities: res.Activities,
		Invalid:    res.Invalid,
	}, nil
}

// Process handles one asset. Failures are reported in the Outcome and
// never affect other assets.
func (p *Processor) Process(ctx context.Context, buildID string, asset models.Asset) Outcome {
	out := Outcome{Asset: asset}
	fail := func(errType string, err error) Outcome {
		if ctx.Err() != nil {
			errType = Cancelled
		}
		out.Error = err
		out.ErrorType = errType
		p.logger().Error("Document failed", "asset", asset.UUID, "url", asset.URL,
			"error_type", errType, "error", err, "build_id", buildID)
		return out
	}

	if err := ctx.Err(); err != nil {
		return fail(Cancelled, err)
	}

	path, err := p.Fetcher.Fetch(ctx, asset.URL)
	if err != nil {
		return fail(FetchError, err)
	}

	pages, err := p.Glyphs.Pages(ctx, path)
	if err != nil {
		return fail(ExtractError, err)
	}

	doc, err := p.Parse(pages)
	if err != nil {
		return fail(HeaderError, err)
	}
	out.DateID = doc.DateID
	out.Future = doc.Future
	out.Activities = len(doc.Activities)
	out.Invalid = len(doc.Invalid)

	if err := p.Store.SaveDocument(doc, asset); err != nil {
		return fail(SaveError, err)
	}
	p.logger().Info("Document saved", "asset", asset.UUID, "date_id", doc.DateID, "future", doc.Future,
		"activities", out.Activities, "invalid", out.Invalid)

	if p.Publisher != nil {
		ev := publish.Event{
			DateID:     doc.DateID,
			Future:     doc.Future,
			Activities: out.Activities,
			Invalid:    out.Invalid,
			URL:        asset.URL,
			Name:       asset.Name,
			BuildID:    buildID,
		}
		if err := p.Publisher.Publish(ctx, ev); err != nil {
			return fail(PublishError, fmt.Errorf("document saved but not announced: %w", err))
		}
	}
	return out
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
