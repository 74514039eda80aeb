// Package view builds the page model rendered after every user action.
package view

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/hyperjump/qdocs/internal/models"
)

// FlashLevel is the severity of a status message.
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashInfo    FlashLevel = "info"
	FlashWarning FlashLevel = "warning"
	FlashError   FlashLevel = "error"
)

// NoResultsMessage is shown when a search returns nothing.
const NoResultsMessage = "No matching documents found."

// Flash is a one-shot status message.
type Flash struct {
	Level   FlashLevel
	Message string
}

// UploadPreview is an uploaded file shown for confirmation before it is stored.
type UploadPreview struct {
	Filename string
	Content  string
}

// Encoded is Content as standard base64. The confirm form carries it so the stored text
// is byte-identical to the upload.
func (u UploadPreview) Encoded() string {
	return base64.StdEncoding.EncodeToString([]byte(u.Content))
}

// ResultView is one search hit.
type ResultView struct {
	ID      uint64
	Score   float32
	Content string
}

// Title is the collapsed heading of the hit, with the score at two decimals.
func (r ResultView) Title() string {
	return fmt.Sprintf("Document ID: %d | Score: %.2f", r.ID, r.Score)
}

// DocumentView is one listed record.
type DocumentView struct {
	ID      uint64
	Content string
	Mode    Mode
	// Draft pre-fills the editor while Mode is Editing.
	Draft string
}

// Title is the collapsed heading of the record.
func (d DocumentView) Title() string {
	return fmt.Sprintf("Document ID: %d", d.ID)
}

// Editing reports whether the editor is shown.
func (d DocumentView) Editing() bool {
	return d.Mode == Editing
}

// Page is everything one render shows.
type Page struct {
	Title      string
	Collection string
	Flashes    []Flash
	Preview    *UploadPreview
	Query      string
	Searched   bool
	Results    []ResultView
	Documents  []DocumentView
	ListLimit  int
}

// AddFlash appends a status message.
func (p *Page) AddFlash(level FlashLevel, format string, args ...interface{}) {
	p.Flashes = append(p.Flashes, Flash{Level: level, Message: fmt.Sprintf(format, args...)})
}

// SetResults records a completed search.
func (p *Page) SetResults(query string, hits []*models.SearchHit) {
	p.Query = query
	p.Searched = true
	p.Results = make([]ResultView, 0, len(hits))
	for _, h := range hits {
		p.Results = append(p.Results, ResultView{ID: h.ID, Score: h.Score, Content: h.Content})
	}
}

// NoResults returns the warning shown when a search ran and found nothing, or "".
func (p *Page) NoResults() string {
	if p.Searched && len(p.Results) == 0 {
		return NoResultsMessage
	}
	return ""
}

// Lister lists stored documents.
type Lister interface {
	ListAll(ctx context.Context, limit int) ([]*models.Document, error)
}

// Build re-reads up to limit documents and joins them with their edit modes.
// It always returns a usable page; on error the document list is empty.
func Build(ctx context.Context, lister Lister, states *EditStates, limit int) (*Page, error) {
	page := &Page{Title: "Qdrant Document Uploader, Search, Delete & Modify", ListLimit: limit}
	docs, err := lister.ListAll(ctx, limit)
	if err != nil {
		return page, fmt.Errorf("failed to list documents: %w", err)
	}
	present := make(map[uint64]struct{}, len(docs))
	page.Documents = make([]DocumentView, 0, len(docs))
	for _, d := range docs {
		present[d.ID] = struct{}{}
		dv := DocumentView{ID: d.ID, Content: d.Content}
		if states != nil {
			dv.Mode = states.Mode(d.ID)
		}
		if dv.Mode == Editing {
			dv.Draft = d.Content
		}
		page.Documents = append(page.Documents, dv)
	}
	if states != nil {
		states.Retain(present)
	}
	return page, nil
}
