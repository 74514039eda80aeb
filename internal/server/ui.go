package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/qdocs/internal/extract"
	"github.com/hyperjump/qdocs/internal/models"
	"github.com/hyperjump/qdocs/internal/view"
	"go.uber.org/zap"
)

// Every UI action performs its operation, then the page is rebuilt from the store and
// rendered in full.

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, nil)
}

func (s *Server) handleUploadPreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Choose a .txt file to upload.")
		return
	}
	defer file.Close()

	content, err := s.extractor.ExtractUpload(header.Filename, file)
	if errors.Is(err, extract.ErrUnsupportedType) {
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Only .txt files are supported.")
		return
	}
	if err != nil {
		s.logger.Warn("upload rejected", zap.String("filename", header.Filename), zap.Error(err))
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Could not read upload: "+err.Error())
		return
	}
	s.logger.Debug("upload preview", zap.String("filename", header.Filename), zap.Int("bytes", len(content)))
	s.renderPage(w, r, http.StatusOK, func(p *view.Page) {
		p.Preview = &view.UploadPreview{Filename: header.Filename, Content: content}
	})
}

// handleUploadConfirm stores the previewed upload. The preview form carries the file as
// base64 because browsers rewrite line breaks in text fields.
func (s *Server) handleUploadConfirm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(base64.StdEncoding.EncodedLen(extract.MaxUploadSize))+1<<20)
	if err := r.ParseForm(); err != nil {
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Could not read upload: "+err.Error())
		return
	}
	raw, err := base64.StdEncoding.DecodeString(r.PostForm.Get("content_b64"))
	if err != nil {
		s.logger.Warn("malformed upload confirmation", zap.Error(err))
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Upload could not be confirmed. Choose the file again.")
		return
	}
	filename := r.PostForm.Get("filename")
	content, err := s.extractor.ExtractUpload(filename, bytes.NewReader(raw))
	if errors.Is(err, extract.ErrUnsupportedType) {
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Only .txt files are supported.")
		return
	}
	if err != nil {
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Could not read upload: "+err.Error())
		return
	}
	id, err := s.service.Create(r.Context(), content)
	if err != nil {
		s.logger.Error("upload failed", zap.Error(err))
		s.renderFlash(w, r, http.StatusInternalServerError, view.FlashError, "Failed to store document: "+err.Error())
		return
	}
	s.renderPage(w, r, http.StatusOK, func(p *view.Page) {
		p.AddFlash(view.FlashSuccess, "Document uploaded with ID %d", id)
	})
}

func (s *Server) handleSearchPage(w http.ResponseWriter, r *http.Request) {
	query := r.FormValue("query")
	hits, err := s.service.Search(r.Context(), query, 0)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.renderFlash(w, r, http.StatusInternalServerError, view.FlashError, "Search failed: "+err.Error())
		return
	}
	s.renderPage(w, r, http.StatusOK, func(p *view.Page) {
		p.SetResults(query, hits)
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageDocumentID(w, r)
	if !ok {
		return
	}
	if err := s.states.BeginEdit(id); err != nil {
		s.renderFlash(w, r, http.StatusConflict, view.FlashError, err.Error())
		return
	}
	s.renderPage(w, r, http.StatusOK, nil)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageDocumentID(w, r)
	if !ok {
		return
	}
	// Browsers submit textarea line breaks as CRLF.
	content := strings.ReplaceAll(r.FormValue("content"), "\r\n", "\n")
	if err := s.states.BeginSave(id); err != nil {
		s.renderFlash(w, r, http.StatusConflict, view.FlashError, err.Error())
		return
	}
	if err := s.service.Modify(r.Context(), id, content); err != nil {
		_ = s.states.Fail(id)
		s.logger.Error("modify failed", zap.Uint64("id", id), zap.Error(err))
		s.renderFlash(w, r, http.StatusInternalServerError, view.FlashError, "Failed to update document: "+err.Error())
		return
	}
	_ = s.states.Finish(id)
	s.renderPage(w, r, http.StatusOK, func(p *view.Page) {
		p.AddFlash(view.FlashSuccess, "Updated document ID %d", id)
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageDocumentID(w, r)
	if !ok {
		return
	}
	if err := s.states.Cancel(id); err != nil {
		s.renderFlash(w, r, http.StatusConflict, view.FlashError, err.Error())
		return
	}
	s.renderPage(w, r, http.StatusOK, func(p *view.Page) {
		p.AddFlash(view.FlashInfo, "Modification of document ID %d cancelled", id)
	})
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pageDocumentID(w, r)
	if !ok {
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Uint64("id", id), zap.Error(err))
		s.renderFlash(w, r, http.StatusInternalServerError, view.FlashError, "Failed to delete document: "+err.Error())
		return
	}
	s.states.Forget(id)
	s.renderPage(w, r, http.StatusOK, func(p *view.Page) {
		p.AddFlash(view.FlashSuccess, "Deleted document ID %d", id)
	})
}

func (s *Server) pageDocumentID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := models.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		s.renderFlash(w, r, http.StatusBadRequest, view.FlashError, "Invalid document id.")
		return 0, false
	}
	return id, true
}

func (s *Server) renderFlash(w http.ResponseWriter, r *http.Request, status int, level view.FlashLevel, message string) {
	s.renderPage(w, r, status, func(p *view.Page) {
		p.Flashes = append(p.Flashes, view.Flash{Level: level, Message: message})
	})
}

// renderPage rebuilds the page from the store, applies decorate, and writes the HTML.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, decorate func(*view.Page)) {
	_, listLimit := s.service.Limits()
	page, err := view.Build(r.Context(), s.service, s.states, listLimit)
	page.Collection = s.service.Info().Collection
	if decorate != nil {
		decorate(page)
	}
	if err != nil {
		s.logger.Error("failed to load documents", zap.Error(err))
		page.AddFlash(view.FlashError, "Could not load documents: %v", err)
		if status == http.StatusOK {
			status = http.StatusInternalServerError
		}
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		s.logger.Error("render failed", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
