// Package extract turns uploaded files into document text.
package extract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for files other than plain text.
var ErrUnsupportedType = errors.New("unsupported file type")

// MaxUploadSize caps the bytes read from one upload.
const MaxUploadSize = 10 << 20

// Extractor extracts text from uploaded files.
type Extractor struct {
	maxSize int64
}

// NewExtractor returns a new Extractor with the default size cap.
func NewExtractor() *Extractor {
	return &Extractor{maxSize: MaxUploadSize}
}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".txt"
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractUpload reads an uploaded file named filename from r.
// Only .txt is accepted. Content larger than the size cap is rejected.
func (e *Extractor) ExtractUpload(filename string, r io.Reader) (string, error) {
	if !Supported(filename) {
		return "", fmt.Errorf("%w: %q (only .txt files are accepted)", ErrUnsupportedType, filename)
	}
	content, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > e.maxSize {
		return "", fmt.Errorf("upload %q exceeds %d bytes", filename, e.maxSize)
	}
	return e.ExtractBytes(content, filepath.Ext(filename))
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".txt").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	if strings.ToLower(ext) != ".txt" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	return extractPlain(content)
}
