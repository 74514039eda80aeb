// Package models defines core data structures for documents, queries, and search results.
package models

import "strconv"

// ContentKey is the payload key holding a document's text.
const ContentKey = "content"

// Document is a single stored record: an id, its vector, and the text payload.
type Document struct {
	ID      uint64    `json:"id"`
	Vector  []float32 `json:"vector,omitempty"`
	Content string    `json:"content"`
}

// DocumentInput is the input for creating or modifying a document.
type DocumentInput struct {
	Content string `json:"content"`
}

// ParseID parses a decimal document id as used in URLs and CLI arguments.
func ParseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// FormatID returns the decimal form of id.
func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
