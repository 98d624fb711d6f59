package rag

import (
	"errors"
	"fmt"
)

// Validation errors, surfaced before any external call is made.
var (
	// ErrEmptyQuestion rejects a query with a blank question.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrEmptyNotebook rejects a query without a notebook scope.
	ErrEmptyNotebook = errors.New("notebook id must not be empty")

	// ErrMissingSource rejects an ingest request without a source id.
	ErrMissingSource = errors.New("source id must not be empty")

	// ErrMissingNotebook rejects an ingest request without a notebook id.
	ErrMissingNotebook = errors.New("notebook id must not be empty")

	// ErrNotPDF rejects uploads whose filename is not a .pdf.
	ErrNotPDF = errors.New("only pdf files are supported")
)

// ParseError is a terminal ingestion failure during text extraction.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
