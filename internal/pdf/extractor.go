// Package pdf extracts plain text from PDF files, one entry per page.
package pdf

import (
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable indicates the file could not be parsed as a PDF.
var ErrUnreadable = errors.New("unreadable pdf")

// Page holds the extracted text of a single page. Number is 1-based,
// matching the page numbering readers see.
type Page struct {
	Number int
	Text   string
}

// Extract reads the PDF at path and returns its pages in order. Pages
// with no extractable text are returned with empty Text rather than
// skipped, so page numbers stay aligned with the document.
func Extract(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	numPages := reader.NumPage()
	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
