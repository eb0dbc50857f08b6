package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ErrInvalidPDF is returned when an eBook upload is not a readable PDF
var ErrInvalidPDF = errors.New("invalid pdf")

// InspectPDF parses the document structure of r and returns its page count.
// The parser panics on some malformed inputs, so panics are reported as
// ErrInvalidPDF.
func InspectPDF(r io.ReaderAt, size int64) (pages int, err error) {
	defer func() {
		if p := recover(); p != nil {
			pages, err = 0, fmt.Errorf("%w: %v", ErrInvalidPDF, p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return reader.NumPage(), nil
}
