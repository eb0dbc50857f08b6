package storage

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPDF(pages int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages),
	}
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestInspectPDF(t *testing.T) {
	doc := buildPDF(2)
	pages, err := InspectPDF(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}

func TestInspectPDFRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"text":          []byte("definitely not a pdf, just some notes about a book"),
		"header only":   []byte("%PDF-1.4\n"),
		"truncated":     buildPDF(1)[:120],
		"png signature": {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := InspectPDF(bytes.NewReader(data), int64(len(data)))
			assert.ErrorIs(t, err, ErrInvalidPDF)
		})
	}
}
