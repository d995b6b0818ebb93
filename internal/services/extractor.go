package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/text/unicode/norm"
)

// TextExtractor turns an uploaded document into the plain text handed to the parser
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// PlainTextExtractor reads text files as UTF-8. Encoding checks are left to the parser.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	return normalizeExtracted(string(data)), nil
}

// PDFExtractor reads the text layer of a PDF with MuPDF, one page after another
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	pages := doc.NumPage()
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to read PDF page %d: %w", i+1, err)
		}
		sb.WriteString(text)
		if i < pages-1 {
			sb.WriteString("\n")
		}
	}

	return normalizeExtracted(sb.String()), nil
}

const byteOrderMark = "\uFEFF"

// normalizeExtracted drops a leading BOM and composes valid UTF-8 to NFC.
// Invalid input is returned as-is for the parser to reject.
func normalizeExtracted(text string) string {
	text = strings.TrimPrefix(text, byteOrderMark)
	if !utf8.ValidString(text) {
		return text
	}
	return norm.NFC.String(text)
}

// file type recorded on the import job for pasted text
const fileTypeText = "text"

var extractors = map[string]TextExtractor{
	".txt":  PlainTextExtractor{},
	".text": PlainTextExtractor{},
	".pdf":  PDFExtractor{},
}

// ExtractorFor picks an extractor from the file extension and returns the file type recorded for it
func ExtractorFor(filename string) (TextExtractor, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	extractor, ok := extractors[ext]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	return extractor, strings.TrimPrefix(ext, "."), nil
}

// readLimited reads at most limit bytes and fails if the reader holds more
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, limit)
	}
	return data, nil
}
