package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxFileSize caps the size of documents read into memory.
const DefaultMaxFileSize = 200 << 20

// DefaultExtensions are the document types indexed when none are configured.
var DefaultExtensions = []string{".pdf", ".txt"}

// TextExtractor returns the plain text of a document.
type TextExtractor interface {
	// ExtractText returns the document text, or "" when nothing could be read.
	ExtractText(path string) string
}

// PDFExtractor extracts text from PDF files page by page.
type PDFExtractor struct {
	maxSize int64
	logger  *slog.Logger
}

var _ TextExtractor = (*PDFExtractor)(nil)

// NewPDFExtractor creates a PDF extractor with the default size cap.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		maxSize: DefaultMaxFileSize,
		logger:  slog.Default().With("component", "pdf-extractor"),
	}
}

// ExtractText returns the text of every readable page joined with "\n".
func (e *PDFExtractor) ExtractText(path string) (text string) {
	// The PDF parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf parser panicked", "path", path, "panic", fmt.Sprint(r))
			text = ""
		}
	}()

	content, err := readBounded(path, e.maxSize)
	if err != nil {
		e.logger.Warn("failed to read pdf", "path", path, "err", err)
		return ""
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		e.logger.Warn("failed to open pdf", "path", path, "err", err)
		return ""
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			e.logger.Debug("failed to extract page text", "path", path, "page", i, "err", err)
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n")
}

// PlainTextExtractor reads text files as-is.
type PlainTextExtractor struct {
	maxSize int64
	logger  *slog.Logger
}

var _ TextExtractor = (*PlainTextExtractor)(nil)

// NewPlainTextExtractor creates a plain text extractor with the default size cap.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{
		maxSize: DefaultMaxFileSize,
		logger:  slog.Default().With("component", "text-extractor"),
	}
}

// ExtractText returns the file contents.
func (e *PlainTextExtractor) ExtractText(path string) string {
	content, err := readBounded(path, e.maxSize)
	if err != nil {
		e.logger.Warn("failed to read text file", "path", path, "err", err)
		return ""
	}
	return string(content)
}

// Router dispatches to an extractor by file extension.
type Router struct {
	byExt map[string]TextExtractor
}

var _ TextExtractor = (*Router)(nil)

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{byExt: make(map[string]TextExtractor)}
}

// NewDefault returns a router handling .pdf, .txt and .md files.
func NewDefault() *Router {
	text := NewPlainTextExtractor()
	return NewRouter().
		Register(".pdf", NewPDFExtractor()).
		Register(".txt", text).
		Register(".md", text)
}

// Register maps an extension (with or without the leading dot) to an extractor.
func (r *Router) Register(ext string, extractor TextExtractor) *Router {
	r.byExt[normalizeExt(ext)] = extractor
	return r
}

// ExtractText uses the extractor registered for the path's extension.
func (r *Router) ExtractText(path string) string {
	extractor, ok := r.byExt[normalizeExt(filepath.Ext(path))]
	if !ok {
		return ""
	}
	return extractor.ExtractText(path)
}

// ListDocuments returns the regular files in folder whose extension is in
// extensions, sorted by name. Subdirectories are not searched.
func ListDocuments(folder string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[normalizeExt(ext)] = true
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	// ReadDir returns entries sorted by filename
	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if wanted[normalizeExt(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(folder, entry.Name()))
		}
	}
	return paths, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func readBounded(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("file too large: %d bytes", info.Size())
	}
	return os.ReadFile(path)
}

var rankFolderReplacer = strings.NewReplacer(" ", "_", "/", "-")

// RankFolder returns the folder holding the documents of a rank under root.
// Spaces in the rank become underscores and slashes become dashes.
func RankFolder(root, rank string) string {
	return filepath.Join(root, rankFolderReplacer.Replace(rank))
}
