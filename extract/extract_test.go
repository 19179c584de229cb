package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.pdf", "x")
	writeFile(t, dir, "a.PDF", "x")
	writeFile(t, dir, "c.txt", "x")
	writeFile(t, dir, "notes.docx", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))

	t.Run("default extensions", func(t *testing.T) {
		paths, err := ListDocuments(dir, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.PDF"),
			filepath.Join(dir, "b.pdf"),
			filepath.Join(dir, "c.txt"),
		}, paths)
	})

	t.Run("pdf only", func(t *testing.T) {
		paths, err := ListDocuments(dir, []string{"pdf"})
		require.NoError(t, err)
		assert.Len(t, paths, 2)
	})

	t.Run("missing folder", func(t *testing.T) {
		_, err := ListDocuments(filepath.Join(dir, "missing"), nil)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestPlainTextExtractor(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resume.txt", "Chief Officer with valid US visa")

	e := NewPlainTextExtractor()
	assert.Equal(t, "Chief Officer with valid US visa", e.ExtractText(path))
	assert.Empty(t, e.ExtractText(filepath.Join(dir, "missing.txt")))

	e.maxSize = 4
	assert.Empty(t, e.ExtractText(path))
}

func TestPDFExtractor_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "this is not a pdf")

	e := NewPDFExtractor()
	assert.Empty(t, e.ExtractText(path))
	assert.Empty(t, e.ExtractText(filepath.Join(dir, "missing.pdf")))
}

type stubExtractor string

func (s stubExtractor) ExtractText(string) string { return string(s) }

func TestRouter(t *testing.T) {
	r := NewRouter().
		Register("pdf", stubExtractor("from pdf")).
		Register(".TXT", stubExtractor("from txt"))

	assert.Equal(t, "from pdf", r.ExtractText("/x/a.PDF"))
	assert.Equal(t, "from txt", r.ExtractText("/x/a.txt"))
	assert.Empty(t, r.ExtractText("/x/a.docx"))
}

func TestNewDefault(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "resume.md", "# Master\n")
	assert.Equal(t, "# Master\n", NewDefault().ExtractText(path))
}

func TestRankFolder(t *testing.T) {
	tests := []struct {
		rank string
		want string
	}{
		{"Master", filepath.Join("/data", "Master")},
		{"Chief Officer", filepath.Join("/data", "Chief_Officer")},
		{"AB/OS", filepath.Join("/data", "AB-OS")},
		{"2nd Engineer / ETO", filepath.Join("/data", "2nd_Engineer_-_ETO")},
	}
	for _, tt := range tests {
		t.Run(tt.rank, func(t *testing.T) {
			assert.Equal(t, tt.want, RankFolder("/data", tt.rank))
		})
	}
}
