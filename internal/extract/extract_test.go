package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

func TestPlainText(t *testing.T) {
	out, err := Text("notes.txt", []byte("  hello\nworld  \n"))
	require.NoError(t, err)
	require.Equal(t, "hello\nworld", out)
}

func TestInvalidUTF8(t *testing.T) {
	_, err := Text("blob.bin", []byte{0xff, 0xfe, 0x00})
	require.ErrorIs(t, err, domain.ErrExtraction)
}

func TestEmptyText(t *testing.T) {
	_, err := Text("empty.txt", []byte(" \n\t"))
	require.ErrorIs(t, err, domain.ErrEmptyIngestion)
	require.True(t, domain.IsIngestionInput(err))
}

func TestMarkdown(t *testing.T) {
	src := "# Title\n\nSome *emphasis* and a [link](http://x).\n\n```go\nfmt.Println(1)\n```\n\n- item one\n- item two\n"
	out, err := Text("README.md", []byte(src))
	require.NoError(t, err)
	words := strings.Fields(out)
	require.Equal(t, []string{"Title", "Some", "emphasis", "and", "a", "link.", "fmt.Println(1)", "item", "one", "item", "two"}, words)
	require.NotContains(t, out, "#")
	require.NotContains(t, out, "http://x")
}

func TestMalformedPDF(t *testing.T) {
	_, err := Text("broken.pdf", []byte("%PDF-1.4 definitely not a pdf"))
	require.ErrorIs(t, err, domain.ErrExtraction)
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("one two three"), 0o644))

	doc, err := File(path)
	require.NoError(t, err)
	require.Equal(t, "doc.txt", doc.Name)
	require.Equal(t, "one two three", doc.Text)

	_, err = File(filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, domain.ErrExtraction)
}
