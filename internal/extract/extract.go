// Package extract turns uploaded files into plain document text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"docchat/internal/domain"
)

// File reads path and extracts its text.
func File(path string) (domain.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	name := filepath.Base(path)
	txt, err := Text(name, raw)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{Name: name, Text: txt}, nil
}

// Text extracts plain text from raw according to the extension of name:
// PDF, Markdown, or anything else as UTF-8 text.
func Text(name string, raw []byte) (string, error) {
	var (
		out string
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		out, err = pdfText(raw)
	case ".md", ".markdown":
		out = markdownText(raw)
	default:
		if !utf8.Valid(raw) {
			err = fmt.Errorf("%s is not valid UTF-8 text", name)
		}
		out = string(raw)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: no text extracted from %s", domain.ErrEmptyIngestion, name)
	}
	return out, nil
}

func pdfText(raw []byte) (s string, err error) {
	// the pdf package panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func markdownText(raw []byte) string {
	reader := text.NewReader(raw)
	doc := goldmark.New().Parser().Parse(reader)
	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(raw))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.String:
			sb.Write(node.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(raw))
			}
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
