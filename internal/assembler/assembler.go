// Package assembler turns ranked search results into the grounding context
// and prompt handed to a generator.
package assembler

import (
	"fmt"
	"strings"

	"docchat/internal/domain"
)

const (
	excerptLabel  = "Document excerpt %d:\n"
	contextHeader = "Document Context:\n"
	questionLabel = "\n\nQuestion: "
)

const promptTemplate = `You are a helpful assistant that answers questions based on the provided document context.

` + contextHeader + `%s` + questionLabel + `%s

Please provide a detailed answer based on the document context above. If the context doesn't contain enough information to answer the question, please say so.`

// Assemble concatenates result texts in rank order, each labelled with its
// rank, separated by a blank line. Nothing is truncated.
func Assemble(results []domain.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, excerptLabel, r.Rank)
		b.WriteString(r.Chunk.Text)
	}
	return b.String()
}

// Prompt renders the question together with an assembled context.
func Prompt(question, context string) string {
	return fmt.Sprintf(promptTemplate, context, strings.TrimSpace(question))
}

// Excerpts recovers the excerpt texts from a prompt built by Prompt, in
// rank order.
func Excerpts(prompt string) []string {
	start := strings.Index(prompt, contextHeader)
	end := strings.LastIndex(prompt, questionLabel)
	if start < 0 || end < start {
		return nil
	}
	body := prompt[start+len(contextHeader) : end]
	var out []string
	for _, part := range strings.Split(body, "\n\nDocument excerpt ") {
		if _, text, ok := strings.Cut(part, ":\n"); ok {
			out = append(out, text)
		}
	}
	return out
}
