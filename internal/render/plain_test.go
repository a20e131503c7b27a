// ABOUTME: Tests for markdown to terminal text rendering
// ABOUTME: Covers inline markup, links, lists, quotes and code blocks

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "blank", in: "   \n", want: ""},
		{name: "plain text", in: "hola", want: "hola"},
		{name: "emphasis", in: "**bold** and _em_", want: "bold and em"},
		{name: "soft break", in: "line one\nline two", want: "line one\nline two"},
		{name: "paragraphs", in: "first\n\nsecond", want: "first\n\nsecond"},
		{name: "heading", in: "# Title\n\nbody", want: "Title\n\nbody"},
		{name: "code span", in: "use `x := 1` here", want: "use x := 1 here"},
		{name: "fenced code", in: "```go\nfmt.Println(1)\nreturn\n```", want: "fmt.Println(1)\nreturn"},
		{name: "link", in: "see [docs](https://go.dev)", want: "see docs (https://go.dev)"},
		{name: "autolink", in: "<https://go.dev>", want: "https://go.dev"},
		{name: "bullet list", in: "- a\n- b", want: "- a\n- b"},
		{name: "ordered list", in: "1. a\n2. b", want: "1. a\n2. b"},
		{name: "ordered list start", in: "3. a\n4. b", want: "3. a\n4. b"},
		{name: "nested list", in: "- a\n  - b", want: "- a\n  - b"},
		{name: "quote", in: "> quoted", want: "> quoted"},
		{name: "thematic break", in: "a\n\n---\n\nb", want: "a\n\n---\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plain(tt.in))
		})
	}
}

func TestPlain_BotReply(t *testing.T) {
	in := "Un **puntero** guarda una dirección:\n\n```go\np := &x\n```\n\nMás en [la guía](https://go.dev/tour)."
	want := "Un puntero guarda una dirección:\n\np := &x\n\nMás en la guía (https://go.dev/tour)."
	assert.Equal(t, want, Plain(in))
}
