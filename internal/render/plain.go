// ABOUTME: Markdown to terminal text conversion for chat messages
// ABOUTME: Walks the goldmark AST and keeps structure (lists, quotes, code) as plain text

package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var mdParser parser.Parser = goldmark.New().Parser()

// Plain renders markdown as plain text. Emphasis markers are dropped, links
// keep their destination, lists and block quotes keep their prefixes.
func Plain(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	src := []byte(md)
	doc := mdParser.Parse(text.NewReader(src))
	r := renderer{src: src}
	return strings.TrimRight(r.container(doc, "\n\n"), "\n ")
}

type renderer struct {
	src []byte
}

// container renders the block children of n joined by sep.
func (r renderer) container(n ast.Node, sep string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s := r.block(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func (r renderer) block(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return r.inline(n)
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		return strings.TrimRight(r.lines(n), "\n")
	case *ast.ThematicBreak:
		return "---"
	case *ast.Blockquote:
		return prefixLines(r.container(n, "\n\n"), "> ", "> ")
	case *ast.List:
		return r.list(n)
	default:
		return r.container(n, "\n\n")
	}
}

func (r renderer) list(n *ast.List) string {
	sep := "\n\n"
	if n.IsTight {
		sep = "\n"
	}

	var items []string
	i := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "- "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n.Start+i)
		}
		body := r.container(c, sep)
		items = append(items, prefixLines(body, marker, strings.Repeat(" ", len(marker))))
		i++
	}
	return strings.Join(items, sep)
}

func (r renderer) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(r.src))
	}
	return b.String()
}

func (r renderer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		r.writeInline(&b, c)
	}
	return b.String()
}

func (r renderer) writeInline(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			b.WriteByte('\n')
		}
	case *ast.String:
		b.Write(n.Value)
	case *ast.AutoLink:
		b.Write(n.URL(r.src))
	case *ast.Link:
		label := r.inline(n)
		b.WriteString(label)
		if dest := string(n.Destination); dest != "" && dest != label {
			fmt.Fprintf(b, " (%s)", dest)
		}
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(r.src))
		}
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.writeInline(b, c)
		}
	}
}

// prefixLines puts first before the first line and rest before the others.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = first + line
		case line == "":
			lines[i] = strings.TrimRight(rest, " ")
		default:
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}
