package board

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"article": true, "div": true, "footer": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "header": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "section": true, "table": true,
	"tr": true, "ul": true, "br": true,
}

var skippedTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "noscript": true,
}

// textWriter flattens a node tree into lines. Block elements break lines;
// list items are bulleted and headings underlined.
type textWriter struct {
	w    *bufio.Writer
	line strings.Builder
	err  error
}

// WriteText prints the visible text of the page, one block per line.
func (d *Document) WriteText(w io.Writer) error {
	tw := &textWriter{w: bufio.NewWriter(w)}
	tw.node(d.root)
	tw.flush()
	if tw.err != nil {
		return tw.err
	}
	return tw.w.Flush()
}

func (tw *textWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		tw.line.WriteString(n.Data)
		tw.line.WriteByte(' ')
		return
	case html.ElementNode:
		if skippedTags[n.Data] {
			return
		}
		if _, hidden := attr(n, "hidden"); hidden {
			return
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		tw.flush()
		if n.Data == "li" {
			tw.line.WriteString("- ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tw.node(c)
	}
	if block {
		underline := n.Data == "h1" || n.Data == "h2"
		text := tw.flush()
		if underline && text != "" {
			tw.writeLine(strings.Repeat("=", len([]rune(text))))
		}
	}
}

// flush emits the pending line, collapsing whitespace, and returns it.
func (tw *textWriter) flush() string {
	text := strings.Join(strings.Fields(tw.line.String()), " ")
	tw.line.Reset()
	if text == "" || text == "-" {
		return ""
	}
	tw.writeLine(text)
	return text
}

func (tw *textWriter) writeLine(s string) {
	if tw.err != nil {
		return
	}
	if _, err := tw.w.WriteString(s); err != nil {
		tw.err = err
		return
	}
	if err := tw.w.WriteByte('\n'); err != nil {
		tw.err = err
	}
}
