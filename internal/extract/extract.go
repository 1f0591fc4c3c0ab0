package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Result holds the linearized prose of one article together with its parsed
// tables. Tables preserves placeholder numbering order: all info tables come
// first, then all general tables, each group in document order. A table that
// failed to parse keeps its number but is absent from Tables, so key
// sequences can have gaps.
type Result struct {
	Prose  string
	Tables []Table
}

// Lookup returns the parsed grid stored under key.
func (r *Result) Lookup(key string) (Grid, bool) {
	for _, t := range r.Tables {
		if t.Key == key {
			return t.Grid, true
		}
	}
	return Grid{}, false
}

// Extract linearizes rendered article markup into prose blocks and pulls out
// its tabular regions. Info tables are numbered before general tables even
// when a general table appears earlier in the document; this ordering is a
// fixed output contract. Each successfully parsed table is replaced in the
// prose by a standalone paragraph holding its {{table_N}} token; tables whose
// grid cannot be parsed are dropped without a token and without renumbering
// the rest. The function performs no I/O and is deterministic.
func Extract(markup []byte) (*Result, error) {
	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	// Two-pass discovery fixes the global numbering: info tables first.
	discovered := findTables(root, KindInfo)
	discovered = append(discovered, findTables(root, KindGeneral)...)

	res := &Result{}
	for i, node := range discovered {
		n := i + 1
		grid, err := parseGrid(node, Classify(node))
		if err != nil {
			// Skip just this table; its number stays consumed.
			continue
		}
		res.Tables = append(res.Tables, Table{Key: Key(n), Grid: grid})
		replaceWithParagraph(node, Token(n))
	}

	pruneDecorations(root)

	var blocks []string
	collectBlocks(root, &blocks)
	res.Prose = strings.Join(blocks, "\n\n")
	return res, nil
}

// findTables collects every table of the given kind in document order.
func findTables(n *html.Node, kind Kind) []*html.Node {
	var out []*html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if Classify(cur) == kind {
			out = append(out, cur)
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(n)
	return out
}

// replaceWithParagraph swaps a table node for a <p> whose entire text is the
// placeholder token, keeping the table's position among its siblings.
func replaceWithParagraph(table *html.Node, token string) {
	parent := table.Parent
	if parent == nil {
		return
	}
	p := &html.Node{Type: html.ElementNode, Data: "p"}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: token})
	parent.InsertBefore(p, table)
	parent.RemoveChild(table)
}

// pruneDecorations removes elements that contribute no article text:
// footnote/reference markers, hatnotes, navigation boxes, and section edit
// affordances.
func pruneDecorations(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if isDecoration(c) {
			n.RemoveChild(c)
			continue
		}
		pruneDecorations(c)
	}
}

func isDecoration(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.Data == "sup" {
		return true
	}
	for _, class := range strings.Fields(attrVal(n, "class")) {
		switch {
		case class == "hatnote", class == "mw-editsection":
			return true
		case strings.HasPrefix(class, "navbox"):
			return true
		}
	}
	return false
}

// collectBlocks walks the working document and emits one text block per
// heading, paragraph, and top-level list. Lists are rendered recursively and
// never re-visited through their nested lists; empty blocks are dropped.
func collectBlocks(n *html.Node, blocks *[]string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := collapseSpaces(nodeText(n)); text != "" {
				level := int(n.Data[1] - '0')
				*blocks = append(*blocks, strings.Repeat("#", level)+" "+text)
			}
			return
		case "p":
			if text := collapseSpaces(nodeText(n)); text != "" {
				*blocks = append(*blocks, text)
			}
			return
		case "ul", "ol":
			if text := renderList(n, 0); text != "" {
				*blocks = append(*blocks, text)
			}
			return
		case "script", "style", "noscript":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectBlocks(c, blocks)
	}
}

// nodeText returns the visible text of a subtree. Script-like content is
// skipped and <br> becomes a single space.
func nodeText(n *html.Node) string {
	var b strings.Builder
	textInto(&b, n)
	return b.String()
}

func textInto(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		case "br":
			b.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textInto(b, c)
	}
}

// collapseSpaces trims s and squeezes internal whitespace runs to single
// spaces.
func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range strings.TrimSpace(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
