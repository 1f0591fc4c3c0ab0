package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// renderList renders one <ul> or <ol> and everything nested inside it as a
// single text block. Ordered items are numbered from 1 within each list;
// unordered items get a "*" marker. Nested lists are rendered one indent
// level deeper (two spaces per level) directly under their parent item.
// Items with no own text and no nested content are dropped.
func renderList(list *html.Node, depth int) string {
	indent := strings.Repeat("  ", depth)
	ordered := list.Data == "ol"
	var lines []string
	num := 0
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		own := collapseSpaces(itemOwnText(li))
		var nested []string
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				if s := renderList(c, depth+1); s != "" {
					nested = append(nested, s)
				}
			}
		}
		if own != "" {
			if ordered {
				num++
				lines = append(lines, fmt.Sprintf("%s%d. %s", indent, num, own))
			} else {
				lines = append(lines, indent+"* "+own)
			}
		}
		lines = append(lines, nested...)
	}
	return strings.Join(lines, "\n")
}

// itemOwnText returns the text of a list item with any nested list content
// stripped out, so an item's line never swallows its sublists.
func itemOwnText(li *html.Node) string {
	var b strings.Builder
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		textInto(&b, c)
	}
	return b.String()
}
