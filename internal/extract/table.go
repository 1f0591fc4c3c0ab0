package extract

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// ErrNoRows is returned when a classified table yields no usable rows. The
// caller skips such tables without aborting extraction.
var ErrNoRows = errors.New("table has no rows")

// Grid is the parsed rows-and-columns content of one table. Header holds the
// leading header row when the table distinguishes one; Rows hold everything
// else. Cell text is visible text with whitespace collapsed.
type Grid struct {
	Kind   Kind       `json:"kind"`
	Header []string   `json:"header,omitempty"`
	Rows   [][]string `json:"rows"`
}

// Table pairs a parsed grid with its placeholder key (e.g. "table_3").
type Table struct {
	Key  string
	Grid Grid
}

type rawCell struct {
	text    string
	rowSpan int
	colSpan int
	header  bool
}

type rawRow struct {
	cells  []rawCell
	header bool
}

// parseGrid converts a <table> subtree into a Grid, expanding colspan and
// rowspan so every row carries a cell per covered column. The header is taken
// from <thead> rows, or from a leading row consisting entirely of <th> cells.
func parseGrid(tableNode *html.Node, kind Kind) (Grid, error) {
	var raw []rawRow
	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead":
			raw = append(raw, sectionRows(c, true)...)
		case "tbody", "tfoot":
			raw = append(raw, sectionRows(c, false)...)
		case "tr":
			if row := parseRow(c, false); len(row.cells) > 0 {
				raw = append(raw, row)
			}
		}
	}
	if len(raw) == 0 {
		return Grid{}, ErrNoRows
	}

	// No explicit thead: a leading all-<th> row serves as the header.
	if !raw[0].header {
		allTH := true
		for _, cell := range raw[0].cells {
			if !cell.header {
				allTH = false
				break
			}
		}
		raw[0].header = allTH
	}

	expanded := expandSpans(raw)
	g := Grid{Kind: kind}
	for i, row := range expanded {
		if i == 0 && raw[0].header {
			g.Header = row
			continue
		}
		g.Rows = append(g.Rows, row)
	}
	if g.Header == nil && len(g.Rows) == 0 {
		return Grid{}, ErrNoRows
	}
	return g, nil
}

func sectionRows(section *html.Node, header bool) []rawRow {
	var rows []rawRow
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "tr" {
			if row := parseRow(c, header); len(row.cells) > 0 {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func parseRow(tr *html.Node, header bool) rawRow {
	row := rawRow{header: header}
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cell := rawCell{
			text:    collapseSpaces(nodeText(c)),
			rowSpan: 1,
			colSpan: 1,
			header:  header || c.Data == "th",
		}
		for _, attr := range c.Attr {
			switch attr.Key {
			case "rowspan":
				fmt.Sscanf(attr.Val, "%d", &cell.rowSpan)
			case "colspan":
				fmt.Sscanf(attr.Val, "%d", &cell.colSpan)
			}
		}
		if cell.rowSpan < 1 {
			cell.rowSpan = 1
		}
		if cell.colSpan < 1 {
			cell.colSpan = 1
		}
		row.cells = append(row.cells, cell)
	}
	return row
}

// expandSpans flattens row/column spans by repeating the spanning cell's text
// into every grid position it covers.
func expandSpans(raw []rawRow) [][]string {
	type spill struct {
		text string
		left int
	}
	carry := map[int]*spill{}
	out := make([][]string, 0, len(raw))
	for _, row := range raw {
		cells := make([]string, 0, len(row.cells))
		col, next := 0, 0
		for next < len(row.cells) || carry[col] != nil {
			if s := carry[col]; s != nil {
				cells = append(cells, s.text)
				s.left--
				if s.left == 0 {
					delete(carry, col)
				}
				col++
				continue
			}
			cell := row.cells[next]
			next++
			for i := 0; i < cell.colSpan; i++ {
				if cell.rowSpan > 1 {
					carry[col] = &spill{text: cell.text, left: cell.rowSpan - 1}
				}
				cells = append(cells, cell.text)
				col++
			}
		}
		out = append(out, cells)
	}
	return out
}
