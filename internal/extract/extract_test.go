package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtract_EndToEnd(t *testing.T) {
	markup := `<div>
      <h1>Title</h1>
      <p>Some text.</p>
      <table class="wikitable">
        <tr><th>A</th><th>B</th></tr>
        <tr><td>1</td><td>2</td></tr>
      </table>
      <ul>
        <li>a</li>
        <li>b</li>
      </ul>
    </div>`

	res, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# Title\n\nSome text.\n\n{{table_1}}\n\n* a\n* b"
	if res.Prose != want {
		t.Fatalf("unexpected prose:\n%q\nwant:\n%q", res.Prose, want)
	}
	if len(res.Tables) != 1 || res.Tables[0].Key != "table_1" {
		t.Fatalf("expected exactly table_1, got %+v", res.Tables)
	}
	g, ok := res.Lookup("table_1")
	if !ok {
		t.Fatalf("lookup table_1 failed")
	}
	if !reflect.DeepEqual(g.Header, []string{"A", "B"}) {
		t.Fatalf("unexpected header: %v", g.Header)
	}
	if !reflect.DeepEqual(g.Rows, [][]string{{"1", "2"}}) {
		t.Fatalf("unexpected rows: %v", g.Rows)
	}
}

func TestExtract_InfoTablesNumberedBeforeGeneral(t *testing.T) {
	// The general table appears first in the document but must be numbered
	// after every info table.
	markup := `<div>
      <table class="wikitable"><tr><td>general</td></tr></table>
      <p>middle</p>
      <table class="infobox vcard"><tr><th>Born</th><td>1912</td></tr></table>
    </div>`

	res, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(res.Tables))
	}
	if res.Tables[0].Key != "table_1" || res.Tables[0].Grid.Kind != KindInfo {
		t.Fatalf("expected table_1 to be the info table, got %q kind %v", res.Tables[0].Key, res.Tables[0].Grid.Kind)
	}
	if res.Tables[1].Key != "table_2" || res.Tables[1].Grid.Kind != KindGeneral {
		t.Fatalf("expected table_2 to be the general table, got %q kind %v", res.Tables[1].Key, res.Tables[1].Grid.Kind)
	}
	// Document position is preserved even though numbering is reordered.
	want := "{{table_2}}\n\nmiddle\n\n{{table_1}}"
	if res.Prose != want {
		t.Fatalf("unexpected prose: %q want %q", res.Prose, want)
	}
}

func TestExtract_DenseNumberingInDocumentOrder(t *testing.T) {
	markup := `<div>
      <table class="infobox"><tr><td>first</td></tr></table>
      <table class="infobox"><tr><td>second</td></tr></table>
      <table class="infobox"><tr><td>third</td></tr></table>
    </div>`

	res, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantKeys := []string{"table_1", "table_2", "table_3"}
	wantCells := []string{"first", "second", "third"}
	if len(res.Tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(res.Tables))
	}
	for i, w := range wantKeys {
		if res.Tables[i].Key != w {
			t.Fatalf("expected key %q at %d, got %q", w, i, res.Tables[i].Key)
		}
		if res.Tables[i].Grid.Rows[0][0] != wantCells[i] {
			t.Fatalf("tables out of document order: %+v", res.Tables)
		}
	}
}

func TestExtract_UnparseableTableKeepsItsNumber(t *testing.T) {
	// The empty middle table cannot be parsed: it is skipped, leaves no
	// placeholder paragraph, and the third table keeps number 3.
	markup := `<div>
      <table class="wikitable"><tr><td>one</td></tr></table>
      <table class="wikitable"></table>
      <table class="wikitable"><tr><td>three</td></tr></table>
    </div>`

	res, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Tables) != 2 {
		t.Fatalf("expected 2 parsed tables, got %d", len(res.Tables))
	}
	if res.Tables[0].Key != "table_1" || res.Tables[1].Key != "table_3" {
		t.Fatalf("expected keys table_1 and table_3, got %q and %q", res.Tables[0].Key, res.Tables[1].Key)
	}
	if strings.Contains(res.Prose, "{{table_2}}") {
		t.Fatalf("prose contains a token for the unparsed table: %q", res.Prose)
	}
	// Every token that appears resolves to a stored table.
	for _, tok := range []string{"{{table_1}}", "{{table_3}}"} {
		if !strings.Contains(res.Prose, tok) {
			t.Fatalf("missing token %q in prose %q", tok, res.Prose)
		}
	}
}

func TestExtract_RemovesDecorations(t *testing.T) {
	markup := `<div>
      <div class="hatnote">For other uses, see Title (disambiguation).</div>
      <h2>History<span class="mw-editsection">[edit]</span></h2>
      <p>Fact.<sup>[1]</sup></p>
      <div class="navbox">Related articles</div>
    </div>`

	res, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "## History\n\nFact."
	if res.Prose != want {
		t.Fatalf("unexpected prose: %q want %q", res.Prose, want)
	}
}

func TestExtract_SkipsEmptyBlocks(t *testing.T) {
	markup := `<div><h2>  </h2><p></p><p>kept</p><ul><li>  </li></ul></div>`

	res, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prose != "kept" {
		t.Fatalf("expected only the non-empty paragraph, got %q", res.Prose)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	markup := `<div>
      <h1>Page</h1>
      <table class="infobox"><tr><th>Key</th><td>Value</td></tr></table>
      <p>Body text.</p>
      <ol><li>one</li><li>two<ul><li>sub</li></ul></li></ol>
    </div>`

	first, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction is not deterministic:\n%+v\nvs\n%+v", first, second)
	}
}

func TestExtract_PlaceholderParagraphStandsAlone(t *testing.T) {
	markup := `<div>
      <p>before</p>
      <table class="wikitable"><tr><td>x</td></tr></table>
      <p>after</p>
    </div>`

	res, err := Extract([]byte(markup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blocks := strings.Split(res.Prose, "\n\n")
	if len(blocks) != 3 || blocks[1] != "{{table_1}}" {
		t.Fatalf("expected the token as its own middle block, got %q", blocks)
	}
	if !IsToken(blocks[1]) {
		t.Fatalf("block %q does not match the token format", blocks[1])
	}
}

func TestIsToken(t *testing.T) {
	cases := []struct {
		tok  string
		want bool
	}{
		{"{{table_1}}", true},
		{"{{table_42}}", true},
		{"{{table_0}}", false},
		{"{{table_01}}", false},
		{"{{table_}}", false},
		{"{{ table_1 }}", false},
		{"x {{table_1}}", false},
		{"{{table_1}} y", false},
	}
	for _, tc := range cases {
		if got := IsToken(tc.tok); got != tc.want {
			t.Fatalf("IsToken(%q) = %v, want %v", tc.tok, got, tc.want)
		}
	}
}
