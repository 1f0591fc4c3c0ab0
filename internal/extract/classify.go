package extract

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// Kind classifies a tabular region of the document.
type Kind int

const (
	// KindIgnore marks tables that carry no recognized class and are left in place.
	KindIgnore Kind = iota
	// KindInfo marks key/value summary boxes such as biography fact boxes.
	KindInfo
	// KindGeneral marks every other classed data table.
	KindGeneral
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindGeneral:
		return "general"
	default:
		return "ignore"
	}
}

// MarshalJSON stores the kind by name so persisted grids stay readable.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "info":
		*k = KindInfo
	case "general":
		*k = KindGeneral
	default:
		*k = KindIgnore
	}
	return nil
}

// classRule maps a predicate over an element's class tokens to a table kind.
// Rules are evaluated in order; the first match wins.
type classRule struct {
	kind  Kind
	match func(classes []string) bool
}

var tableRules = []classRule{
	{KindInfo, func(classes []string) bool {
		for _, c := range classes {
			if strings.Contains(c, "infobox") {
				return true
			}
		}
		return false
	}},
	{KindGeneral, func(classes []string) bool {
		for _, c := range classes {
			if c == "wikitable" {
				return true
			}
		}
		return false
	}},
}

// Classify decides whether a node is an info table, a general table, or
// neither. Only <table> elements are ever classified.
func Classify(n *html.Node) Kind {
	if n == nil || n.Type != html.ElementNode || n.Data != "table" {
		return KindIgnore
	}
	classes := strings.Fields(attrVal(n, "class"))
	for _, r := range tableRules {
		if r.match(classes) {
			return r.kind
		}
	}
	return KindIgnore
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
