package nav

import (
	"encoding/json"
	"fmt"
)

type wireDoc struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	ClassName string `json:"className,omitempty"`
}

type wireCategory struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Items []any  `json:"items"`
}

// Encode converts nodes into the renderer's item shape:
// {type:"doc", id, label, className} and {type:"category", label, items}.
func Encode(nodes []Node) ([]any, error) {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case DocRef:
			out = append(out, wireDoc{Type: "doc", ID: v.ID, Label: v.Label, ClassName: v.ClassName()})
		case Category:
			items, err := Encode(v.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, wireCategory{Type: "category", Label: v.Label, Items: items})
		default:
			return nil, fmt.Errorf("unsupported sidebar node %T", n)
		}
	}
	return out, nil
}

// MarshalJSON encodes the sidebar as its item array.
func (s Sidebar) MarshalJSON() ([]byte, error) {
	items, err := Encode(s.Items)
	if err != nil {
		return nil, fmt.Errorf("sidebar %s: %w", s.ID, err)
	}
	return json.Marshal(items)
}
