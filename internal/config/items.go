package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ItemType names the kind of a sidebar item.
type ItemType string

const (
	ItemDoc           ItemType = "doc"
	ItemCategory      ItemType = "category"
	ItemAutogenerated ItemType = "autogenerated"
)

// SidebarItem is one entry of a hand-written sidebar. A bare string is
// shorthand for a doc item with that id.
type SidebarItem struct {
	Type  ItemType      `yaml:"type,omitempty" toml:"type,omitempty"`
	ID    string        `yaml:"id,omitempty" toml:"id,omitempty"`
	Label string        `yaml:"label,omitempty" toml:"label,omitempty"`
	Dir   string        `yaml:"dir,omitempty" toml:"dir,omitempty"`
	Items []SidebarItem `yaml:"items,omitempty" toml:"items,omitempty"`
}

var (
	_ yaml.Unmarshaler = (*SidebarItem)(nil)
	_ toml.Unmarshaler = (*SidebarItem)(nil)
)

// UnmarshalYAML accepts the string shorthand.
func (it *SidebarItem) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*it = SidebarItem{Type: ItemDoc, ID: n.Value}
		return nil
	}
	type plain SidebarItem
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*it = SidebarItem(p)
	return nil
}

// UnmarshalTOML accepts the string shorthand and inline or array tables.
func (it *SidebarItem) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case string:
		*it = SidebarItem{Type: ItemDoc, ID: x}
		return nil
	case map[string]any:
		return it.fromTable(x)
	default:
		return fmt.Errorf("sidebar item: expected string or table, got %T", v)
	}
}

func (it *SidebarItem) fromTable(t map[string]any) error {
	*it = SidebarItem{}
	for key, val := range t {
		switch key {
		case "type", "id", "label", "dir":
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("sidebar item: %s must be a string, got %T", key, val)
			}
			switch key {
			case "type":
				it.Type = ItemType(s)
			case "id":
				it.ID = s
			case "label":
				it.Label = s
			case "dir":
				it.Dir = s
			}
		case "items":
			children, err := tomlItems(val)
			if err != nil {
				return err
			}
			it.Items = children
		default:
			return fmt.Errorf("sidebar item: unknown key %q", key)
		}
	}
	return nil
}

func tomlItems(v any) ([]SidebarItem, error) {
	var raw []any
	switch x := v.(type) {
	case []any:
		raw = x
	case []map[string]any:
		raw = make([]any, len(x))
		for i, t := range x {
			raw[i] = t
		}
	default:
		return nil, fmt.Errorf("sidebar item: items must be an array, got %T", v)
	}
	out := make([]SidebarItem, len(raw))
	for i, r := range raw {
		if err := out[i].UnmarshalTOML(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// inferType fills in a missing type: dir means autogenerated, nested
// items or a label without id mean category, anything else is a doc.
func (it *SidebarItem) inferType() {
	for i := range it.Items {
		it.Items[i].inferType()
	}
	if it.Type != "" {
		return
	}
	switch {
	case it.Dir != "":
		it.Type = ItemAutogenerated
	case len(it.Items) > 0 || (it.Label != "" && it.ID == ""):
		it.Type = ItemCategory
	default:
		it.Type = ItemDoc
	}
}
