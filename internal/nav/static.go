package nav

import (
	"errors"
	"fmt"
)

// ItemKind selects the shape of a declarative sidebar item.
type ItemKind string

const (
	KindDoc           ItemKind = "doc"
	KindCategory      ItemKind = "category"
	KindAutogenerated ItemKind = "autogenerated"
)

// ItemSpec declares one entry of a hand-written sidebar.
type ItemSpec struct {
	Kind  ItemKind
	ID    string     // doc
	Label string     // doc (optional), category
	Dir   string     // autogenerated
	Items []ItemSpec // category
}

// Catalog supplies document metadata to static builds.
type Catalog interface {
	// Title returns the sidebar label of a document, if known.
	Title(id string) (string, bool)
	// Autogenerate returns the nodes for every document under dir.
	Autogenerate(dir string) ([]Node, error)
}

// ErrNoCatalog is returned when an autogenerated item is built without a catalog.
var ErrNoCatalog = errors.New("autogenerated items need a content catalog")

// BuildStatic builds a sidebar from declared items. Doc labels default to
// the catalog title; autogenerated items are spliced in place.
func BuildStatic(id string, items []ItemSpec, cat Catalog) (Sidebar, error) {
	b := staticBuilder{sidebar: id, catalog: cat}
	nodes, err := b.build(items, nil)
	if err != nil {
		return Sidebar{}, err
	}
	return Sidebar{ID: id, Items: nodes}, nil
}

type staticBuilder struct {
	sidebar string
	catalog Catalog
}

func (b staticBuilder) build(items []ItemSpec, trail []string) ([]Node, error) {
	out := make([]Node, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case KindDoc:
			if it.ID == "" {
				return nil, fmt.Errorf("sidebar %s: doc item without id at %s", b.sidebar, b.pos(trail, len(out)))
			}
			label := it.Label
			if label == "" && b.catalog != nil {
				label, _ = b.catalog.Title(it.ID)
			}
			out = append(out, DocRef{ID: it.ID, Label: label})
		case KindCategory:
			children, err := b.build(it.Items, append(trail[:len(trail):len(trail)], it.Label))
			if err != nil {
				return nil, err
			}
			if len(children) == 0 {
				return nil, &EmptyCategoryError{Sidebar: b.sidebar, Label: it.Label, Position: b.pos(trail, len(out))}
			}
			out = append(out, Category{Label: it.Label, Children: children})
		case KindAutogenerated:
			if b.catalog == nil {
				return nil, fmt.Errorf("sidebar %s: %w", b.sidebar, ErrNoCatalog)
			}
			nodes, err := b.catalog.Autogenerate(it.Dir)
			if err != nil {
				return nil, fmt.Errorf("sidebar %s: autogenerate %s: %w", b.sidebar, it.Dir, err)
			}
			out = append(out, nodes...)
		default:
			return nil, fmt.Errorf("sidebar %s: unknown item type %q at %s", b.sidebar, it.Kind, b.pos(trail, len(out)))
		}
	}
	return out, nil
}

func (b staticBuilder) pos(trail []string, index int) string {
	return Position{Sidebar: b.sidebar, Trail: trail, Index: index}.String()
}
