package nav

import (
	"fmt"
	"slices"
	"strings"
)

// Node is a sidebar entry: a DocRef leaf or a Category.
type Node interface {
	node()
}

// DocRef points at one content document.
type DocRef struct {
	ID          string
	Label       string
	MethodBadge string // lower-case HTTP method for API operations, else empty
}

// ClassName is the presentation hint emitted for the renderer.
func (d DocRef) ClassName() string {
	if d.MethodBadge == "" {
		return ""
	}
	return "api-method " + d.MethodBadge
}

// Category groups child nodes under a label. It must not be empty.
type Category struct {
	Label    string
	Children []Node
}

func (DocRef) node()   {}
func (Category) node() {}

// Sidebar is one named navigation tree.
type Sidebar struct {
	ID    string
	Items []Node
}

// Position locates a node: the sidebar, the labels of the enclosing
// categories, and the index within the parent.
type Position struct {
	Sidebar string
	Trail   []string
	Index   int
}

func (p Position) String() string {
	var b strings.Builder
	b.WriteString(p.Sidebar)
	for _, label := range p.Trail {
		b.WriteByte('/')
		b.WriteString(label)
	}
	fmt.Fprintf(&b, "[%d]", p.Index)
	return b.String()
}

// Walk visits every node of s depth-first in order. Returning a non-nil
// error from fn stops the walk.
func Walk(s Sidebar, fn func(Position, Node) error) error {
	return walk(s.ID, nil, s.Items, fn)
}

func walk(sidebar string, trail []string, nodes []Node, fn func(Position, Node) error) error {
	for i, n := range nodes {
		if err := fn(Position{Sidebar: sidebar, Trail: trail, Index: i}, n); err != nil {
			return err
		}
		if c, ok := n.(Category); ok {
			if err := walk(sidebar, append(slices.Clip(trail), c.Label), c.Children, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// LocatedDoc is a DocRef with its position.
type LocatedDoc struct {
	Ref      DocRef
	Position Position
}

// Docs returns every DocRef of s in walk order.
func Docs(s Sidebar) []LocatedDoc {
	var out []LocatedDoc
	_ = Walk(s, func(pos Position, n Node) error {
		if d, ok := n.(DocRef); ok {
			out = append(out, LocatedDoc{Ref: d, Position: pos})
		}
		return nil
	})
	return out
}

// CheckCategories returns an EmptyCategoryError for the first category
// without children.
func CheckCategories(s Sidebar) error {
	return Walk(s, func(pos Position, n Node) error {
		if c, ok := n.(Category); ok && len(c.Children) == 0 {
			return &EmptyCategoryError{Sidebar: s.ID, Label: c.Label, Position: pos.String()}
		}
		return nil
	})
}
