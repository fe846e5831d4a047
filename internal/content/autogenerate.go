package content

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sidebargen/internal/nav"
)

// Autogenerate returns sidebar nodes for every document under dir. Nested
// directories become categories labeled after the directory name. Entries
// are ordered by sidebar position (unpositioned last), then by id; a
// category takes the smallest position of its direct documents. A missing
// or empty directory yields no nodes.
func (ix *Index) Autogenerate(dir string) ([]nav.Node, error) {
	dir = strings.Trim(path.Clean("/"+filepath.ToSlash(dir)), "/")

	root := &dirNode{path: dir}
	for _, id := range ix.order {
		d := ix.docs[id]
		rest, ok := within(d.Dir, dir)
		if !ok {
			continue
		}
		var parts []string
		if rest != "" {
			parts = strings.Split(rest, "/")
		}
		root.insert(parts, d)
	}
	return root.nodes(), nil
}

func within(docDir, dir string) (string, bool) {
	switch {
	case dir == "":
		return docDir, true
	case docDir == dir:
		return "", true
	case strings.HasPrefix(docDir, dir+"/"):
		return docDir[len(dir)+1:], true
	default:
		return "", false
	}
}

type dirNode struct {
	name    string
	path    string
	docs    []*Document
	subdirs map[string]*dirNode
}

func (n *dirNode) insert(parts []string, d *Document) {
	if len(parts) == 0 {
		n.docs = append(n.docs, d)
		return
	}
	if n.subdirs == nil {
		n.subdirs = make(map[string]*dirNode)
	}
	child, ok := n.subdirs[parts[0]]
	if !ok {
		child = &dirNode{name: parts[0], path: path.Join(n.path, parts[0])}
		n.subdirs[parts[0]] = child
	}
	child.insert(parts[1:], d)
}

type entry struct {
	key  string
	pos  *float64
	node nav.Node
}

func (n *dirNode) nodes() []nav.Node {
	entries := make([]entry, 0, len(n.docs)+len(n.subdirs))
	for _, d := range n.docs {
		entries = append(entries, entry{key: d.ID, pos: d.Position, node: nav.DocRef{ID: d.ID, Label: d.Label}})
	}
	for _, sub := range n.subdirs {
		children := sub.nodes()
		if len(children) == 0 {
			continue
		}
		entries = append(entries, entry{
			key:  sub.path + "/",
			pos:  sub.position(),
			node: nav.Category{Label: humanize(sub.name), Children: children},
		})
	}

	slices.SortFunc(entries, func(a, b entry) int {
		if c := comparePosition(a.pos, b.pos); c != 0 {
			return c
		}
		return strings.Compare(a.key, b.key)
	})

	out := make([]nav.Node, len(entries))
	for i, e := range entries {
		out[i] = e.node
	}
	return out
}

func (n *dirNode) position() *float64 {
	var best *float64
	for _, d := range n.docs {
		if d.Position != nil && (best == nil || *d.Position < *best) {
			best = d.Position
		}
	}
	return best
}
