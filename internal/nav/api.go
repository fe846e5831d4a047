package nav

import (
	"strings"

	"git.home.luguber.info/inful/sidebargen/internal/grouping"
)

// APIOptions configures BuildAPI.
type APIOptions struct {
	SidebarID string
	// DocPrefix is joined in front of every operation id, e.g.
	// "developers/api-reference".
	DocPrefix string
	// Overview, when set, is emitted first and outside any category.
	Overview *DocRef
	// TagLabels overrides category labels per tag. Unlisted tags keep
	// their name as written.
	TagLabels map[string]string
}

// BuildAPI turns tag groups into a sidebar: one category per group in
// group order, one DocRef per operation in operation order.
func BuildAPI(opts APIOptions, groups []grouping.TagGroup) (Sidebar, error) {
	s := Sidebar{ID: opts.SidebarID}
	if opts.Overview != nil {
		s.Items = append(s.Items, *opts.Overview)
	}
	for _, g := range groups {
		label := g.Label()
		if override, ok := opts.TagLabels[label]; ok && override != "" {
			label = override
		}
		if len(g.Operations) == 0 {
			return Sidebar{}, &EmptyCategoryError{
				Sidebar:  opts.SidebarID,
				Label:    label,
				Position: Position{Sidebar: opts.SidebarID, Index: len(s.Items)}.String(),
			}
		}
		cat := Category{Label: label, Children: make([]Node, 0, len(g.Operations))}
		for _, op := range g.Operations {
			cat.Children = append(cat.Children, DocRef{
				ID:          JoinID(opts.DocPrefix, op.ID),
				Label:       op.Label(),
				MethodBadge: op.Method.Badge(),
			})
		}
		s.Items = append(s.Items, cat)
	}
	return s, nil
}

// JoinID prefixes id with a slash-separated document directory.
func JoinID(prefix, id string) string {
	prefix = strings.Trim(prefix, "/")
	id = strings.TrimPrefix(id, "/")
	if prefix == "" {
		return id
	}
	return prefix + "/" + id
}
