// Package grouping partitions operations into tag groups.
package grouping

import "git.home.luguber.info/inful/sidebargen/internal/openapi"

// UntaggedLabel names the group that collects operations without a tag.
const UntaggedLabel = "UNTAGGED"

// TagGroup is an ordered run of operations sharing a tag.
type TagGroup struct {
	Tag        string
	Untagged   bool
	Operations []openapi.Operation
}

// Label is the category label for the group.
func (g TagGroup) Label() string {
	if g.Untagged {
		return UntaggedLabel
	}
	return g.Tag
}

// Group partitions ops by tag. Groups appear in order of the first
// operation carrying each tag; operations keep their relative order inside
// a group. Untagged operations are collected into a single trailing group
// no matter where they occur in ops. An explicit tag spelled "UNTAGGED" is
// an ordinary tag and is not merged with the fallback group.
func Group(ops []openapi.Operation) []TagGroup {
	var (
		groups   []TagGroup
		index    = make(map[string]int)
		untagged []openapi.Operation
	)
	for _, op := range ops {
		if !op.Tagged() {
			untagged = append(untagged, op)
			continue
		}
		i, ok := index[op.Tag]
		if !ok {
			i = len(groups)
			index[op.Tag] = i
			groups = append(groups, TagGroup{Tag: op.Tag})
		}
		groups[i].Operations = append(groups[i].Operations, op)
	}
	if len(untagged) > 0 {
		groups = append(groups, TagGroup{Untagged: true, Operations: untagged})
	}
	return groups
}

// Flatten concatenates the groups' operations in group order. Group of a
// flattened grouping reproduces the same groups.
func Flatten(groups []TagGroup) []openapi.Operation {
	var n int
	for _, g := range groups {
		n += len(g.Operations)
	}
	out := make([]openapi.Operation, 0, n)
	for _, g := range groups {
		out = append(out, g.Operations...)
	}
	return out
}
