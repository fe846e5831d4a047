// Package registry holds the named sidebars of one build.
//
// A Registry is filled by a single writer, sealed, and then read by any
// number of goroutines. Register and Seal must not run concurrently with
// each other or with readers; once Seal has returned the registry never
// changes and reads need no synchronization.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/logfields"
	"git.home.luguber.info/inful/sidebargen/internal/nav"
	"git.home.luguber.info/inful/sidebargen/internal/util/sets"
)

// Registry maps sidebar ids to sidebars in registration order.
type Registry struct {
	order     []string
	sidebars  map[string]nav.Sidebar
	docOwners map[string]string
	sealed    bool

	allowDuplicateDocs bool
	logger             *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// AllowDuplicateDocs accepts document id collisions instead of failing.
// Each collision is logged as a warning on logger; a nil logger accepts
// them silently, for callers that already reported them.
func AllowDuplicateDocs(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.allowDuplicateDocs = true
		r.logger = logger
	}
}

// New creates an empty, unsealed registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		sidebars:  make(map[string]nav.Sidebar),
		docOwners: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds s. It fails with SealedRegistryError after Seal, with
// DuplicateSidebarIDError when the id is taken, and with
// linkresolve.DuplicateIDError naming every document id of s that is
// already registered or repeated inside s. A failed Register leaves the
// registry unchanged.
func (r *Registry) Register(s nav.Sidebar) error {
	if r.sealed {
		return &SealedRegistryError{ID: s.ID}
	}
	if _, exists := r.sidebars[s.ID]; exists {
		return &DuplicateSidebarIDError{ID: s.ID}
	}

	docs := nav.Docs(s)
	var dup *linkresolve.DuplicateIDError
	reported := sets.New[string]()
	local := make(map[string]string, len(docs))
	for _, d := range docs {
		id, at := d.Ref.ID, d.Position.String()
		first, inSidebar := local[id]
		owner, inRegistry := r.docOwners[id]
		if !inSidebar && !inRegistry {
			local[id] = at
			continue
		}
		if dup == nil {
			dup = &linkresolve.DuplicateIDError{Occurrences: make(map[string][]string)}
		}
		if reported.Add(id) {
			dup.IDs = append(dup.IDs, id)
			if inRegistry {
				dup.Occurrences[id] = append(dup.Occurrences[id], owner)
			}
			if inSidebar {
				dup.Occurrences[id] = append(dup.Occurrences[id], first)
			}
		}
		dup.Occurrences[id] = append(dup.Occurrences[id], at)
		if !inSidebar {
			local[id] = at
		}
	}
	if dup != nil {
		if !r.allowDuplicateDocs {
			return dup
		}
		if r.logger != nil {
			for _, id := range dup.IDs {
				r.logger.LogAttrs(context.Background(), slog.LevelWarn, "Duplicate document id registered",
					logfields.Sidebar(s.ID), logfields.DocID(id), slog.Any("positions", dup.Occurrences[id]))
			}
		}
	}

	for id, at := range local {
		if _, taken := r.docOwners[id]; !taken {
			r.docOwners[id] = at
		}
	}
	r.order = append(r.order, s.ID)
	r.sidebars[s.ID] = s
	return nil
}

// Seal makes the registry read-only. Sealing twice is a no-op.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Get returns the sidebar registered under id.
func (r *Registry) Get(id string) (nav.Sidebar, error) {
	s, ok := r.sidebars[id]
	if !ok {
		return nav.Sidebar{}, &NotFoundError{ID: id}
	}
	return s, nil
}

// IDs returns the registered sidebar ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Sidebars returns the registered sidebars in registration order.
func (r *Registry) Sidebars() []nav.Sidebar {
	out := make([]nav.Sidebar, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sidebars[id])
	}
	return out
}

// Len is the number of registered sidebars.
func (r *Registry) Len() int {
	return len(r.order)
}

// MarshalJSON encodes the registry as an object keyed by sidebar id, with
// keys in registration order.
func (r *Registry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.sidebars[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
