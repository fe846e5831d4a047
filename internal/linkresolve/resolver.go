// Package linkresolve checks sidebars against the content corpus: every
// DocRef must name an existing document and no document id may appear
// twice. Checks never modify the trees and report every problem at once.
package linkresolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sidebargen/internal/logfields"
	"git.home.luguber.info/inful/sidebargen/internal/nav"
	"git.home.luguber.info/inful/sidebargen/internal/util/sets"
)

// ContentLookup answers whether a content document exists.
type ContentLookup interface {
	Exists(id string) bool
}

// LookupFunc adapts a function to ContentLookup.
type LookupFunc func(id string) bool

func (f LookupFunc) Exists(id string) bool { return f(id) }

// Mode controls what happens to reference and duplicate problems.
type Mode string

const (
	// ModeStrict fails the build on any problem.
	ModeStrict Mode = "strict"
	// ModePermissive logs problems as warnings and continues.
	ModePermissive Mode = "permissive"
)

// ParseMode normalizes a mode name; "throw" and "warn" are accepted as aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict", "throw":
		return ModeStrict, nil
	case "permissive", "warn":
		return ModePermissive, nil
	default:
		return "", fmt.Errorf("unknown build mode %q", s)
	}
}

// Resolver validates sidebars.
type Resolver struct {
	lookup ContentLookup
}

// New creates a Resolver. A nil lookup disables the existence check.
func New(lookup ContentLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Check validates the given sidebars together, so duplicates across them
// are found as well as duplicates inside each.
func (r *Resolver) Check(sidebars ...nav.Sidebar) *Report {
	rep := &Report{}
	if r.lookup != nil {
		for _, s := range sidebars {
			for _, d := range nav.Docs(s) {
				if !r.lookup.Exists(d.Ref.ID) {
					rep.Broken = append(rep.Broken, &BrokenReferenceError{
						ID:       d.Ref.ID,
						Sidebar:  s.ID,
						Position: d.Position.String(),
					})
				}
			}
		}
	}
	rep.Duplicates = FindDuplicates(sidebars...)
	return rep
}

// FindDuplicates returns the ids occurring more than once across sidebars,
// in order of first occurrence, or nil.
func FindDuplicates(sidebars ...nav.Sidebar) *DuplicateIDError {
	var order []string
	first := sets.New[string]()
	seen := make(map[string][]string)
	for _, s := range sidebars {
		for _, d := range nav.Docs(s) {
			if first.Add(d.Ref.ID) {
				order = append(order, d.Ref.ID)
			}
			seen[d.Ref.ID] = append(seen[d.Ref.ID], d.Position.String())
		}
	}
	var dup *DuplicateIDError
	for _, id := range order {
		if len(seen[id]) < 2 {
			continue
		}
		if dup == nil {
			dup = &DuplicateIDError{Occurrences: make(map[string][]string)}
		}
		dup.IDs = append(dup.IDs, id)
		dup.Occurrences[id] = seen[id]
	}
	return dup
}

// Report collects the problems found by Check.
type Report struct {
	Broken     []*BrokenReferenceError
	Duplicates *DuplicateIDError
}

// OK reports whether no problem was found.
func (r *Report) OK() bool {
	return len(r.Broken) == 0 && r.Duplicates == nil
}

// Problems counts broken references plus duplicated ids.
func (r *Report) Problems() int {
	n := len(r.Broken)
	if r.Duplicates != nil {
		n += len(r.Duplicates.IDs)
	}
	return n
}

// Err joins every problem into one error, or returns nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Broken)+1)
	for _, b := range r.Broken {
		errs = append(errs, b)
	}
	if r.Duplicates != nil {
		errs = append(errs, r.Duplicates)
	}
	return errors.Join(errs...)
}

// Enforce applies mode: strict returns Err, permissive logs every problem
// at warn level and returns nil.
func (r *Report) Enforce(ctx context.Context, mode Mode, logger *slog.Logger) error {
	if r.OK() {
		return nil
	}
	if mode == ModeStrict {
		return r.Err()
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, b := range r.Broken {
		logger.LogAttrs(ctx, slog.LevelWarn, "Broken sidebar reference",
			logfields.Sidebar(b.Sidebar), logfields.DocID(b.ID), logfields.Position(b.Position))
	}
	if r.Duplicates != nil {
		for _, id := range r.Duplicates.IDs {
			logger.LogAttrs(ctx, slog.LevelWarn, "Duplicate document id",
				logfields.DocID(id), slog.Any("positions", r.Duplicates.Occurrences[id]))
		}
	}
	return nil
}
