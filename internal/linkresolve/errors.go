package linkresolve

import (
	"fmt"
	"strings"
)

// BrokenReferenceError reports a DocRef whose document does not exist.
type BrokenReferenceError struct {
	ID       string
	Sidebar  string
	Position string
}

func (e *BrokenReferenceError) Error() string {
	return fmt.Sprintf("broken reference %q at %s", e.ID, e.Position)
}

// DuplicateIDError lists every document id referenced more than once,
// with the positions of all occurrences.
type DuplicateIDError struct {
	IDs         []string
	Occurrences map[string][]string
}

func (e *DuplicateIDError) Error() string {
	parts := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		if at := e.Occurrences[id]; len(at) > 0 {
			parts = append(parts, fmt.Sprintf("%s (%s)", id, strings.Join(at, ", ")))
			continue
		}
		parts = append(parts, id)
	}
	return "duplicate document ids: " + strings.Join(parts, "; ")
}

// Has reports whether id is among the duplicates.
func (e *DuplicateIDError) Has(id string) bool {
	for _, d := range e.IDs {
		if d == id {
			return true
		}
	}
	return false
}
