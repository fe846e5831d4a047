package nav

import "fmt"

// EmptyCategoryError reports a category that would be emitted without children.
type EmptyCategoryError struct {
	Sidebar  string
	Label    string
	Position string
}

func (e *EmptyCategoryError) Error() string {
	return fmt.Sprintf("sidebar %s: category %q at %s has no items", e.Sidebar, e.Label, e.Position)
}
