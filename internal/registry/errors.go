package registry

import "fmt"

// DuplicateSidebarIDError is returned when a sidebar id is registered twice.
type DuplicateSidebarIDError struct {
	ID string
}

func (e *DuplicateSidebarIDError) Error() string {
	return fmt.Sprintf("sidebar %q is already registered", e.ID)
}

// SealedRegistryError is returned by Register after Seal.
type SealedRegistryError struct {
	ID string
}

func (e *SealedRegistryError) Error() string {
	return fmt.Sprintf("cannot register sidebar %q: registry is sealed", e.ID)
}

// NotFoundError is returned by Get for an unknown sidebar id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sidebar %q not found", e.ID)
}
