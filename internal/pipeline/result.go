package pipeline

import (
	"time"

	"git.home.luguber.info/inful/sidebargen/internal/content"
	"git.home.luguber.info/inful/sidebargen/internal/linkresolve"
	"git.home.luguber.info/inful/sidebargen/internal/metrics"
	"git.home.luguber.info/inful/sidebargen/internal/nav"
	"git.home.luguber.info/inful/sidebargen/internal/registry"
)

// Status is the final state of a build.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusWarning  Status = "warning"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
	StatusSkipped  Status = "skipped"
)

func (s Status) outcome() metrics.BuildOutcome {
	switch s {
	case StatusSuccess:
		return metrics.OutcomeSuccess
	case StatusWarning:
		return metrics.OutcomeWarning
	case StatusCanceled:
		return metrics.OutcomeCanceled
	case StatusSkipped:
		return metrics.OutcomeSkipped
	default:
		return metrics.OutcomeFailed
	}
}

// NavbarEntry is a resolved navbar link to a registered sidebar.
type NavbarEntry struct {
	Type      string `json:"type"`
	SidebarID string `json:"sidebarId"`
	Label     string `json:"label"`
	Position  string `json:"position"`
}

// Result describes a finished build.
type Result struct {
	BuildID   string
	Status    Status
	Mode      linkresolve.Mode
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Registry is sealed once the build got past registration.
	Registry *registry.Registry
	Navbar   []NavbarEntry

	Report    *linkresolve.Report
	Conflicts []content.Conflict
	Documents int

	// InputsDigest fingerprints config, API descriptions and content.
	InputsDigest  string
	ContentDigest string

	// OutputPath is empty for dry runs and failed builds.
	OutputPath string
}

// SidebarDocs maps every registered sidebar to its number of doc references.
func (r *Result) SidebarDocs() map[string]int {
	if r.Registry == nil {
		return nil
	}
	out := make(map[string]int, r.Registry.Len())
	for _, s := range r.Registry.Sidebars() {
		out[s.ID] = len(nav.Docs(s))
	}
	return out
}

// Problems counts reference problems and content id conflicts.
func (r *Result) Problems() int {
	n := len(r.Conflicts)
	if r.Report != nil {
		n += r.Report.Problems()
	}
	return n
}
