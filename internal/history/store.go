// Package history keeps a record of past builds.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNoBuilds is returned by Latest when nothing has been recorded.
var ErrNoBuilds = errors.New("no builds recorded")

// Build summarizes one build run.
type Build struct {
	ID            string         `json:"id"`
	StartedAt     time.Time      `json:"startedAt"`
	Duration      time.Duration  `json:"durationNs"`
	Mode          string         `json:"mode"`
	Outcome       string         `json:"outcome"`
	Sidebars      map[string]int `json:"sidebars"` // sidebar id -> document references
	Problems      int            `json:"problems"`
	ContentDigest string         `json:"contentDigest,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Documents is the total number of document references across sidebars.
func (b Build) Documents() int {
	n := 0
	for _, c := range b.Sidebars {
		n += c
	}
	return n
}

// Store persists build records.
type Store interface {
	// Record stores b. Recording the same id twice is an error.
	Record(ctx context.Context, b Build) error

	// Recent returns up to limit builds, newest first.
	Recent(ctx context.Context, limit int) ([]Build, error)

	// Latest returns the newest build or ErrNoBuilds.
	Latest(ctx context.Context) (Build, error)

	// Close releases resources.
	Close() error
}
