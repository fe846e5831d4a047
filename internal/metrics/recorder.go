package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcome is the final status of a build.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
	OutcomeSkipped  BuildOutcome = "skipped"
)

// ProblemKind labels reference problems found while resolving sidebars.
type ProblemKind string

const (
	ProblemBrokenReference ProblemKind = "broken_reference"
	ProblemDuplicateID     ProblemKind = "duplicate_id"
	ProblemContentConflict ProblemKind = "content_conflict"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcome)
	SetSidebarDocs(sidebar string, n int)
	AddProblems(kind ProblemKind, n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) SetSidebarDocs(string, int)                 {}
func (NoopRecorder) AddProblems(ProblemKind, int)               {}
