package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess   BuildOutcomeLabel = "success"
	BuildOutcomeUnchanged BuildOutcomeLabel = "unchanged"
	BuildOutcomeFailed    BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled  BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for manual builds.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObserveTOCEntries(label string, n int)
	IncPageEmitted()
	IncPageSkipped()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) ObserveTOCEntries(string, int)              {}
func (NoopRecorder) IncPageEmitted()                            {}
func (NoopRecorder) IncPageSkipped()                            {}
