package domain

import "context"

// ProgressManager tracks one or more concurrently-running tasks for
// terminal display. NewProgressManager (service package) picks an
// interactive implementation when it is enabled and stderr is a terminal,
// and a no-op one otherwise, mirroring the teacher's progressbar wiring.
type ProgressManager interface {
	StartTask(description string, total int) TaskProgress
	IsInteractive() bool
	Close()
}

// TaskProgress is a single bar/counter returned by ProgressManager.StartTask.
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}

// ExecutableTask is one unit of work handed to the bounded parallel
// executor (§5: "a single bounded-parallelism stage ... parse tasks are
// submitted to a worker pool capped at min(NumCPU, 8)").
type ExecutableTask interface {
	Name() string
	IsEnabled() bool
	Execute(ctx context.Context) (any, error)
}
