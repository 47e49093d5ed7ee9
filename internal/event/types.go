package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "run.started", "chunk.claimed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeRunStarted    = "run.started"
	TypeChunkClaimed  = "chunk.claimed"
	TypeTaskCompleted = "task.completed"
	TypeTaskFailed    = "task.failed"
	TypeRunCompleted  = "run.completed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Run Lifecycle Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted immediately before the workers start.
type RunStartedEvent struct {
	baseEvent
	RunID     string
	Tasks     int    // N
	BaseSize  int    // matrix order of task 0
	Regime    string // "even" or "uneven"
	Workers   int
	ChunkSize int
	Policy    string
	Solver    string
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(runID string, tasks, baseSize int, regime string, workers, chunkSize int, policy, solver string) RunStartedEvent {
	return RunStartedEvent{
		baseEvent: newBaseEvent(TypeRunStarted),
		RunID:     runID,
		Tasks:     tasks,
		BaseSize:  baseSize,
		Regime:    regime,
		Workers:   workers,
		ChunkSize: chunkSize,
		Policy:    policy,
		Solver:    solver,
	}
}

// RunCompletedEvent is emitted after all workers have joined.
type RunCompletedEvent struct {
	baseEvent
	RunID     string
	Elapsed   time.Duration
	Completed int
	Err       error // nil on success
}

// NewRunCompletedEvent creates a RunCompletedEvent.
func NewRunCompletedEvent(runID string, elapsed time.Duration, completed int, err error) RunCompletedEvent {
	return RunCompletedEvent{
		baseEvent: newBaseEvent(TypeRunCompleted),
		RunID:     runID,
		Elapsed:   elapsed,
		Completed: completed,
		Err:       err,
	}
}

// Success reports whether the run finished without a fatal error.
func (e RunCompletedEvent) Success() bool { return e.Err == nil }

// -----------------------------------------------------------------------------
// Distribution Events
// -----------------------------------------------------------------------------

// ChunkClaimedEvent is emitted by a worker each time it claims [Start, End).
type ChunkClaimedEvent struct {
	baseEvent
	Worker int
	Start  int
	End    int
}

// NewChunkClaimedEvent creates a ChunkClaimedEvent.
func NewChunkClaimedEvent(worker, start, end int) ChunkClaimedEvent {
	return ChunkClaimedEvent{
		baseEvent: newBaseEvent(TypeChunkClaimed),
		Worker:    worker,
		Start:     start,
		End:       end,
	}
}

// Len returns the number of indices in the chunk.
func (e ChunkClaimedEvent) Len() int { return e.End - e.Start }

// TaskCompletedEvent is emitted after a task's result slot has been written.
type TaskCompletedEvent struct {
	baseEvent
	Worker      int
	Index       int
	ProblemSize int
	Duration    time.Duration
	Value       float64
}

// NewTaskCompletedEvent creates a TaskCompletedEvent.
func NewTaskCompletedEvent(worker, index, problemSize int, duration time.Duration, value float64) TaskCompletedEvent {
	return TaskCompletedEvent{
		baseEvent:   newBaseEvent(TypeTaskCompleted),
		Worker:      worker,
		Index:       index,
		ProblemSize: problemSize,
		Duration:    duration,
		Value:       value,
	}
}

// TaskFailedEvent is emitted when a task returns a fatal error.
type TaskFailedEvent struct {
	baseEvent
	Worker int
	Index  int
	Err    error
}

// NewTaskFailedEvent creates a TaskFailedEvent.
func NewTaskFailedEvent(worker, index int, err error) TaskFailedEvent {
	return TaskFailedEvent{
		baseEvent: newBaseEvent(TypeTaskFailed),
		Worker:    worker,
		Index:     index,
		Err:       err,
	}
}
