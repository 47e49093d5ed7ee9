// Package event provides a synchronous pub-sub bus that carries run,
// chunk, and task events from the distribution phase to observers such as
// the metrics collector and the debug logger.
//
// # Main Types
//
//   - [Event]: interface all events implement (EventType, Timestamp)
//   - [Bus]: synchronous, concurrency-safe dispatcher
//   - [Handler]: func(Event)
//
// # Events
//
//   - [RunStartedEvent] ("run.started")
//   - [ChunkClaimedEvent] ("chunk.claimed")
//   - [TaskCompletedEvent] ("task.completed")
//   - [TaskFailedEvent] ("task.failed")
//   - [RunCompletedEvent] ("run.completed")
//
// # Thread Safety
//
// Workers publish concurrently. Handlers are invoked on the publishing
// goroutine and must tolerate concurrent calls. A panicking handler is
// recovered and logged.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypeTaskCompleted, func(e event.Event) {
//	    done := e.(event.TaskCompletedEvent)
//	    hist.Observe(done.Duration.Seconds())
//	})
//	if bus.HasSubscribers(event.TypeChunkClaimed) {
//	    bus.Publish(event.NewChunkClaimedEvent(w, start, end))
//	}
package event
