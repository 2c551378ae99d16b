// Package workerpool provides the bounded-concurrency primitive the
// executor uses to run one scheduling layer's operations at once: a
// semaphore limiting in-flight tasks, in the spirit of this module's
// bulkhead concurrency limiter, implemented with
// golang.org/x/sync/semaphore's weighted semaphore.
package workerpool
