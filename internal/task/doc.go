// Package task runs long-lived work (such as pulling listings from an MLS
// feed) outside the HTTP request path.
//
// Producers hand tasks to a bounded, in-memory BackgroundQueue. A single
// Worker dequeues them in FIFO order and runs each one inside a freshly
// opened dependency Scope that is closed as soon as the task finishes.
// Tasks are not persisted: anything still queued when the process stops is
// lost.
package task
