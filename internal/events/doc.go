// Package events records operational events (task failures, feed update
// problems, unhandled request errors) into the admin-facing event log.
//
// Recording an event is best effort: a Logger never lets a failure of the
// event log itself propagate into the caller's control flow.
package events
