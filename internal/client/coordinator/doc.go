// Package coordinator owns the in-flight fetch tasks of the device.
//
// A content id has at most one live task. Tasks run one at a time on a single
// worker goroutine in the order they were requested; callers block only in
// Task.Await. Every task publishes its progress to registered observers and
// to the event bus, and leaves the registry when it reaches a terminal
// state, so a later request for the same content starts a fresh attempt.
package coordinator
