// Package events defines the events emitted on the event bus by the operator.
//
// Available event types:
//   - DispatchEvent: a command was run against the jump vector
//   - RegistrationEvent: a handler was added at runtime (or refused)
package events
