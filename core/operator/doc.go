// Package operator connects a jump vector to the outside world. It decodes
// (code, value) commands, runs them against the table under a lock, and
// reports every dispatch on the event bus and in the journal. Transports
// such as infra/mqtt and api/table only deal with Command and Reply.
package operator
