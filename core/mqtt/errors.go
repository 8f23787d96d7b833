package mqtt

import "errors"

// ErrReplyTimeout is returned when no reply is received before the timeout.
var ErrReplyTimeout = errors.New("timeout waiting for reply")

// ErrUnknownCommand is returned when waiting on a command that was never sent.
var ErrUnknownCommand = errors.New("unknown command")
