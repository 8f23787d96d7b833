package mqtt

import (
	"time"

	"github.com/kilianp07/jumpvector/core/operator"
)

// Client sends (code, value) commands to a remote jump vector and waits for
// the matching replies.
type Client interface {
	// SendCommand publishes a command and returns the identifier used to
	// match its reply.
	SendCommand(code uint32, value byte) (commandID string, err error)

	// WaitForReply waits for the reply to commandID or until the timeout
	// expires.
	WaitForReply(commandID string, timeout time.Duration) (operator.Reply, error)
}
