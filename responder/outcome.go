package responder

import (
	"context"
	"errors"
	"net"
)

// Outcome classifies how a generation attempt ended
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeTransport Outcome = "transport_error"
	OutcomeFailed    Outcome = "failed"
)

// Failed reports whether the outcome carries no usable reply
func (o Outcome) Failed() bool { return o != OutcomeOK }

// Classify maps a generation error onto an Outcome. Cancellation is checked
// first since timeouts surface wrapped in transport errors.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeCancelled
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return OutcomeCancelled
		}
		return OutcomeTransport
	}
	return OutcomeFailed
}
