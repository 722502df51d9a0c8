package pool

import (
	"errors"
	"fmt"
)

// ErrNotInFlight is wrapped into UpdateScores's returned error when the
// caller's score set names a document that is not currently IN_FLIGHT.
var ErrNotInFlight = errors.New("pool: document is not in_flight")

// IllegalTransitionError is always a programming error: the Controller
// never recovers from it, per the core's error propagation policy.
type IllegalTransitionError struct {
	DocID string
	From  State
	To    State
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("pool: illegal transition for %q: %s -> %s", e.DocID, e.From, e.To)
}
