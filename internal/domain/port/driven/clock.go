package driven

import "time"

// Clock supplies the current time so date logic can be tested without the
// wall clock.
type Clock interface {
	Now() time.Time

	// Today returns the current calendar date normalized with model.Date.
	Today() time.Time
}
