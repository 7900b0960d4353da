package application

import (
	"time"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Clock = SystemClock{}

// SystemClock reads the wall clock. Today is the calendar date in Location,
// or in the process's local zone when Location is nil.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time.
func (c SystemClock) Now() time.Time {
	return time.Now()
}

// Today returns the current calendar date normalized with model.Date.
func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return model.Date(time.Now().In(loc))
}
