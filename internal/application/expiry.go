package application

import (
	"time"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

// DefaultAlertWindowDays is used when no alert window is configured.
const DefaultAlertWindowDays = 7

// ExpiryFlags computes the display flags for a credential. Both bounds are
// strict: a credential expiring today is neither expired nor near expiry,
// and one expiring exactly windowDays out is not yet near expiry.
func ExpiryFlags(expiresOn *time.Time, today time.Time, windowDays int) (expired, nearExpiry bool) {
	if expiresOn == nil {
		return false, false
	}
	exp := model.Date(*expiresOn)
	today = model.Date(today)
	limit := model.AddDays(today, windowDays)

	expired = exp.Before(today)
	nearExpiry = exp.After(today) && exp.Before(limit)
	return expired, nearExpiry
}

// ClassifyExpiration is the monitor's rule. It is inclusive: a credential
// expiring on or before today is critical; anything later is an alert.
// Callers only pass credentials already known to expire within the window.
func ClassifyExpiration(expiresOn, today time.Time) model.NotificationKind {
	if !model.Date(expiresOn).After(model.Date(today)) {
		return model.NotificationCritical
	}
	return model.NotificationAlert
}
