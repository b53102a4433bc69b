// Package billing computes subscription windows and the lazily evaluated
// subscription status. There is no background sweeper: any read that needs
// to know whether a tenant may use the product calls EffectiveStatus.
package billing

import (
	"fmt"
	"time"

	"printscrap/internal/model"
)

// NextWindow returns the [start, end) window a plan of the given billing
// cycle grants when activated at start. Month and year steps are calendar
// steps (time.AddDate normalisation applies, so Jan 31 + 1 month = Mar 3 in
// non-leap years).
func NextWindow(cycle string, start time.Time) (time.Time, time.Time, error) {
	switch cycle {
	case model.CycleDaily:
		return start, start.AddDate(0, 0, 1), nil
	case model.CycleMonthly:
		return start, start.AddDate(0, 1, 0), nil
	case model.CycleYearly:
		return start, start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown billing cycle %q", cycle)
	}
}

// EffectiveStatus is the status a subscription has at now. Trial and active
// subscriptions whose end date has passed are expired; cancelled and expired
// are terminal as stored.
func EffectiveStatus(now time.Time, status string, endDate time.Time) string {
	switch status {
	case model.SubscriptionTrial, model.SubscriptionActive:
		if !now.Before(endDate) {
			return model.SubscriptionExpired
		}
	}
	return status
}

// Usable reports whether a subscription in this state grants access.
func Usable(effectiveStatus string) bool {
	return effectiveStatus == model.SubscriptionTrial || effectiveStatus == model.SubscriptionActive
}

// DaysLeft is the number of whole or partial days until endDate, 0 once passed.
func DaysLeft(now, endDate time.Time) int {
	if !now.Before(endDate) {
		return 0
	}
	remaining := endDate.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}
