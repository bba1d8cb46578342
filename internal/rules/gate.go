package rules

import "time"

// neverMinutes stands in for "no qualifying event today" so elapsed-time
// thresholds are always met.
const neverMinutes = 1_000_000

// IsWithinQuietHours compares wall-clock time of day only. Both boundaries
// are inclusive; a window with start after end wraps midnight.
func IsWithinQuietHours(now TimeOfDay, start, end TimeOfDay) bool {
	if start <= end {
		return start <= now && now <= end
	}
	return now >= start || now <= end
}

// minutesBetween is the elapsed whole minutes from then to now, truncated
// toward zero.
func minutesBetween(now, then time.Time) int {
	return int(now.Sub(then) / time.Minute)
}

// gate applies snooze then cooldown. The returned reason is "" when allowed.
func gate(state RuleState, now time.Time, cooldownMin int) (bool, string) {
	if state.SnoozedUntil != nil && state.SnoozedUntil.After(now) {
		return false, "snoozed"
	}
	if state.LastFiredAt != nil && minutesBetween(now, *state.LastFiredAt) < cooldownMin {
		return false, "cooldown"
	}
	return true, ""
}
