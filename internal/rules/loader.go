package rules

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// EventLister returns a user's events of one type (all types when t is "")
// with timestamp >= since (unbounded when since is nil).
type EventLister interface {
	ListEvents(ctx context.Context, userID uuid.UUID, t EventType, since *time.Time) ([]Event, error)
}

// StateGetter returns the stored rule state, or nil when none exists yet.
type StateGetter interface {
	GetRuleState(ctx context.Context, userID uuid.UUID, ruleID string) (*RuleState, error)
}

// Loader materializes an Input from the store. It is the only part of this
// package that does I/O.
type Loader struct {
	Events EventLister
	States StateGetter
}

func (l Loader) Load(ctx context.Context, userID uuid.UUID, now time.Time, profile Profile, settings Settings) (Input, error) {
	in := Input{
		Now:      now,
		Profile:  profile,
		Settings: settings,
		States:   make(map[string]RuleState, len(AllRuleIDs)),
	}
	since := StartOfDay(now, settings.location())
	for _, t := range []EventType{EventNutrition, EventPhysical} {
		evs, err := l.Events.ListEvents(ctx, userID, t, &since)
		if err != nil {
			return Input{}, fmt.Errorf("list %s events: %w", t, err)
		}
		in.Events = append(in.Events, evs...)
	}
	for _, id := range AllRuleIDs {
		st, err := l.States.GetRuleState(ctx, userID, id)
		if err != nil {
			return Input{}, fmt.Errorf("get rule state %s: %w", id, err)
		}
		if st != nil {
			in.States[id] = *st
		}
	}
	return in, nil
}

// FiredState is the state a caller should persist for a rule that just
// fired: last_fired_at = now and fired_on_date = today.
func FiredState(now time.Time, settings Settings) RuleState {
	local := now.In(settings.location())
	at := now
	d := civil.DateOf(local)
	return RuleState{LastFiredAt: &at, FiredOnDate: &d}
}

// SnoozeState sets snoozed_until = now + d.
func SnoozeState(now time.Time, d time.Duration) RuleState {
	until := now.Add(d)
	return RuleState{SnoozedUntil: &until}
}
