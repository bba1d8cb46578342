package rules

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	sedentaryThresholdMin = 60

	sedentaryTitle     = "🚶 Time to move"
	sedentaryBody      = "You’ve been sitting ~1h. Stand up for 2–3 minutes or walk 200 steps."
	sedentaryJointBody = "Gentle stretch break: try a seated stretch or neck/shoulder roll."
	sedentaryRationale = "No movement in ~60 minutes."
)

type mealRule struct {
	id   string
	meal string
	at   TimeOfDay
}

var mealRules = []mealRule{
	{RuleBreakfast, "breakfast", NewTimeOfDay(9, 0)},
	{RuleLunch, "lunch", NewTimeOfDay(13, 0)},
	{RuleDinner, "dinner", NewTimeOfDay(19, 0)},
}

var walkRuleAt = NewTimeOfDay(21, 0)

// pass holds the derived per-call view of an Input.
type pass struct {
	in       Input
	now      time.Time
	clock    TimeOfDay
	today    civil.Date
	dayStart time.Time
	settings Settings

	nutrition []Event
	physical  []Event

	trace Trace
	fired []FiredRule
}

func newPass(in Input) *pass {
	loc := in.Settings.location()
	now := in.Now.In(loc)
	p := &pass{
		in:       in,
		now:      now,
		clock:    TimeOfDayOf(now),
		today:    civil.DateOf(now),
		dayStart: StartOfDay(now, loc),
		settings: in.Settings,
		trace:    newTrace(),
	}
	for _, ev := range in.Events {
		if ev.Timestamp.Before(p.dayStart) {
			continue
		}
		switch ev.Type {
		case EventNutrition:
			p.nutrition = append(p.nutrition, ev)
		case EventPhysical:
			p.physical = append(p.physical, ev)
		}
	}
	return p
}

func (p *pass) state(ruleID string) RuleState {
	if p.in.States == nil {
		return RuleState{}
	}
	return p.in.States[ruleID]
}

func (p *pass) firedToday(ruleID string) bool {
	st := p.state(ruleID)
	return st.FiredOnDate != nil && *st.FiredOnDate == p.today
}

func (p *pass) allowed(ruleID string, cooldownMin int) bool {
	ok, reason := gate(p.state(ruleID), p.now, cooldownMin)
	if !ok {
		p.trace.suppress(ruleID, reason)
	}
	return ok
}

func (p *pass) fire(r FiredRule) {
	p.fired = append(p.fired, r)
	p.trace.Fired = append(p.trace.Fired, r.RuleID)
}

func (p *pass) quiet() bool {
	return IsWithinQuietHours(p.clock, p.settings.quietStart(), p.settings.quietEnd())
}

// minutesSinceLatest returns elapsed minutes since the newest matching event,
// or neverMinutes when nothing matches.
func (p *pass) minutesSinceLatest(events []Event, match func(Event) bool) int {
	var latest *time.Time
	for i := range events {
		ev := events[i]
		if match != nil && !match(ev) {
			continue
		}
		if latest == nil || ev.Timestamp.After(*latest) {
			ts := ev.Timestamp
			latest = &ts
		}
	}
	if latest == nil {
		return neverMinutes
	}
	return minutesBetween(p.now, *latest)
}

func (p *pass) hydration() {
	mins := p.minutesSinceLatest(p.nutrition, func(ev Event) bool { return ev.WaterML() > 0 })
	if mins < 1 {
		return
	}
	if !p.allowed(RuleHydration, p.settings.cooldownHydration()) {
		return
	}
	p.fire(FiredRule{
		RuleID:   RuleHydration,
		Category: EventNutrition,
		Title:    "Sip water",
		Body:     fmt.Sprintf("It’s been a while. Target around %d ml/day.", HydrationTargetML(p.in.Profile)),
	})
}

func (p *pass) mealLogged(meal string) bool {
	for _, ev := range p.nutrition {
		if strings.EqualFold(ev.MealTime(), meal) {
			return true
		}
	}
	return false
}

func (p *pass) meals() {
	cd := p.settings.cooldownMeals()
	for _, mr := range mealRules {
		if p.clock < mr.at {
			continue
		}
		if p.mealLogged(mr.meal) {
			p.trace.suppress(mr.id, "already_logged")
			continue
		}
		if p.firedToday(mr.id) {
			p.trace.suppress(mr.id, "fired_today")
			continue
		}
		if !p.allowed(mr.id, cd) {
			continue
		}
		title := strings.ToUpper(mr.meal[:1]) + mr.meal[1:]
		p.fire(FiredRule{
			RuleID:   mr.id,
			Category: EventNutrition,
			Title:    title + " check-in",
			Body:     fmt.Sprintf("Have you had %s today? A balanced plate helps energy.", mr.meal),
		})
	}
}

func (p *pass) walk() {
	if p.clock < walkRuleAt {
		return
	}
	total := 0
	for _, ev := range p.physical {
		total += ev.ActivityMinutes()
	}
	target := WalkTargetMinutes(p.in.Profile)
	if total >= target {
		p.trace.suppress(RuleWalkEOD, "target_met")
		return
	}
	if p.firedToday(RuleWalkEOD) {
		p.trace.suppress(RuleWalkEOD, "fired_today")
		return
	}
	if !p.allowed(RuleWalkEOD, p.settings.cooldownPhysical()) {
		return
	}
	p.fire(FiredRule{
		RuleID:   RuleWalkEOD,
		Category: EventPhysical,
		Title:    "Evening movement",
		Body:     fmt.Sprintf("You’ve logged %d min today. Aim for about %d.", total, target),
	})
}

func (p *pass) sedentary() {
	if p.firedToday(RuleSedentary) {
		p.trace.suppress(RuleSedentary, "fired_today")
		return
	}
	if p.minutesSinceLatest(p.physical, nil) < sedentaryThresholdMin {
		return
	}
	if !p.allowed(RuleSedentary, p.settings.cooldownSedentary()) {
		return
	}
	body := sedentaryBody
	if HasJointSensitivity(p.in.Profile) {
		body = sedentaryJointBody
	}
	p.fire(FiredRule{
		RuleID:    RuleSedentary,
		Category:  EventPhysical,
		Title:     sedentaryTitle,
		Body:      body,
		Rationale: sedentaryRationale,
	})
}

// EvaluateRules runs the quiet-hours gate and then the hydration, meal and
// evening-walk rules in that order. It performs no I/O and never mutates in.
func EvaluateRules(in Input) ([]FiredRule, Trace) {
	p := newPass(in)
	if p.quiet() {
		p.trace.Suppressed = append(p.trace.Suppressed, "quiet_hours")
		return []FiredRule{}, p.trace
	}
	p.standard()
	return p.result()
}

// EvaluateDueNudges is EvaluateRules followed by the sedentary rule.
func EvaluateDueNudges(in Input) []FiredRule {
	fired, _ := EvaluateDueNudgesWithTrace(in)
	return fired
}

// EvaluateDueNudgesWithTrace also returns the trace, including sedentary
// suppressions.
func EvaluateDueNudgesWithTrace(in Input) ([]FiredRule, Trace) {
	p := newPass(in)
	if p.quiet() {
		p.trace.Suppressed = append(p.trace.Suppressed, "quiet_hours")
		if p.settings.SedentaryIgnoresQuietHours {
			p.sedentary()
		}
		return p.result()
	}
	p.standard()
	p.sedentary()
	return p.result()
}

func (p *pass) standard() {
	p.hydration()
	p.meals()
	p.walk()
}

func (p *pass) result() ([]FiredRule, Trace) {
	if p.fired == nil {
		p.fired = []FiredRule{}
	}
	return p.fired, p.trace
}
