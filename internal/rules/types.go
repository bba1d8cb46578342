package rules

import (
	"time"

	"cloud.google.com/go/civil"
)

type EventType string

const (
	EventMental    EventType = "mental"
	EventNutrition EventType = "nutrition"
	EventPhysical  EventType = "physical"
)

// Valid reports whether t is one of the three loggable event types.
func (t EventType) Valid() bool {
	switch t {
	case EventMental, EventNutrition, EventPhysical:
		return true
	default:
		return false
	}
}

// Category of a fired rule. It shares the event type vocabulary.
type Category = EventType

const (
	RuleHydration = "hydration_10m"
	RuleBreakfast = "breakfast_9am"
	RuleLunch     = "lunch_13pm"
	RuleDinner    = "dinner_19pm"
	RuleWalkEOD   = "walk_eod_21pm"
	RuleSedentary = "sedentary_60m"
)

// AllRuleIDs lists every hard-coded rule in evaluation order.
var AllRuleIDs = []string{
	RuleHydration,
	RuleBreakfast,
	RuleLunch,
	RuleDinner,
	RuleWalkEOD,
	RuleSedentary,
}

// KnownRule reports whether id names one of the hard-coded rules.
func KnownRule(id string) bool {
	for _, r := range AllRuleIDs {
		if r == id {
			return true
		}
	}
	return false
}

// CategoryOf returns the category a rule fires under, or "" for unknown ids.
func CategoryOf(ruleID string) Category {
	switch ruleID {
	case RuleHydration, RuleBreakfast, RuleLunch, RuleDinner:
		return EventNutrition
	case RuleWalkEOD, RuleSedentary:
		return EventPhysical
	default:
		return ""
	}
}

// Event is one logged activity. Exactly one payload pointer is expected to be
// set, matching Type; accessors tolerate any of them being nil.
type Event struct {
	Type      EventType
	Timestamp time.Time

	Mental    *MentalPayload
	Nutrition *NutritionPayload
	Physical  *PhysicalPayload
}

type MentalPayload struct {
	MoodScore int      `json:"mood_score"`
	MoodLabel string   `json:"mood_label,omitempty"`
	Feelings  []string `json:"feelings,omitempty"`
	Note      string   `json:"note,omitempty"`
	Breath    bool     `json:"breath"`
}

type NutritionPayload struct {
	MealTime string   `json:"meal_time,omitempty"`
	Items    []string `json:"items,omitempty"`
	WaterML  int      `json:"water_ml"`
}

type PhysicalPayload struct {
	Activity string `json:"activity,omitempty"`
	Minutes  int    `json:"minutes"`
	WalkMin  int    `json:"walk_min,omitempty"`
	RPE      int    `json:"rpe,omitempty"`
}

// WaterML is the logged water volume, 0 when absent or negative.
func (e Event) WaterML() int {
	if e.Nutrition == nil || e.Nutrition.WaterML < 0 {
		return 0
	}
	return e.Nutrition.WaterML
}

// MealTime is the logged meal name, "" when absent.
func (e Event) MealTime() string {
	if e.Nutrition == nil {
		return ""
	}
	return e.Nutrition.MealTime
}

// ActivityMinutes prefers "minutes" and falls back to "walk_min".
func (e Event) ActivityMinutes() int {
	if e.Physical == nil {
		return 0
	}
	m := e.Physical.Minutes
	if m <= 0 {
		m = e.Physical.WalkMin
	}
	if m < 0 {
		return 0
	}
	return m
}

// IsPositiveMood counts toward the summary's "mental positives".
func (e Event) IsPositiveMood() bool {
	if e.Mental == nil {
		return false
	}
	return e.Mental.MoodScore >= 6 || e.Mental.Breath
}

// Profile is the slice of the health profile the rules personalize on.
type Profile struct {
	WeightKG          *float64
	ActivityLevel     string
	MedicalConditions []string
	Disabilities      []string
}

// RuleState is the persisted per (user, rule) firing record.
type RuleState struct {
	LastFiredAt  *time.Time  `json:"last_fired_at,omitempty"`
	SnoozedUntil *time.Time  `json:"snoozed_until,omitempty"`
	FiredOnDate  *civil.Date `json:"fired_on_date,omitempty"`
}

type FiredRule struct {
	RuleID    string   `json:"rule_id"`
	Category  Category `json:"category"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Rationale string   `json:"rationale,omitempty"`
}

// Trace records what happened to each rule in one pass. Suppressed entries
// are "<rule_id>: <reason>" or the bare "quiet_hours".
type Trace struct {
	Suppressed []string `json:"suppressed"`
	Fired      []string `json:"fired"`
}

func newTrace() Trace {
	return Trace{Suppressed: []string{}, Fired: []string{}}
}

func (t *Trace) suppress(ruleID, reason string) {
	t.Suppressed = append(t.Suppressed, ruleID+": "+reason)
}

// Input is a fully materialized evaluation snapshot. Events may contain
// entries older than today; they are ignored.
type Input struct {
	Now      time.Time
	Profile  Profile
	Settings Settings
	Events   []Event
	States   map[string]RuleState
}
