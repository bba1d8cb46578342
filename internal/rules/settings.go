package rules

import "time"

const (
	DefaultCooldownHydration = 15
	DefaultCooldownMeals     = 120
	DefaultCooldownPhysical  = 120
	DefaultCooldownSedentary = 30
)

var (
	DefaultQuietStart = NewTimeOfDay(22, 0)
	DefaultQuietEnd   = NewTimeOfDay(7, 0)
)

// Settings is the per-call configuration. Nil fields resolve to the package
// defaults, so a zero Settings is valid. A negative cooldown also resolves to
// its default; zero disables that cooldown.
type Settings struct {
	QuietStart *TimeOfDay `json:"quiet_start,omitempty"`
	QuietEnd   *TimeOfDay `json:"quiet_end,omitempty"`

	CooldownHydration *int `json:"cooldown_hydration,omitempty"`
	CooldownMeals     *int `json:"cooldown_meals,omitempty"`
	CooldownPhysical  *int `json:"cooldown_physical,omitempty"`
	CooldownSedentary *int `json:"cooldown_sedentary,omitempty"`

	// Location defines wall-clock time and "today". Defaults to UTC.
	Location *time.Location `json:"-"`

	// SedentaryIgnoresQuietHours lets the sedentary rule fire inside quiet
	// hours. Off by default.
	SedentaryIgnoresQuietHours bool `json:"sedentary_ignores_quiet_hours,omitempty"`
}

func (s Settings) quietStart() TimeOfDay {
	if s.QuietStart == nil {
		return DefaultQuietStart
	}
	return normalizeTimeOfDay(time.Duration(*s.QuietStart))
}

func (s Settings) quietEnd() TimeOfDay {
	if s.QuietEnd == nil {
		return DefaultQuietEnd
	}
	return normalizeTimeOfDay(time.Duration(*s.QuietEnd))
}

func cooldownOr(v *int, def int) int {
	if v == nil || *v < 0 {
		return def
	}
	return *v
}

func (s Settings) cooldownHydration() int {
	return cooldownOr(s.CooldownHydration, DefaultCooldownHydration)
}

func (s Settings) cooldownMeals() int { return cooldownOr(s.CooldownMeals, DefaultCooldownMeals) }

func (s Settings) cooldownPhysical() int {
	return cooldownOr(s.CooldownPhysical, DefaultCooldownPhysical)
}

func (s Settings) cooldownSedentary() int {
	return cooldownOr(s.CooldownSedentary, DefaultCooldownSedentary)
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// WithDefaults returns a copy with every unset field filled in.
func (s Settings) WithDefaults() Settings {
	qs, qe := s.quietStart(), s.quietEnd()
	ch, cm, cp, cs := s.cooldownHydration(), s.cooldownMeals(), s.cooldownPhysical(), s.cooldownSedentary()
	return Settings{
		QuietStart:                 &qs,
		QuietEnd:                   &qe,
		CooldownHydration:          &ch,
		CooldownMeals:              &cm,
		CooldownPhysical:           &cp,
		CooldownSedentary:          &cs,
		Location:                   s.location(),
		SedentaryIgnoresQuietHours: s.SedentaryIgnoresQuietHours,
	}
}

// StartOfDay is local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	y, m, d := lt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
