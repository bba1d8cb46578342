package rules

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is an offset from local midnight. Values outside [0, 24h) are
// wrapped into that range.
type TimeOfDay time.Duration

const day = 24 * time.Hour

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return normalizeTimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// TimeOfDayOf returns the wall-clock offset of t from midnight in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	d := time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
	return TimeOfDay(d)
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", raw)
}

func normalizeTimeOfDay(d time.Duration) TimeOfDay {
	d %= day
	if d < 0 {
		d += day
	}
	return TimeOfDay(d)
}

func (t TimeOfDay) Duration() time.Duration { return time.Duration(t) }

func (t TimeOfDay) String() string {
	d := time.Duration(normalizeTimeOfDay(time.Duration(t)))
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	s := int((d % time.Minute) / time.Second)
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML lets nudge config files write quiet hours as "22:00".
func (t *TimeOfDay) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
