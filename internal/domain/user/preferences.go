package user

import (
	"encoding/json"
	"strings"
)

type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Preferences are per-user settings stored as JSON on the user row.
type Preferences struct {
	ShareProfileWithAI bool       `json:"share_profile_with_ai"`
	QuietHours         QuietHours `json:"quiet_hours"`
	PrimaryFocus       string     `json:"primary_focus"`
	Timezone           string     `json:"timezone"`
	CrisisHelpText     string     `json:"crisis_help_text"`
	CrisisHelpURL      string     `json:"crisis_help_url"`

	AutoNudges        bool `json:"auto_nudges"`
	CooldownHydration *int `json:"cooldown_hydration,omitempty"`
	CooldownMeals     *int `json:"cooldown_meals,omitempty"`
	CooldownPhysical  *int `json:"cooldown_physical,omitempty"`
	CooldownSedentary *int `json:"cooldown_sedentary,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		ShareProfileWithAI: true,
		QuietHours:         QuietHours{Start: "22:00", End: "07:00"},
		PrimaryFocus:       "hydration",
		Timezone:           "America/Chicago",
		CrisisHelpText:     "Get help",
		CrisisHelpURL:      "https://988lifeline.org/",
		AutoNudges:         true,
	}
}

// DecodePreferences overlays stored JSON on the defaults. Malformed input
// yields the defaults.
func DecodePreferences(raw []byte) Preferences {
	p := DefaultPreferences()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return p
	}
	overlay := p
	if err := json.Unmarshal(raw, &overlay); err != nil {
		return p
	}
	if strings.TrimSpace(overlay.QuietHours.Start) == "" {
		overlay.QuietHours.Start = p.QuietHours.Start
	}
	if strings.TrimSpace(overlay.QuietHours.End) == "" {
		overlay.QuietHours.End = p.QuietHours.End
	}
	if strings.TrimSpace(overlay.Timezone) == "" {
		overlay.Timezone = p.Timezone
	}
	return overlay
}

// MergePreferences applies a partial JSON object over the stored one and
// returns the merged raw JSON. Keys are replaced, not deep-merged, except
// quiet_hours which merges start/end individually.
func MergePreferences(stored []byte, patch map[string]any) ([]byte, error) {
	base := map[string]any{}
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &base); err != nil || base == nil {
			base = map[string]any{}
		}
	}
	for k, v := range patch {
		if k == "quiet_hours" {
			if qp, ok := v.(map[string]any); ok {
				cur, _ := base[k].(map[string]any)
				if cur == nil {
					cur = map[string]any{}
				}
				for qk, qv := range qp {
					cur[qk] = qv
				}
				base[k] = cur
				continue
			}
		}
		if v == nil {
			delete(base, k)
			continue
		}
		base[k] = v
	}
	return json.Marshal(base)
}
