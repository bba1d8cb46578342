package rules

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DecodeEvent builds an Event from a stored payload. Unknown keys, missing
// keys and wrongly typed values decode to zero values; it never fails.
func DecodeEvent(t EventType, raw []byte, ts time.Time) Event {
	ev := Event{Type: t, Timestamp: ts}
	switch t {
	case EventMental:
		var w struct {
			MoodScore flexInt     `json:"mood_score"`
			MoodLabel flexString  `json:"mood_label"`
			Feelings  flexStrings `json:"feelings"`
			Note      flexString  `json:"note"`
			Breath    flexBool    `json:"breath"`
		}
		decodeLoose(raw, &w)
		ev.Mental = &MentalPayload{
			MoodScore: int(w.MoodScore),
			MoodLabel: string(w.MoodLabel),
			Feelings:  []string(w.Feelings),
			Note:      string(w.Note),
			Breath:    bool(w.Breath),
		}
	case EventNutrition:
		var w struct {
			MealTime flexString  `json:"meal_time"`
			Items    flexStrings `json:"items"`
			WaterML  flexInt     `json:"water_ml"`
		}
		decodeLoose(raw, &w)
		ev.Nutrition = &NutritionPayload{
			MealTime: strings.TrimSpace(string(w.MealTime)),
			Items:    []string(w.Items),
			WaterML:  nonNegative(int(w.WaterML)),
		}
	case EventPhysical:
		var w struct {
			Activity flexString `json:"activity"`
			Minutes  flexInt    `json:"minutes"`
			WalkMin  flexInt    `json:"walk_min"`
			RPE      flexInt    `json:"rpe"`
		}
		decodeLoose(raw, &w)
		ev.Physical = &PhysicalPayload{
			Activity: string(w.Activity),
			Minutes:  nonNegative(int(w.Minutes)),
			WalkMin:  nonNegative(int(w.WalkMin)),
			RPE:      int(w.RPE),
		}
	}
	return ev
}

// EncodePayload is the inverse of DecodeEvent for the payload column.
func EncodePayload(ev Event) ([]byte, error) {
	switch {
	case ev.Mental != nil:
		return json.Marshal(ev.Mental)
	case ev.Nutrition != nil:
		return json.Marshal(ev.Nutrition)
	case ev.Physical != nil:
		return json.Marshal(ev.Physical)
	default:
		return []byte("{}"), nil
	}
}

// decodeLoose ignores top-level errors (non-object payloads). Field level
// tolerance comes from the flex types.
func decodeLoose(raw []byte, v any) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return
	}
	_ = json.Unmarshal(raw, v)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	x, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	if x > math.MaxInt32 || x < math.MinInt32 {
		return nil
	}
	*f = flexInt(int(x))
	return nil
}

type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	*f = false
	s := strings.Trim(strings.ToLower(strings.TrimSpace(string(b))), `"`)
	switch s {
	case "true", "1", "yes", "y", "on":
		*f = true
	}
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = ""
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	b = bytes.TrimSpace(b)
	if len(b) > 0 && string(b) != "null" && b[0] != '{' && b[0] != '[' {
		*f = flexString(string(b))
	}
	return nil
}

type flexStrings []string

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	*f = nil
	var list []any
	if err := json.Unmarshal(b, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			switch x := v.(type) {
			case string:
				if s := strings.TrimSpace(x); s != "" {
					out = append(out, s)
				}
			case float64:
				out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
			}
		}
		*f = out
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				*f = append(*f, p)
			}
		}
	}
	return nil
}
