package rules

import (
	"reflect"
	"testing"
	"time"
)

func TestDecodeEventTolerant(t *testing.T) {
	ts := at(9, 0)

	ev := DecodeEvent(EventNutrition, []byte(`{"water_ml":"250","meal_time":" Lunch ","items":"rice, beans"}`), ts)
	if ev.WaterML() != 250 || ev.MealTime() != "Lunch" {
		t.Fatalf("nutrition=%+v", ev.Nutrition)
	}
	if !reflect.DeepEqual(ev.Nutrition.Items, []string{"rice", "beans"}) {
		t.Fatalf("items=%v", ev.Nutrition.Items)
	}

	ev = DecodeEvent(EventNutrition, []byte(`{"water_ml":-5}`), ts)
	if ev.WaterML() != 0 {
		t.Fatalf("negative water should clamp to 0, got %d", ev.WaterML())
	}

	ev = DecodeEvent(EventNutrition, []byte(`{"water_ml":{"nested":true}}`), ts)
	if ev.WaterML() != 0 {
		t.Fatalf("malformed water should be 0, got %d", ev.WaterML())
	}

	ev = DecodeEvent(EventPhysical, []byte(`{"minutes":null,"walk_min":"20"}`), ts)
	if ev.ActivityMinutes() != 20 {
		t.Fatalf("ActivityMinutes=%d", ev.ActivityMinutes())
	}

	ev = DecodeEvent(EventPhysical, []byte(`{"minutes":12.7}`), ts)
	if ev.ActivityMinutes() != 12 {
		t.Fatalf("ActivityMinutes=%d", ev.ActivityMinutes())
	}

	ev = DecodeEvent(EventMental, []byte(`{"mood_score":"7","breath":"true","feelings":["calm",""]}`), ts)
	if ev.Mental.MoodScore != 7 || !ev.Mental.Breath || !reflect.DeepEqual(ev.Mental.Feelings, []string{"calm"}) {
		t.Fatalf("mental=%+v", ev.Mental)
	}
	if !ev.IsPositiveMood() {
		t.Fatalf("expected positive mood")
	}

	for _, raw := range []string{``, `not json`, `[1,2]`, `null`} {
		ev = DecodeEvent(EventNutrition, []byte(raw), ts)
		if ev.Nutrition == nil || ev.WaterML() != 0 || ev.MealTime() != "" {
			t.Fatalf("payload %q decoded to %+v", raw, ev.Nutrition)
		}
	}
	if !ev.Timestamp.Equal(ts) || ev.Type != EventNutrition {
		t.Fatalf("event header lost: %+v", ev)
	}
}

func TestEncodePayloadRoundTrip(t *testing.T) {
	orig := Event{Type: EventPhysical, Timestamp: at(7, 0), Physical: &PhysicalPayload{Activity: "walk", Minutes: 30, RPE: 4}}
	raw, err := EncodePayload(orig)
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	got := DecodeEvent(EventPhysical, raw, orig.Timestamp)
	if !reflect.DeepEqual(got, orig) {
		t.Fatalf("got %+v want %+v", got.Physical, orig.Physical)
	}
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("07:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay: %v", err)
	}
	if tod.Duration() != 7*time.Hour+30*time.Minute || tod.String() != "07:30" {
		t.Fatalf("tod=%s (%v)", tod, tod.Duration())
	}
	if _, err := ParseTimeOfDay("25:00"); err == nil {
		t.Fatalf("expected error for 25:00")
	}
	if got := NewTimeOfDay(25, 0); got != NewTimeOfDay(1, 0) {
		t.Fatalf("NewTimeOfDay should wrap, got %s", got)
	}

	var decoded TimeOfDay
	if err := decoded.UnmarshalJSON([]byte(`"22:15"`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if decoded != NewTimeOfDay(22, 15) {
		t.Fatalf("decoded=%s", decoded)
	}
}
