package rules

import (
	"math"
	"strings"
)

const (
	hydrationMLPerKG     = 30
	hydrationDefaultML   = 2000
	hydrationMinTargetML = 1200
	hydrationMaxTargetML = 3500
)

// HydrationTargetML is 30 ml per whole kg, clamped to [1200, 3500]. Unknown,
// non-finite or non-positive weight gives 2000.
func HydrationTargetML(p Profile) int {
	if p.WeightKG == nil || math.IsNaN(*p.WeightKG) || math.IsInf(*p.WeightKG, 0) {
		return hydrationDefaultML
	}
	w := math.Trunc(*p.WeightKG)
	if w <= 0 {
		return hydrationDefaultML
	}
	if w*hydrationMLPerKG >= hydrationMaxTargetML {
		return hydrationMaxTargetML
	}
	return max(hydrationMinTargetML, int(w)*hydrationMLPerKG)
}

// WalkTargetMinutes maps the activity level to a daily movement target.
func WalkTargetMinutes(p Profile) int {
	switch strings.ToLower(strings.TrimSpace(p.ActivityLevel)) {
	case "low", "lightly_active":
		return 60
	case "moderate", "moderately_active":
		return 75
	default:
		return 90
	}
}

// HasJointSensitivity is true when any condition or disability mentions
// "joint", case-insensitively.
func HasJointSensitivity(p Profile) bool {
	for _, list := range [][]string{p.MedicalConditions, p.Disabilities} {
		for _, s := range list {
			if strings.Contains(strings.ToLower(s), "joint") {
				return true
			}
		}
	}
	return false
}
