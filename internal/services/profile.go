package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/apierr"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/rules"
)

// ProfileInput is a partial profile update. Nil fields are left unchanged.
type ProfileInput struct {
	DOB           *string  `json:"dob"`
	Sex           *string  `json:"sex"`
	HeightCM      *float64 `json:"height_cm"`
	WeightKG      *float64 `json:"weight_kg"`
	ActivityLevel *string  `json:"activity_level"`

	DietaryPrefs       *[]string `json:"dietary_prefs"`
	Allergies          *[]string `json:"allergies"`
	MedicalConditions  *[]string `json:"medical_conditions"`
	Disabilities       *[]string `json:"disabilities"`
	Goals              *[]string `json:"goals"`
	FavoriteActivities *[]string `json:"favorite_activities"`
	HappyTriggers      *[]string `json:"happy_triggers"`
	SocialCircle       *[]string `json:"social_circle"`
	DoctorNotes        *string   `json:"doctor_notes"`
}

// ProfileSummary is derived from the stored profile for display.
type ProfileSummary struct {
	BMI              *float64 `json:"bmi"`
	BMICategory      string   `json:"bmi_category"`
	WaterTargetML    int      `json:"water_target_ml"`
	WalkTargetMin    int      `json:"walk_target_min"`
	KcalBand         string   `json:"kcal_band"`
	JointSensitivity bool     `json:"joint_sensitivity"`
	Warnings         []string `json:"warnings"`
}

type ProfileService interface {
	Get(ctx context.Context) (*types.Profile, ProfileSummary, error)
	Update(ctx context.Context, in ProfileInput) (*types.Profile, ProfileSummary, error)
}

type profileService struct {
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	now         func() time.Time
}

func NewProfileService(log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	return &profileService{
		log:         log.With("service", "ProfileService"),
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

// loadProfile never returns nil; a user without a row gets an empty profile.
func loadProfile(dbc dbctx.Context, profileRepo repos.ProfileRepo, userID uuid.UUID) (*types.Profile, error) {
	p, err := profileRepo.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		p = &types.Profile{UserID: userID}
	}
	return p, nil
}

func (s *profileService) Get(ctx context.Context) (*types.Profile, ProfileSummary, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, ProfileSummary{}, err
	}
	p, err := loadProfile(dbctx.Context{Ctx: ctx}, s.profileRepo, userID)
	if err != nil {
		return nil, ProfileSummary{}, err
	}
	return p, SummarizeProfile(p, s.now()), nil
}

func (s *profileService) Update(ctx context.Context, in ProfileInput) (*types.Profile, ProfileSummary, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, ProfileSummary{}, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := loadProfile(dbc, s.profileRepo, userID)
	if err != nil {
		return nil, ProfileSummary{}, err
	}
	if err := applyProfileInput(p, in); err != nil {
		return nil, ProfileSummary{}, apierr.New(http.StatusBadRequest, "invalid_profile", err)
	}
	if err := s.profileRepo.Upsert(dbc, p); err != nil {
		return nil, ProfileSummary{}, fmt.Errorf("save profile: %w", err)
	}
	return p, SummarizeProfile(p, s.now()), nil
}

func applyProfileInput(p *types.Profile, in ProfileInput) error {
	if in.DOB != nil {
		raw := strings.TrimSpace(*in.DOB)
		if raw == "" {
			p.DOB = nil
		} else {
			t, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				return fmt.Errorf("dob: expected YYYY-MM-DD")
			}
			d := datatypes.Date(t)
			p.DOB = &d
		}
	}
	if in.Sex != nil {
		p.Sex = strings.TrimSpace(*in.Sex)
	}
	if in.HeightCM != nil {
		if err := checkMeasure("height_cm", *in.HeightCM, 300); err != nil {
			return err
		}
		p.HeightCM = positiveOrNil(*in.HeightCM)
	}
	if in.WeightKG != nil {
		if err := checkMeasure("weight_kg", *in.WeightKG, 400); err != nil {
			return err
		}
		p.WeightKG = positiveOrNil(*in.WeightKG)
	}
	if in.ActivityLevel != nil {
		p.ActivityLevel = strings.ToLower(strings.TrimSpace(*in.ActivityLevel))
	}
	setList := func(dst *datatypes.JSONSlice[string], src *[]string) {
		if src != nil {
			*dst = cleanList(*src)
		}
	}
	setList(&p.DietaryPrefs, in.DietaryPrefs)
	setList(&p.Allergies, in.Allergies)
	setList(&p.MedicalConditions, in.MedicalConditions)
	setList(&p.Disabilities, in.Disabilities)
	setList(&p.Goals, in.Goals)
	setList(&p.FavoriteActivities, in.FavoriteActivities)
	setList(&p.HappyTriggers, in.HappyTriggers)
	setList(&p.SocialCircle, in.SocialCircle)
	if in.DoctorNotes != nil {
		p.DoctorNotes = strings.TrimSpace(*in.DoctorNotes)
	}
	return nil
}

func checkMeasure(field string, v, max float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > max {
		return fmt.Errorf("%s: must be between 0 and %g", field, max)
	}
	return nil
}

func positiveOrNil(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func cleanList(in []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return datatypes.JSONSlice[string](out)
}

// RulesProfile projects the stored profile onto what the evaluator reads.
func RulesProfile(p *types.Profile) rules.Profile {
	if p == nil {
		return rules.Profile{}
	}
	return rules.Profile{
		WeightKG:          p.WeightKG,
		ActivityLevel:     p.ActivityLevel,
		MedicalConditions: []string(p.MedicalConditions),
		Disabilities:      []string(p.Disabilities),
	}
}

// AIProfile is the profile context sent to the language model. Without
// consent only non-identifying hints are included. Doctor notes are never
// sent.
func AIProfile(p *types.Profile, prefs types.Preferences) map[string]any {
	if p == nil {
		return map[string]any{}
	}
	out := map[string]any{
		"activity_level":        p.ActivityLevel,
		"goals":                 listOrEmpty(p.Goals),
		"share_profile_with_ai": prefs.ShareProfileWithAI,
	}
	if !prefs.ShareProfileWithAI {
		return out
	}
	out["dietary_prefs"] = listOrEmpty(p.DietaryPrefs)
	out["favorite_activities"] = listOrEmpty(p.FavoriteActivities)
	out["happy_triggers"] = listOrEmpty(p.HappyTriggers)
	out["social_circle"] = listOrEmpty(p.SocialCircle)
	out["medical_conditions"] = listOrEmpty(p.MedicalConditions)
	out["disabilities"] = listOrEmpty(p.Disabilities)
	return out
}

func listOrEmpty(l datatypes.JSONSlice[string]) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// BMI returns weight/height² rounded to one decimal and its category, or
// nil and "unknown" when either measure is missing.
func BMI(weightKG, heightCM *float64) (*float64, string) {
	if weightKG == nil || heightCM == nil || *weightKG <= 0 || *heightCM <= 0 {
		return nil, "unknown"
	}
	h := *heightCM / 100
	bmi := math.Round(*weightKG/(h*h)*10) / 10
	switch {
	case bmi < 18.5:
		return &bmi, "underweight"
	case bmi < 25:
		return &bmi, "normal"
	case bmi < 30:
		return &bmi, "overweight"
	default:
		return &bmi, "obese"
	}
}

func KcalBand(activityLevel string) string {
	switch strings.ToLower(strings.TrimSpace(activityLevel)) {
	case "low", "lightly_active":
		return "~1600–2000 kcal"
	case "moderate", "moderately_active":
		return "~2000–2400 kcal"
	case "high", "very_active":
		return "~2400–3000 kcal"
	default:
		return "varies by individual"
	}
}

// RangeWarnings flags values that are valid but unusual.
func RangeWarnings(p *types.Profile, now time.Time) []string {
	warnings := []string{}
	if p.DOB != nil {
		dob := time.Time(*p.DOB)
		if !dob.Before(now) {
			warnings = append(warnings, "DOB must be in the past.")
		} else if age := int(now.Sub(dob).Hours() / 24 / 365); age < 10 || age > 110 {
			warnings = append(warnings, "Age seems out of expected range (10–110).")
		}
	}
	if p.HeightCM != nil && (*p.HeightCM < 120 || *p.HeightCM > 230) {
		warnings = append(warnings, "Height seems out of expected range (120–230 cm).")
	}
	if p.WeightKG != nil && (*p.WeightKG < 30 || *p.WeightKG > 250) {
		warnings = append(warnings, "Weight seems out of expected range (30–250 kg).")
	}
	return warnings
}

func SummarizeProfile(p *types.Profile, now time.Time) ProfileSummary {
	rp := RulesProfile(p)
	bmi, cat := BMI(p.WeightKG, p.HeightCM)
	return ProfileSummary{
		BMI:              bmi,
		BMICategory:      cat,
		WaterTargetML:    rules.HydrationTargetML(rp),
		WalkTargetMin:    rules.WalkTargetMinutes(rp),
		KcalBand:         KcalBand(p.ActivityLevel),
		JointSensitivity: rules.HasJointSensitivity(rp),
		Warnings:         RangeWarnings(p, now),
	}
}
