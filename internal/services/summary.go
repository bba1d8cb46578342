package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/rules"
)

type NudgeStats struct {
	Accepted   int     `json:"accepted"`
	Total      int     `json:"total"`
	AcceptRate float64 `json:"accept_rate"`
}

type TodayMetrics struct {
	Date            civil.Date     `json:"date"`
	HydrationML     int            `json:"hydration_total_ml"`
	WalkingMinutes  int            `json:"walking_minutes"`
	MentalPositives int            `json:"mental_positives"`
	LogCounts       map[string]int `json:"logs_counts"`
	Nudges          NudgeStats     `json:"nudges"`
}

type TodaySummary struct {
	Metrics    TodayMetrics `json:"metrics"`
	Summary    []string     `json:"summary"`
	MicroGoals []string     `json:"micro_goals"`
}

type SummaryService interface {
	Today(ctx context.Context) (*TodaySummary, error)
	Headline(ctx context.Context) (string, error)
	Portions(ctx context.Context, mealTime string, items []string) (PortionGuidance, error)
}

type summaryService struct {
	log         *logger.Logger
	userRepo    repos.UserRepo
	profileRepo repos.ProfileRepo
	logRepo     repos.LogRepo
	nudgeRepo   repos.NudgeRepo
	copy        Copywriter
	now         func() time.Time
}

func NewSummaryService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	logRepo repos.LogRepo,
	nudgeRepo repos.NudgeRepo,
	copy Copywriter,
) SummaryService {
	return &summaryService{
		log:         log.With("service", "SummaryService"),
		userRepo:    userRepo,
		profileRepo: profileRepo,
		logRepo:     logRepo,
		nudgeRepo:   nudgeRepo,
		copy:        copy,
		now:         time.Now,
	}
}

// dayData is everything recorded since local midnight.
type dayData struct {
	user    *types.User
	prefs   types.Preferences
	profile *types.Profile
	date    civil.Date
	logs    []*types.Log
	nudges  []*types.Nudge
}

func loadDay(ctx context.Context, userRepo repos.UserRepo, profileRepo repos.ProfileRepo, logRepo repos.LogRepo, nudgeRepo repos.NudgeRepo, userID uuid.UUID, now time.Time) (*dayData, error) {
	dbc := dbctx.Context{Ctx: ctx}
	user, err := loadUser(dbc, userRepo, userID)
	if err != nil {
		return nil, err
	}
	prefs := types.DecodePreferences(user.Preferences)
	loc := userLocation(prefs)
	start := rules.StartOfDay(now, loc)

	d := &dayData{user: user, prefs: prefs, date: civil.DateOf(now.In(loc))}
	if profileRepo != nil {
		if d.profile, err = loadProfile(dbc, profileRepo, userID); err != nil {
			return nil, err
		}
	}
	if d.logs, err = logRepo.ListAll(dbc, userID, repos.LogFilter{Since: &start}); err != nil {
		return nil, fmt.Errorf("list today's logs: %w", err)
	}
	if d.nudges, err = nudgeRepo.List(dbc, userID, repos.NudgeFilter{Since: &start, Limit: repos.MaxNudgeLimit}); err != nil {
		return nil, fmt.Errorf("list today's nudges: %w", err)
	}
	return d, nil
}

func (d *dayData) events() []rules.Event {
	out := make([]rules.Event, 0, len(d.logs))
	for _, l := range d.logs {
		out = append(out, rules.DecodeEvent(rules.EventType(l.Type), l.Payload, l.Timestamp))
	}
	return out
}

// ComputeTodayMetrics aggregates the day's events and nudge responses. The
// accept rate is a percentage rounded to one decimal.
func ComputeTodayMetrics(date civil.Date, events []rules.Event, nudges []*types.Nudge) TodayMetrics {
	m := TodayMetrics{
		Date: date,
		LogCounts: map[string]int{
			string(rules.EventMental):    0,
			string(rules.EventNutrition): 0,
			string(rules.EventPhysical):  0,
		},
	}
	for _, ev := range events {
		m.LogCounts[string(ev.Type)]++
		switch ev.Type {
		case rules.EventNutrition:
			m.HydrationML += ev.WaterML()
		case rules.EventPhysical:
			m.WalkingMinutes += ev.ActivityMinutes()
		case rules.EventMental:
			if ev.IsPositiveMood() {
				m.MentalPositives++
			}
		}
	}
	m.Nudges.Total = len(nudges)
	for _, n := range nudges {
		if n.Accepted != nil && *n.Accepted {
			m.Nudges.Accepted++
		}
	}
	if m.Nudges.Total > 0 {
		m.Nudges.AcceptRate = math.Round(float64(m.Nudges.Accepted)/float64(m.Nudges.Total)*1000) / 10
	}
	return m
}

func (s *summaryService) Today(ctx context.Context) (*TodaySummary, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	d, err := loadDay(ctx, s.userRepo, s.profileRepo, s.logRepo, s.nudgeRepo, userID, s.now())
	if err != nil {
		return nil, err
	}
	m := ComputeTodayMetrics(d.date, d.events(), d.nudges)
	ds := s.copy.DailySummary(ctx, map[string]any{
		"today": map[string]any{
			"hydration_total_ml": m.HydrationML,
			"walking_minutes":    m.WalkingMinutes,
			"mental_positives":   m.MentalPositives,
			"logs_counts":        m.LogCounts,
			"nudges":             m.Nudges,
		},
		"profile": AIProfile(d.profile, d.prefs),
	})
	return &TodaySummary{Metrics: m, Summary: ds.Summary, MicroGoals: ds.MicroGoals}, nil
}

// positiveMoments turns today's positive mental logs into short phrases for
// the headline prompt.
func positiveMoments(events []rules.Event) []string {
	out := []string{}
	for _, ev := range events {
		if !ev.IsPositiveMood() {
			continue
		}
		switch {
		case ev.Mental.MoodLabel != "":
			out = append(out, "felt "+ev.Mental.MoodLabel)
		case ev.Mental.Breath:
			out = append(out, "took a mindful breath")
		default:
			out = append(out, fmt.Sprintf("mood %d/10", ev.Mental.MoodScore))
		}
	}
	return out
}

func (s *summaryService) Headline(ctx context.Context) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}
	d, err := loadDay(ctx, s.userRepo, nil, s.logRepo, s.nudgeRepo, userID, s.now())
	if err != nil {
		return "", err
	}
	first := ""
	if f := strings.Fields(d.user.Name); len(f) > 0 {
		first = f[0]
	}
	return s.copy.Headline(ctx, first, d.prefs.PrimaryFocus, positiveMoments(d.events())), nil
}

func (s *summaryService) Portions(ctx context.Context, mealTime string, items []string) (PortionGuidance, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return PortionGuidance{}, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	user, err := loadUser(dbc, s.userRepo, userID)
	if err != nil {
		return PortionGuidance{}, err
	}
	profile, err := loadProfile(dbc, s.profileRepo, userID)
	if err != nil {
		return PortionGuidance{}, err
	}
	prefs := types.DecodePreferences(user.Preferences)
	aiProfile := AIProfile(profile, prefs)
	if prefs.ShareProfileWithAI {
		aiProfile["allergies"] = listOrEmpty(profile.Allergies)
	}
	meal := map[string]any{
		"meal_time": strings.ToLower(strings.TrimSpace(mealTime)),
		"items":     []string(cleanList(items)),
	}
	return s.copy.Portions(ctx, meal, aiProfile), nil
}
