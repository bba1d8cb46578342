package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/apierr"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/rules"
	rulesconfig "github.com/yungbote/healthwhisperer-backend/internal/rules/config"
)

const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"

	traceAutoNudgesDisabled = "auto_nudges_disabled"
	autoNudgeRationale      = "auto-nudge"
	maxSnoozeMinutes        = 24 * 60
	jointSafetyNote         = "Consider a seated stretch if joints feel sensitive."
	suggestRecentLimit      = 5
)

type NudgeAction string

const (
	NudgeActionAccept  NudgeAction = "accept"
	NudgeActionSnooze  NudgeAction = "snooze"
	NudgeActionDismiss NudgeAction = "dismiss"
)

func (a NudgeAction) Valid() bool {
	switch a {
	case NudgeActionAccept, NudgeActionSnooze, NudgeActionDismiss:
		return true
	default:
		return false
	}
}

type EvaluationResult struct {
	Fired       []rules.FiredRule `json:"fired"`
	Trace       rules.Trace       `json:"trace"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
}

// RuleResponseInput answers a fired rule. Title and Body are the copy the
// user saw; they default to the rule's category wording when empty.
type RuleResponseInput struct {
	Action        NudgeAction
	SnoozeMinutes *int
	Title         string
	Body          string
}

type RuleResponse struct {
	RuleID       string       `json:"rule_id"`
	Action       NudgeAction  `json:"action"`
	SnoozedUntil *time.Time   `json:"snoozed_until,omitempty"`
	Nudge        *types.Nudge `json:"nudge,omitempty"`
}

type NudgeService interface {
	// Evaluate runs one pass for the authenticated user.
	Evaluate(ctx context.Context) (*EvaluationResult, error)
	EvaluateUser(ctx context.Context, userID uuid.UUID, trigger string) (*EvaluationResult, error)
	RespondRule(ctx context.Context, ruleID string, in RuleResponseInput) (*RuleResponse, error)
	Suggest(ctx context.Context, category string, current map[string]any) (*types.Nudge, error)
	RespondNudge(ctx context.Context, nudgeID uuid.UUID, action NudgeAction) (*types.Nudge, error)
	List(ctx context.Context, f repos.NudgeFilter) ([]*types.Nudge, error)
	ListRuleStates(ctx context.Context) ([]*types.RuleState, error)
}

type nudgeService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.ProfileRepo
	logRepo       repos.LogRepo
	nudgeRepo     repos.NudgeRepo
	ruleStateRepo repos.RuleStateRepo
	copy          Copywriter
	notify        NudgeNotifier
	cfg           rulesconfig.Config
	metrics       *observability.Metrics
	now           func() time.Time
}

func NewNudgeService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	logRepo repos.LogRepo,
	nudgeRepo repos.NudgeRepo,
	ruleStateRepo repos.RuleStateRepo,
	copy Copywriter,
	notify NudgeNotifier,
	cfg rulesconfig.Config,
	metrics *observability.Metrics,
) NudgeService {
	return &nudgeService{
		db:            db,
		log:           log.With("service", "NudgeService"),
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		logRepo:       logRepo,
		nudgeRepo:     nudgeRepo,
		ruleStateRepo: ruleStateRepo,
		copy:          copy,
		notify:        notify,
		cfg:           cfg,
		metrics:       metrics,
		now:           time.Now,
	}
}

// settingsFor layers the user's preferences over the deployment defaults.
// Unparseable values keep the default.
func settingsFor(prefs types.Preferences, cfg rulesconfig.Config) rules.Settings {
	st := cfg.Settings()
	if tod, err := rules.ParseTimeOfDay(prefs.QuietHours.Start); err == nil {
		st.QuietStart = &tod
	}
	if tod, err := rules.ParseTimeOfDay(prefs.QuietHours.End); err == nil {
		st.QuietEnd = &tod
	}
	for _, o := range []struct {
		dst **int
		src *int
	}{
		{&st.CooldownHydration, prefs.CooldownHydration},
		{&st.CooldownMeals, prefs.CooldownMeals},
		{&st.CooldownPhysical, prefs.CooldownPhysical},
		{&st.CooldownSedentary, prefs.CooldownSedentary},
	} {
		if o.src != nil && *o.src >= 0 {
			v := *o.src
			*o.dst = &v
		}
	}
	st.Location = userLocation(prefs)
	return st
}

func userLocation(prefs types.Preferences) *time.Location {
	tz := strings.TrimSpace(prefs.Timezone)
	if tz == "" {
		tz = types.DefaultPreferences().Timezone
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc
	}
	return time.UTC
}

// storeReader adapts the repos to the evaluator's loader, bound to one
// transaction.
type storeReader struct {
	dbc    dbctx.Context
	logs   repos.LogRepo
	states repos.RuleStateRepo
}

func (r storeReader) ListEvents(ctx context.Context, userID uuid.UUID, t rules.EventType, since *time.Time) ([]rules.Event, error) {
	rows, err := r.logs.ListAll(dbctx.Context{Ctx: ctx, Tx: r.dbc.Tx}, userID, repos.LogFilter{
		Type:  string(t),
		Since: since,
	})
	if err != nil {
		return nil, err
	}
	out := make([]rules.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, rules.DecodeEvent(rules.EventType(row.Type), row.Payload, row.Timestamp))
	}
	return out, nil
}

func (r storeReader) GetRuleState(ctx context.Context, userID uuid.UUID, ruleID string) (*rules.RuleState, error) {
	row, err := r.states.Get(dbctx.Context{Ctx: ctx, Tx: r.dbc.Tx}, userID, ruleID)
	if err != nil || row == nil {
		return nil, err
	}
	return ruleStateOf(row), nil
}

func ruleStateOf(row *types.RuleState) *rules.RuleState {
	st := &rules.RuleState{LastFiredAt: row.LastFiredAt, SnoozedUntil: row.SnoozedUntil}
	if row.FiredOnDate != nil {
		d := civilDate(*row.FiredOnDate)
		st.FiredOnDate = &d
	}
	return st
}

// ruleStateUpdate converts an evaluator state into a partial upsert.
func ruleStateUpdate(userID uuid.UUID, ruleID string, st rules.RuleState) repos.RuleStateUpdate {
	u := repos.RuleStateUpdate{
		UserID:       userID,
		RuleID:       ruleID,
		LastFiredAt:  st.LastFiredAt,
		SnoozedUntil: st.SnoozedUntil,
	}
	if st.FiredOnDate != nil {
		d := storeDate(*st.FiredOnDate)
		u.FiredOnDate = &d
	}
	return u
}

func (s *nudgeService) Evaluate(ctx context.Context) (*EvaluationResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.EvaluateUser(ctx, userID, TriggerAPI)
}

// EvaluateUser loads the snapshot, evaluates, and records every fired rule
// in one transaction. Notifications go out only after the commit.
func (s *nudgeService) EvaluateUser(ctx context.Context, userID uuid.UUID, trigger string) (res *EvaluationResult, err error) {
	start := time.Now()
	ctx, span := observability.Tracer("nudges").Start(ctx, "nudge.evaluate")
	status := "ok"
	defer func() {
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		var fired, suppressed []string
		if res != nil {
			fired, suppressed = res.Trace.Fired, res.Trace.Suppressed
			span.SetAttributes(
				attribute.Int("nudge.fired", len(fired)),
				attribute.Int("nudge.suppressed", len(suppressed)),
			)
		}
		span.SetAttributes(attribute.String("nudge.trigger", trigger), attribute.String("nudge.status", status))
		span.End()
		s.metrics.ObserveNudgeEvaluation(trigger, status, time.Since(start), fired, suppressed)
	}()

	now := s.now()
	res = &EvaluationResult{Fired: []rules.FiredRule{}, EvaluatedAt: now.UTC()}

	user, err := loadUser(dbctx.Context{Ctx: ctx}, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	prefs := types.DecodePreferences(user.Preferences)
	if !prefs.AutoNudges {
		status = "disabled"
		res.Trace = rules.Trace{Suppressed: []string{traceAutoNudgesDisabled}, Fired: []string{}}
		return res, nil
	}
	settings := settingsFor(prefs, s.cfg)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		profile, err := loadProfile(dbc, s.profileRepo, userID)
		if err != nil {
			return err
		}
		reader := storeReader{dbc: dbc, logs: s.logRepo, states: s.ruleStateRepo}
		loader := rules.Loader{Events: reader, States: reader}
		in, err := loader.Load(ctx, userID, now, RulesProfile(profile), settings)
		if err != nil {
			return err
		}
		res.Fired, res.Trace = rules.EvaluateDueNudgesWithTrace(in)
		for _, f := range res.Fired {
			st := rules.FiredState(now, settings)
			if err := s.ruleStateRepo.Upsert(dbc, ruleStateUpdate(userID, f.RuleID, st)); err != nil {
				return fmt.Errorf("record fired %s: %w", f.RuleID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("evaluate nudges: %w", err)
	}

	for _, f := range res.Fired {
		s.notify.NudgeFired(ctx, userID, f)
	}
	if len(res.Fired) > 0 {
		s.log.Debug("nudges fired", "user_id", userID, "trigger", trigger, "rules", res.Trace.Fired)
	}
	return res, nil
}

func (s *nudgeService) RespondRule(ctx context.Context, ruleID string, in RuleResponseInput) (*RuleResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !rules.KnownRule(ruleID) {
		return nil, apierr.NotFound("rule_not_found", "unknown rule %q", ruleID)
	}
	if !in.Action.Valid() {
		return nil, apierr.BadRequest("invalid_action", "unknown action %q", in.Action)
	}
	now := s.now()
	out := &RuleResponse{RuleID: ruleID, Action: in.Action}
	dbc := dbctx.Context{Ctx: ctx}

	if in.Action == NudgeActionSnooze {
		d, err := s.snoozeDuration(in.SnoozeMinutes)
		if err != nil {
			return nil, err
		}
		st := rules.SnoozeState(now, d)
		if err := s.ruleStateRepo.Upsert(dbc, ruleStateUpdate(userID, ruleID, st)); err != nil {
			return nil, fmt.Errorf("snooze rule: %w", err)
		}
		until := st.SnoozedUntil.UTC()
		out.SnoozedUntil = &until
		s.metrics.IncNudgeResponse(types.NudgeSourceRule, string(in.Action))
		return out, nil
	}

	accepted := in.Action == NudgeActionAccept
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = ruleID
	}
	row := &types.Nudge{
		UserID:      userID,
		RuleID:      ruleID,
		Source:      types.NudgeSourceRule,
		Category:    string(rules.CategoryOf(ruleID)),
		Title:       title,
		Body:        strings.TrimSpace(in.Body),
		Rationale:   autoNudgeRationale,
		Accepted:    &accepted,
		RespondedAt: &now,
	}
	if _, err := s.nudgeRepo.Create(dbc, []*types.Nudge{row}); err != nil {
		return nil, fmt.Errorf("record rule response: %w", err)
	}
	out.Nudge = row
	s.metrics.IncNudgeResponse(types.NudgeSourceRule, string(in.Action))
	s.notify.NudgeResponded(ctx, userID, row)
	return out, nil
}

func (s *nudgeService) snoozeDuration(minutes *int) (time.Duration, error) {
	if minutes == nil {
		return s.cfg.Snooze, nil
	}
	if *minutes < 1 || *minutes > maxSnoozeMinutes {
		return 0, apierr.BadRequest("invalid_snooze", "snooze_minutes must be between 1 and %d", maxSnoozeMinutes)
	}
	return time.Duration(*minutes) * time.Minute, nil
}

// normalizeCategory maps free text onto a loggable category, defaulting to
// mental.
func normalizeCategory(c string) rules.EventType {
	t := rules.EventType(strings.ToLower(strings.TrimSpace(c)))
	if t.Valid() {
		return t
	}
	return rules.EventMental
}

func (s *nudgeService) Suggest(ctx context.Context, category string, current map[string]any) (*types.Nudge, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	user, err := loadUser(dbc, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	prefs := types.DecodePreferences(user.Preferences)
	profile, err := loadProfile(dbc, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	cat := normalizeCategory(category)

	recentRows, err := s.logRepo.List(dbc, userID, repos.LogFilter{Type: string(cat), Limit: suggestRecentLimit})
	if err != nil {
		return nil, fmt.Errorf("list recent logs: %w", err)
	}
	recent := make([]map[string]any, 0, len(recentRows))
	for _, r := range recentRows {
		recent = append(recent, map[string]any{"ts": r.Timestamp, "payload": r.Payload})
	}
	if current == nil {
		current = map[string]any{}
	}

	sugg := s.copy.SuggestNudge(ctx, map[string]any{
		"category": string(cat),
		"profile":  AIProfile(profile, prefs),
		"recent":   recent,
		"current":  current,
	})
	body := sugg.Body
	if cat == rules.EventPhysical && rules.HasJointSensitivity(RulesProfile(profile)) &&
		!strings.Contains(strings.ToLower(body), "stretch") {
		body = strings.TrimSpace(body) + " " + jointSafetyNote
	}
	row := &types.Nudge{
		UserID:    userID,
		Source:    types.NudgeSourceAI,
		Category:  string(cat),
		Title:     sugg.Title,
		Body:      body,
		Rationale: sugg.Rationale,
	}
	if _, err := s.nudgeRepo.Create(dbc, []*types.Nudge{row}); err != nil {
		return nil, fmt.Errorf("store suggestion: %w", err)
	}
	return row, nil
}

// RespondNudge records the answer to a stored nudge. A snooze leaves
// accepted NULL and parks the nudge under a "nudge:<id>" rule state.
func (s *nudgeService) RespondNudge(ctx context.Context, nudgeID uuid.UUID, action NudgeAction) (*types.Nudge, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !action.Valid() {
		return nil, apierr.BadRequest("invalid_action", "unknown action %q", action)
	}
	var accepted *bool
	switch action {
	case NudgeActionAccept:
		v := true
		accepted = &v
	case NudgeActionDismiss:
		v := false
		accepted = &v
	}
	now := s.now()
	var row *types.Nudge
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		ok, err := s.nudgeRepo.SetResponse(dbc, userID, nudgeID, accepted, now)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.NotFound("nudge_not_found", "nudge not found")
		}
		if action == NudgeActionSnooze {
			st := rules.SnoozeState(now, s.cfg.Snooze)
			if err := s.ruleStateRepo.Upsert(dbc, ruleStateUpdate(userID, "nudge:"+nudgeID.String(), st)); err != nil {
				return err
			}
		}
		row, err = s.nudgeRepo.GetByID(dbc, userID, nudgeID)
		return err
	})
	if err != nil {
		var ae *apierr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, fmt.Errorf("respond nudge: %w", err)
	}
	s.metrics.IncNudgeResponse(row.Source, string(action))
	s.notify.NudgeResponded(ctx, userID, row)
	return row, nil
}

func (s *nudgeService) List(ctx context.Context, f repos.NudgeFilter) ([]*types.Nudge, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.nudgeRepo.List(dbctx.Context{Ctx: ctx}, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list nudges: %w", err)
	}
	return out, nil
}

func (s *nudgeService) ListRuleStates(ctx context.Context) ([]*types.RuleState, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.ruleStateRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("list rule states: %w", err)
	}
	return out, nil
}
