package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

// maxClockSkew bounds how far in the future a client timestamp may be.
const maxClockSkew = 5 * time.Minute

var mealTimes = map[string]bool{"breakfast": true, "lunch": true, "dinner": true, "snack": true}

type LogService interface {
	Create(ctx context.Context, t rules.EventType, payload json.RawMessage, ts *time.Time) (*types.Log, error)
	List(ctx context.Context, f repos.LogFilter) ([]*types.Log, error)
	Delete(ctx context.Context, logID uuid.UUID) error
}

type logService struct {
	log     *logger.Logger
	logRepo repos.LogRepo
	notify  NudgeNotifier
	now     func() time.Time
}

func NewLogService(log *logger.Logger, logRepo repos.LogRepo, notify NudgeNotifier) LogService {
	return &logService{
		log:     log.With("service", "LogService"),
		logRepo: logRepo,
		notify:  notify,
		now:     time.Now,
	}
}

func (s *logService) Create(ctx context.Context, t rules.EventType, payload json.RawMessage, ts *time.Time) (*types.Log, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !t.Valid() {
		return nil, apierr.BadRequest("invalid_log_type", "unknown log type %q", t)
	}
	now := s.now()
	at := now
	if ts != nil && !ts.IsZero() {
		if ts.After(now.Add(maxClockSkew)) {
			return nil, apierr.BadRequest("invalid_timestamp", "timestamp is in the future")
		}
		at = *ts
	}
	ev, err := ValidatePayload(t, payload, at)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_payload", err)
	}
	raw, err := rules.EncodePayload(ev)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	row := &types.Log{
		UserID:    userID,
		Type:      string(t),
		Payload:   datatypes.JSON(raw),
		Timestamp: at.UTC(),
	}
	if _, err := s.logRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Log{row}); err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}
	if s.notify != nil {
		s.notify.LogCreated(ctx, userID, row)
	}
	return row, nil
}

// ValidatePayload strictly decodes a client payload for t and checks value
// ranges. Stored payloads are read back leniently with rules.DecodeEvent.
func ValidatePayload(t rules.EventType, payload json.RawMessage, ts time.Time) (rules.Event, error) {
	ev := rules.Event{Type: t, Timestamp: ts}
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	switch t {
	case rules.EventMental:
		var p rules.MentalPayload
		if err := dec.Decode(&p); err != nil {
			return ev, fmt.Errorf("mental payload: %w", err)
		}
		if p.MoodScore < 0 || p.MoodScore > 10 {
			return ev, errors.New("mood_score must be between 0 and 10")
		}
		p.MoodLabel = strings.TrimSpace(p.MoodLabel)
		p.Note = strings.TrimSpace(p.Note)
		p.Feelings = []string(cleanList(p.Feelings))
		if len(p.Feelings) == 0 {
			p.Feelings = nil
		}
		ev.Mental = &p
	case rules.EventNutrition:
		var p rules.NutritionPayload
		if err := dec.Decode(&p); err != nil {
			return ev, fmt.Errorf("nutrition payload: %w", err)
		}
		if p.WaterML < 0 {
			return ev, errors.New("water_ml must be >= 0")
		}
		p.MealTime = strings.ToLower(strings.TrimSpace(p.MealTime))
		if p.MealTime != "" && !mealTimes[p.MealTime] {
			return ev, fmt.Errorf("meal_time must be one of breakfast, lunch, dinner, snack")
		}
		p.Items = []string(cleanList(p.Items))
		if len(p.Items) == 0 {
			p.Items = nil
		}
		ev.Nutrition = &p
	case rules.EventPhysical:
		var p rules.PhysicalPayload
		if err := dec.Decode(&p); err != nil {
			return ev, fmt.Errorf("physical payload: %w", err)
		}
		if p.Minutes < 0 || p.WalkMin < 0 {
			return ev, errors.New("minutes must be >= 0")
		}
		if p.RPE < 0 || p.RPE > 10 {
			return ev, errors.New("rpe must be between 0 and 10")
		}
		p.Activity = strings.ToLower(strings.TrimSpace(p.Activity))
		ev.Physical = &p
	default:
		return ev, fmt.Errorf("unknown log type %q", t)
	}
	return ev, nil
}

func (s *logService) List(ctx context.Context, f repos.LogFilter) ([]*types.Log, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if f.Type != "" && !rules.EventType(f.Type).Valid() {
		return nil, apierr.BadRequest("invalid_log_type", "unknown log type %q", f.Type)
	}
	out, err := s.logRepo.List(dbctx.Context{Ctx: ctx}, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return out, nil
}

func (s *logService) Delete(ctx context.Context, logID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := s.logRepo.DeleteByID(dbctx.Context{Ctx: ctx}, userID, logID)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	if !ok {
		return apierr.NotFound("log_not_found", "log not found")
	}
	return nil
}
