package services

import (
	"context"
	"encoding/json"
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

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, name string) (*types.User, error)
	GetPreferences(ctx context.Context) (types.Preferences, error)
	UpdatePreferences(ctx context.Context, patch map[string]any) (types.Preferences, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func loadUser(dbc dbctx.Context, userRepo repos.UserRepo, userID uuid.UUID) (*types.User, error) {
	users, err := userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("user_not_found", "user not found")
	}
	return users[0], nil
}

func (s *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return loadUser(dbctx.Context{Ctx: ctx}, s.userRepo, userID)
}

func (s *userService) UpdateName(ctx context.Context, name string) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.BadRequest("invalid_name", "name is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.userRepo.UpdateName(dbc, userID, name); err != nil {
		return nil, fmt.Errorf("update name: %w", err)
	}
	return loadUser(dbc, s.userRepo, userID)
}

func (s *userService) GetPreferences(ctx context.Context) (types.Preferences, error) {
	u, err := s.GetMe(ctx)
	if err != nil {
		return types.Preferences{}, err
	}
	return types.DecodePreferences(u.Preferences), nil
}

func (s *userService) UpdatePreferences(ctx context.Context, patch map[string]any) (types.Preferences, error) {
	u, err := s.GetMe(ctx)
	if err != nil {
		return types.Preferences{}, err
	}
	merged, err := types.MergePreferences(u.Preferences, patch)
	if err != nil {
		return types.Preferences{}, apierr.New(http.StatusBadRequest, "invalid_preferences", err)
	}
	var typed types.Preferences
	if err := json.Unmarshal(merged, &typed); err != nil {
		return types.Preferences{}, apierr.New(http.StatusBadRequest, "invalid_preferences", err)
	}
	prefs := types.DecodePreferences(merged)
	if err := validatePreferences(prefs); err != nil {
		return types.Preferences{}, apierr.New(http.StatusBadRequest, "invalid_preferences", err)
	}
	if err := s.userRepo.UpdatePreferences(dbctx.Context{Ctx: ctx}, u.ID, datatypes.JSON(merged)); err != nil {
		return types.Preferences{}, fmt.Errorf("update preferences: %w", err)
	}
	return prefs, nil
}

func validatePreferences(p types.Preferences) error {
	if _, err := rules.ParseTimeOfDay(p.QuietHours.Start); err != nil {
		return fmt.Errorf("quiet_hours.start: %w", err)
	}
	if _, err := rules.ParseTimeOfDay(p.QuietHours.End); err != nil {
		return fmt.Errorf("quiet_hours.end: %w", err)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	for name, v := range map[string]*int{
		"cooldown_hydration": p.CooldownHydration,
		"cooldown_meals":     p.CooldownMeals,
		"cooldown_physical":  p.CooldownPhysical,
		"cooldown_sedentary": p.CooldownSedentary,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s: must be >= 0", name)
		}
	}
	return nil
}
