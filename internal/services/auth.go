package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/healthwhisperer-backend/internal/pkg/errors"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/apierr"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/ctxutil"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

// lastSeenResolution throttles session touch writes.
const lastSeenResolution = time.Minute

type AuthConfig struct {
	JWTSecret   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	IdleTimeout time.Duration
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type JWTClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*types.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email, newPassword string) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.ProfileRepo
	userTokenRepo repos.UserTokenRepo
	cfg           AuthConfig
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	userTokenRepo repos.UserTokenRepo,
	cfg AuthConfig,
) AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		userTokenRepo: userTokenRepo,
		cfg:           cfg,
		now:           time.Now,
	}
}

func (s *authService) GetAccessTTL() time.Duration { return s.cfg.AccessTTL }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return apierr.BadRequest("invalid_email", "a valid email is required")
	}
	if password == "" {
		return apierr.BadRequest("invalid_password", "password is required")
	}
	return nil
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*types.User, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	prefs, err := json.Marshal(types.DefaultPreferences())
	if err != nil {
		return nil, err
	}

	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		Password:    string(hash),
		Name:        strings.TrimSpace(name),
		Preferences: datatypes.JSON(prefs),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := s.userRepo.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.ErrConflict
		}
		if _, err := s.userRepo.Create(dbc, []*types.User{u}); err != nil {
			return err
		}
		return s.profileRepo.Upsert(dbc, &types.Profile{UserID: u.ID})
	})
	if errors.Is(err, apperr.ErrConflict) {
		return nil, apierr.New(http.StatusConflict, "email_taken", errors.New("email already registered"))
	}
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	s.log.Info("User registered", "user_id", u.ID)
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)
	invalid := apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))
	if email == "" || password == "" {
		return nil, invalid
	}
	users, err := s.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return nil, invalid
	}
	u := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, invalid
	}

	now := s.now()
	sessionID := uuid.New()
	access, err := s.signAccessToken(u.ID, sessionID, now)
	if err != nil {
		return nil, err
	}
	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	tok := &types.UserToken{
		ID:           sessionID,
		UserID:       u.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(s.cfg.RefreshTTL).UTC(),
		LastSeenAt:   now.UTC(),
	}
	if _, err := s.userTokenRepo.Create(dbctx.Context{Ctx: ctx}, []*types.UserToken{tok}); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.BadRequest("missing_refresh_token", "refresh_token is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	toks, err := s.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if len(toks) == 0 {
		return nil, apierr.New(http.StatusUnauthorized, "invalid_refresh_token", errors.New("invalid refresh token"))
	}
	tok := toks[0]
	now := s.now()
	if !now.Before(tok.ExpiresAt) {
		return nil, apierr.New(http.StatusUnauthorized, "session_expired", errors.New("session expired"))
	}
	if err := s.checkIdle(dbc, tok, now); err != nil {
		return nil, err
	}
	access, err := s.signAccessToken(tok.UserID, tok.ID, now)
	if err != nil {
		return nil, err
	}
	if err := s.userTokenRepo.TouchLastSeen(dbc, tok.ID, now.UTC()); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func (s *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("not logged in"))
	}
	if err := s.userTokenRepo.SoftDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.SessionID}); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

// ResetPassword sets a new password without email verification and ends all
// of the user's sessions.
func (s *authService) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)
	if err := validateCredentials(email, newPassword); err != nil {
		return err
	}
	users, err := s.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if len(users) == 0 {
		return apierr.NotFound("user_not_found", "no account for that email")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.userRepo.UpdatePassword(dbc, users[0].ID, string(hash)); err != nil {
			return err
		}
		return s.userTokenRepo.SoftDeleteByUserIDs(dbc, []uuid.UUID{users[0].ID})
	})
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	unauthorized := func(msg string) error {
		return apierr.New(http.StatusUnauthorized, "unauthorized", errors.New(msg))
	}
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ctx, unauthorized("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, unauthorized("invalid token subject")
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ctx, unauthorized("invalid token session")
	}

	dbc := dbctx.Context{Ctx: ctx}
	toks, err := s.userTokenRepo.GetByIDs(dbc, []uuid.UUID{sessionID})
	if err != nil {
		return ctx, fmt.Errorf("lookup session: %w", err)
	}
	if len(toks) == 0 || toks[0].UserID != userID {
		return ctx, unauthorized("session ended")
	}
	now := s.now()
	if err := s.checkIdle(dbc, toks[0], now); err != nil {
		return ctx, err
	}
	if now.Sub(toks[0].LastSeenAt) >= lastSeenResolution {
		if err := s.userTokenRepo.TouchLastSeen(dbc, sessionID, now.UTC()); err != nil {
			s.log.Warn("touch session failed", "session_id", sessionID, "error", err)
		}
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SessionID:   sessionID,
	}), nil
}

// checkIdle ends sessions that have been idle longer than the configured
// timeout.
func (s *authService) checkIdle(dbc dbctx.Context, tok *types.UserToken, now time.Time) error {
	if s.cfg.IdleTimeout <= 0 || tok.LastSeenAt.IsZero() {
		return nil
	}
	if now.Sub(tok.LastSeenAt) <= s.cfg.IdleTimeout {
		return nil
	}
	if err := s.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{tok.ID}); err != nil {
		s.log.Warn("end idle session failed", "session_id", tok.ID, "error", err)
	}
	return apierr.New(http.StatusUnauthorized, "session_timeout", errors.New("session timed out"))
}

func (s *authService) signAccessToken(userID, sessionID uuid.UUID, now time.Time) (string, error) {
	claims := JWTClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// requireUser returns the authenticated user's id from ctx.
func requireUser(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apierr.New(http.StatusUnauthorized, "unauthorized", errors.New("not logged in"))
	}
	return rd.UserID, nil
}
