package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/ctxutil"
)

func (e *testEnv) authService(now *time.Time) *authService {
	svc := NewAuthService(e.db, e.log, e.users, e.prof, e.tokens, AuthConfig{
		JWTSecret:   "test-secret",
		IdleTimeout: 2 * time.Hour,
	}).(*authService)
	svc.now = func() time.Time { return *now }
	return svc
}

func TestRegisterLoginAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	svc := env.authService(&now)
	ctx := context.Background()
	email := uuid.NewString() + "@Example.com"

	u, err := svc.Register(ctx, "  "+email+" ", "hunter2", "Dana")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != normalizeEmail(email) || u.Password == "hunter2" {
		t.Fatalf("user=%+v", u)
	}
	prof, err := env.prof.GetByUserID(dbctx.Context{Ctx: ctx}, u.ID)
	if err != nil || prof == nil {
		t.Fatalf("empty profile not created: %v", err)
	}

	if _, err := svc.Register(ctx, email, "x", "Dup"); statusOf(err) != http.StatusConflict {
		t.Fatalf("duplicate: err=%v", err)
	}
	if _, err := svc.Register(ctx, "not-an-email", "x", ""); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("bad email: err=%v", err)
	}
	if _, err := svc.Login(ctx, email, "wrong"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("wrong password: err=%v", err)
	}

	pair, err := svc.Login(ctx, email, "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	authed, err := svc.SetContextFromToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(authed)
	if rd == nil || rd.UserID != u.ID || rd.SessionID == uuid.Nil {
		t.Fatalf("request data=%+v", rd)
	}

	if _, err := svc.SetContextFromToken(ctx, pair.AccessToken+"x"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("tampered token: err=%v", err)
	}

	if err := svc.Logout(authed); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, pair.AccessToken); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("token after logout: err=%v", err)
	}
}

func TestRefreshAndIdleTimeout(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	svc := env.authService(&now)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	if _, err := svc.Register(ctx, email, "pw", "Dana"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, err := svc.Login(ctx, email, "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	now = now.Add(20 * time.Minute)
	if _, err := svc.SetContextFromToken(ctx, pair.AccessToken); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expired access token accepted: err=%v", err)
	}
	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fresh.RefreshToken != pair.RefreshToken {
		t.Fatalf("refresh token rotated")
	}
	if _, err := svc.SetContextFromToken(ctx, fresh.AccessToken); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	now = now.Add(3 * time.Hour)
	if _, err := svc.Refresh(ctx, pair.RefreshToken); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("idle session refreshed: err=%v", err)
	}
	if _, err := svc.Refresh(ctx, "nope"); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("unknown refresh token: err=%v", err)
	}
}

func TestResetPasswordEndsSessions(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	svc := env.authService(&now)
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	if _, err := svc.Register(ctx, email, "old", "Dana"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, err := svc.Login(ctx, email, "old")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.ResetPassword(ctx, email, "new"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.SetContextFromToken(ctx, pair.AccessToken); statusOf(err) != http.StatusUnauthorized {
		t.Fatalf("old session survived reset: err=%v", err)
	}
	if _, err := svc.Login(ctx, email, "new"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
	if err := svc.ResetPassword(ctx, uuid.NewString()+"@example.com", "x"); statusOf(err) != http.StatusNotFound {
		t.Fatalf("unknown email: err=%v", err)
	}
}
