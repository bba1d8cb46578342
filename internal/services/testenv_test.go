package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	"github.com/yungbote/healthwhisperer-backend/internal/data/repos/testutil"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/ctxutil"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime"
)

type testEnv struct {
	db     *gorm.DB
	log    *logger.Logger
	users  repos.UserRepo
	tokens repos.UserTokenRepo
	prof   repos.ProfileRepo
	logs   repos.LogRepo
	nudges repos.NudgeRepo
	states repos.RuleStateRepo
	sink   *recordingEmitter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &testEnv{
		db:     db,
		log:    log,
		users:  repos.NewUserRepo(db, log),
		tokens: repos.NewUserTokenRepo(db, log),
		prof:   repos.NewProfileRepo(db, log),
		logs:   repos.NewLogRepo(db, log),
		nudges: repos.NewNudgeRepo(db, log),
		states: repos.NewRuleStateRepo(db, log),
		sink:   &recordingEmitter{},
	}
}

// seedUser commits a user with the given preference overrides and returns a
// context authenticated as them.
func (e *testEnv) seedUser(t *testing.T, prefs map[string]any) (context.Context, *types.User) {
	t.Helper()
	raw, err := json.Marshal(prefs)
	if err != nil {
		t.Fatalf("marshal prefs: %v", err)
	}
	u := &types.User{
		Email:       uuid.NewString() + "@example.com",
		Password:    "pw",
		Name:        "Dana Test",
		Preferences: datatypes.JSON(raw),
	}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: u.ID})
	return ctx, u
}

func (e *testEnv) seedLog(t *testing.T, userID uuid.UUID, typ string, payload map[string]any, ts time.Time) {
	t.Helper()
	testutil.SeedLog(t, context.Background(), e.db, userID, typ, payload, ts)
}

func (e *testEnv) notifier() NudgeNotifier { return NewNudgeNotifier(e.sink) }

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (r *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingEmitter) events(ev realtime.SSEEvent) []realtime.SSEMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []realtime.SSEMessage
	for _, m := range r.msgs {
		if m.Event == ev {
			out = append(out, m)
		}
	}
	return out
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }
