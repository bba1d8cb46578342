package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/apierr"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/gcp"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

type ExportKind string

const (
	ExportLogs   ExportKind = "logs"
	ExportNudges ExportKind = "nudges"
)

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

type Export struct {
	Kind        ExportKind
	Format      ExportFormat
	Filename    string
	ContentType string
	Body        []byte
	// ArchiveURL is set when the export was also written to the archive.
	ArchiveURL string
}

// Bundle is everything stored for one user.
type Bundle struct {
	ExportedAt  time.Time          `json:"exported_at"`
	User        *types.User        `json:"user"`
	Preferences types.Preferences  `json:"preferences"`
	Profile     *types.Profile     `json:"profile"`
	Logs        []*types.Log       `json:"logs"`
	Nudges      []*types.Nudge     `json:"nudges"`
	RulesState  []*types.RuleState `json:"rules_state"`
}

type ExportService interface {
	Today(ctx context.Context, kind ExportKind, format ExportFormat) (*Export, error)
	Bundle(ctx context.Context) (*Bundle, error)
}

type exportService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.ProfileRepo
	logRepo       repos.LogRepo
	nudgeRepo     repos.NudgeRepo
	ruleStateRepo repos.RuleStateRepo
	archive       gcp.ExportArchive
	now           func() time.Time
}

// NewExportService accepts a nil archive.
func NewExportService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	logRepo repos.LogRepo,
	nudgeRepo repos.NudgeRepo,
	ruleStateRepo repos.RuleStateRepo,
	archive gcp.ExportArchive,
) ExportService {
	return &exportService{
		log:           log.With("service", "ExportService"),
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		logRepo:       logRepo,
		nudgeRepo:     nudgeRepo,
		ruleStateRepo: ruleStateRepo,
		archive:       archive,
		now:           time.Now,
	}
}

func (s *exportService) Today(ctx context.Context, kind ExportKind, format ExportFormat) (*Export, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if kind != ExportLogs && kind != ExportNudges {
		return nil, apierr.BadRequest("invalid_export_kind", "unknown export kind %q", kind)
	}
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportJSON {
		return nil, apierr.BadRequest("invalid_export_format", "unknown export format %q", format)
	}
	d, err := loadDay(ctx, s.userRepo, nil, s.logRepo, s.nudgeRepo, userID, s.now())
	if err != nil {
		return nil, err
	}

	var body []byte
	switch {
	case kind == ExportLogs && format == ExportCSV:
		body, err = logsCSV(d.logs)
	case kind == ExportLogs:
		body, err = json.Marshal(nonNil(d.logs))
	case format == ExportCSV:
		body, err = nudgesCSV(d.nudges)
	default:
		body, err = json.Marshal(nonNil(d.nudges))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s export: %w", kind, err)
	}

	out := &Export{
		Kind:        kind,
		Format:      format,
		Filename:    fmt.Sprintf("%s_%s.%s", kind, d.date, format),
		ContentType: exportContentType(format),
		Body:        body,
	}
	if s.archive != nil {
		key := gcp.ExportKey(userID, d.date, string(kind), string(format))
		if err := s.archive.Put(ctx, key, bytes.NewReader(body)); err != nil {
			s.log.Warn("export archive failed", "user_id", userID, "key", key, "error", err)
		} else {
			out.ArchiveURL = s.archive.URL(key)
		}
	}
	return out, nil
}

func exportContentType(f ExportFormat) string {
	if f == ExportJSON {
		return "application/json"
	}
	return "text/csv"
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func logsCSV(logs []*types.Log) ([]byte, error) {
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []string{
			l.ID.String(),
			l.Type,
			l.Timestamp.UTC().Format(time.RFC3339),
			string(l.Payload),
		})
	}
	return writeCSV([]string{"id", "type", "ts", "payload"}, rows)
}

func nudgesCSV(nudges []*types.Nudge) ([]byte, error) {
	rows := make([][]string, 0, len(nudges))
	for _, n := range nudges {
		accepted, responded := "", ""
		if n.Accepted != nil {
			accepted = strconv.FormatBool(*n.Accepted)
		}
		if n.RespondedAt != nil {
			responded = n.RespondedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			n.ID.String(),
			n.CreatedAt.UTC().Format(time.RFC3339),
			n.Source,
			n.RuleID,
			n.Category,
			n.Title,
			n.Body,
			n.Rationale,
			accepted,
			responded,
		})
	}
	return writeCSV([]string{"id", "created_at", "source", "rule_id", "category", "title", "body", "rationale", "accepted", "responded_at"}, rows)
}

// Bundle reads with the repos' maximum page sizes; older history beyond
// that is not included.
func (s *exportService) Bundle(ctx context.Context) (*Bundle, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	user, err := loadUser(dbc, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	b := &Bundle{
		ExportedAt:  s.now().UTC(),
		User:        user,
		Preferences: types.DecodePreferences(user.Preferences),
	}
	if b.Profile, err = loadProfile(dbc, s.profileRepo, userID); err != nil {
		return nil, err
	}
	if b.Logs, err = s.logRepo.List(dbc, userID, repos.LogFilter{Limit: repos.MaxLogLimit}); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	if b.Nudges, err = s.nudgeRepo.List(dbc, userID, repos.NudgeFilter{Limit: repos.MaxNudgeLimit}); err != nil {
		return nil, fmt.Errorf("list nudges: %w", err)
	}
	if b.RulesState, err = s.ruleStateRepo.ListByUser(dbc, userID); err != nil {
		return nil, fmt.Errorf("list rule states: %w", err)
	}
	b.Logs, b.Nudges, b.RulesState = nonNil(b.Logs), nonNil(b.Nudges), nonNil(b.RulesState)
	return b, nil
}
