package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/openai"
)

const headlineMaxWords = 14

const (
	systemMotivation = "You are Health Whisperer. Be uplifting, supportive, non-judgmental. " +
		"Return one friendly motivational headline. Keep it under 14 words. " +
		"No medical or diagnostic claims; avoid sensitive health advice."

	systemNudge = "You are Health Whisperer. Generate a SHORT, kind, actionable nudge. " +
		"Output JSON with keys: title, body, rationale, category. Category lower-case. " +
		"Consider profile data ONLY if context.profile.share_profile_with_ai is true. " +
		"Be supportive, non-judgmental, and never include forbidden medical claims."

	systemPortions = "You are Health Whisperer. Provide simple portion guidance and optional swaps. " +
		"Output JSON with keys: portions, swaps, caution, rationale. " +
		"Consider allergies/prefs/contraindications ONLY if share_profile_with_ai is true. " +
		"Keep it practical and friendly."

	systemSummary = "You are Health Whisperer. Produce a brief daily summary and micro-goals. " +
		"Output JSON with keys: summary, micro_goals. Supportive tone, no medical claims."
)

var greetings = []string{
	"Keep going",
	"You've got this",
	"Onward",
	"Nice progress",
	"Steady and strong",
	"Small steps",
	"One step at a time",
}

type NudgeSuggestion struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Rationale string `json:"rationale"`
	Category  string `json:"category"`
}

type PortionGuidance struct {
	Portions  []string `json:"portions"`
	Swaps     []string `json:"swaps"`
	Caution   string   `json:"caution"`
	Rationale string   `json:"rationale"`
}

type DailySummary struct {
	Summary    []string `json:"summary"`
	MicroGoals []string `json:"micro_goals"`
}

// Copywriter writes user-facing copy with a language model. Every method
// falls back to fixed copy when the model is unavailable or its output is
// unusable, so callers never see an error.
type Copywriter interface {
	Headline(ctx context.Context, firstName, goalHint string, positives []string) string
	SuggestNudge(ctx context.Context, input map[string]any) NudgeSuggestion
	Portions(ctx context.Context, meal map[string]any, profile map[string]any) PortionGuidance
	DailySummary(ctx context.Context, input map[string]any) DailySummary
}

type copywriter struct {
	log *logger.Logger
	ai  openai.Client
	now func() time.Time
}

// NewCopywriter accepts a nil client; every call then returns its fallback.
func NewCopywriter(log *logger.Logger, ai openai.Client) Copywriter {
	return &copywriter{
		log: log.With("service", "Copywriter"),
		ai:  ai,
		now: time.Now,
	}
}

func (c *copywriter) rotateGreeting() string {
	return greetings[(c.now().UTC().Day()+rand.IntN(7))%len(greetings)]
}

func (c *copywriter) Headline(ctx context.Context, firstName, goalHint string, positives []string) string {
	if strings.TrimSpace(firstName) == "" {
		firstName = "Friend"
	}
	if len(positives) > 5 {
		positives = positives[:5]
	}
	line := ""
	if c.ai != nil {
		user := fmt.Sprintf("Name: %s\nGoal hint: %s\nRecent positives: %s\n\nReturn one short line (<=14 words). No medical claims.\n",
			firstName, goalHint, strings.Join(positives, "; "))
		text, err := c.ai.GenerateText(ctx, systemMotivation, user)
		if err != nil {
			observability.Current().IncLLMRequest("headline", "error")
			c.log.Warn("headline generation failed", "error", err)
		} else {
			observability.Current().IncLLMRequest("headline", "ok")
			line = text
		}
	}
	return normalizeHeadline(line, fmt.Sprintf("%s, %s! Small steps add up.", c.rotateGreeting(), firstName))
}

// normalizeHeadline folds the text onto one line and keeps at most 14 words.
func normalizeHeadline(line, fallback string) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		words = strings.Fields(fallback)
	}
	if len(words) > headlineMaxWords {
		words = words[:headlineMaxWords]
	}
	return strings.Join(words, " ")
}

var nudgeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":     map[string]any{"type": "string"},
		"body":      map[string]any{"type": "string"},
		"rationale": map[string]any{"type": "string"},
		"category":  map[string]any{"type": "string"},
	},
	"required":             []string{"title", "body", "rationale", "category"},
	"additionalProperties": false,
}

func (c *copywriter) SuggestNudge(ctx context.Context, input map[string]any) NudgeSuggestion {
	obj := c.generateJSON(ctx, systemNudge, input, "nudge", nudgeSchema)
	n := NudgeSuggestion{
		Title:     stringField(obj, "title"),
		Body:      stringField(obj, "body"),
		Rationale: stringField(obj, "rationale"),
		Category:  strings.ToLower(stringField(obj, "category")),
	}
	if n.Title == "" || n.Body == "" {
		return fallbackNudge(input)
	}
	if n.Category == "" {
		n.Category = "general"
	}
	return n
}

func fallbackNudge(input map[string]any) NudgeSuggestion {
	hint := stringField(input, "hint")
	if hint == "" {
		hint = "Take a mindful sip of water."
	}
	return NudgeSuggestion{
		Title:     "Quick hydration",
		Body:      hint,
		Rationale: "Gentle nudge when context is limited.",
		Category:  "hydration",
	}
}

var portionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"portions":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"swaps":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"caution":   map[string]any{"type": "string"},
		"rationale": map[string]any{"type": "string"},
	},
	"required":             []string{"portions", "swaps", "caution", "rationale"},
	"additionalProperties": false,
}

func (c *copywriter) Portions(ctx context.Context, meal map[string]any, profile map[string]any) PortionGuidance {
	if profile == nil {
		profile = map[string]any{}
	}
	obj := c.generateJSON(ctx, systemPortions, map[string]any{"meal": meal, "profile": profile}, "portions", portionsSchema)
	g := PortionGuidance{
		Portions:  stringsField(obj, "portions"),
		Swaps:     stringsField(obj, "swaps"),
		Caution:   stringField(obj, "caution"),
		Rationale: stringField(obj, "rationale"),
	}
	if len(g.Portions) == 0 {
		g.Portions = []string{"Add a serving of vegetables", "Include a protein source"}
	}
	if g.Swaps == nil {
		g.Swaps = []string{}
	}
	if g.Caution == "" {
		g.Caution = "Listen to your body and preferences."
	}
	if g.Rationale == "" {
		g.Rationale = "Simple, supportive portion guidance."
	}
	return g
}

var summarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"micro_goals": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required":             []string{"summary", "micro_goals"},
	"additionalProperties": false,
}

func (c *copywriter) DailySummary(ctx context.Context, input map[string]any) DailySummary {
	obj := c.generateJSON(ctx, systemSummary, input, "daily_summary", summarySchema)
	s := DailySummary{
		Summary:    stringsField(obj, "summary"),
		MicroGoals: stringsField(obj, "micro_goals"),
	}
	if len(s.Summary) == 0 {
		s.Summary = fallbackSummary(input)
	}
	if len(s.MicroGoals) == 0 {
		s.MicroGoals = []string{"Sip water with each break", "Short walk after lunch"}
	}
	return s
}

// fallbackSummary restates today's numbers when the model is unavailable.
func fallbackSummary(input map[string]any) []string {
	today, _ := input["today"].(map[string]any)
	return []string{
		fmt.Sprintf("Hydration: %v ml", valueOr(today, "hydration_total_ml", 0)),
		fmt.Sprintf("Walking: %v min", valueOr(today, "walking_minutes", 0)),
		fmt.Sprintf("Mental positives: %v", valueOr(today, "mental_positives", 0)),
	}
}

func valueOr(m map[string]any, key string, def any) any {
	if v, ok := m[key]; ok && v != nil {
		return v
	}
	return def
}

// generateJSON returns nil when the model is unavailable or fails.
func (c *copywriter) generateJSON(ctx context.Context, system string, input map[string]any, name string, schema map[string]any) map[string]any {
	if c.ai == nil {
		return nil
	}
	raw, err := json.Marshal(map[string]any{"context": input})
	if err != nil {
		c.log.Warn("copywriter input not serializable", "schema", name, "error", err)
		return nil
	}
	obj, err := c.ai.GenerateJSON(ctx, system, string(raw), name, schema)
	if err != nil {
		observability.Current().IncLLMRequest(name, "error")
		c.log.Warn("copy generation failed", "schema", name, "error", err)
		return nil
	}
	observability.Current().IncLLMRequest(name, "ok")
	return obj
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func stringsField(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	list, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
