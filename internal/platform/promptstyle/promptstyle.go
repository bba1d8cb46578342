package promptstyle

import "strings"

const marker = "HW_PROMPT_STYLE_V1"

// ApplySystem prepends the shared wellness guardrails to a system prompt.
// mode "json" adds the strict-output line. Already-styled prompts are
// returned unchanged.
func ApplySystem(system string, mode string) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou write short copy for a personal wellness tracker.")
	b.WriteString("\nNever diagnose, prescribe, or give medical dosing.")
	b.WriteString("\nDo not shame the user about food, weight, or missed goals.")
	b.WriteString("\nOnly use facts present in the provided inputs.")
	if strings.EqualFold(strings.TrimSpace(mode), "json") {
		b.WriteString("\nReturn a single JSON object that matches the schema with no extra keys.")
	} else {
		b.WriteString("\nReply with plain text only.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}
