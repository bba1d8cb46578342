package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	if got := ApplySystem("  ", "json"); got != "" {
		t.Fatalf("blank prompt should stay blank, got %q", got)
	}

	out := ApplySystem("Generate a nudge.", "json")
	if !strings.HasPrefix(out, marker) || !strings.HasSuffix(out, "Generate a nudge.") {
		t.Fatalf("unexpected framing: %q", out)
	}
	if !strings.Contains(out, "JSON object") {
		t.Fatalf("json mode line missing: %q", out)
	}
	if again := ApplySystem(out, "json"); again != out {
		t.Fatalf("ApplySystem should be idempotent")
	}
	if text := ApplySystem("Say hi.", "text"); strings.Contains(text, "JSON object") {
		t.Fatalf("text mode should not ask for JSON: %q", text)
	}
}
