package envutil

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("HW_TEST_STR", "  value ")
	t.Setenv("HW_TEST_INT", "42")
	t.Setenv("HW_TEST_BAD_INT", "x")
	t.Setenv("HW_TEST_BOOL", "off")
	t.Setenv("HW_TEST_DUR", "90s")
	t.Setenv("HW_TEST_SECS", "30")

	if got := String("HW_TEST_STR", "def"); got != "value" {
		t.Fatalf("String=%q", got)
	}
	if got := String("HW_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("String default=%q", got)
	}
	if got := Int("HW_TEST_INT", 1); got != 42 {
		t.Fatalf("Int=%d", got)
	}
	if got := Int("HW_TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback=%d", got)
	}
	if Bool("HW_TEST_BOOL", true) {
		t.Fatalf("Bool should be false")
	}
	if !Bool("HW_TEST_MISSING", true) {
		t.Fatalf("Bool default lost")
	}
	if got := Duration("HW_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("Duration=%v", got)
	}
	if got := Duration("HW_TEST_SECS", time.Second); got != 30*time.Second {
		t.Fatalf("Duration secs=%v", got)
	}
}
