package aggregates

import (
	"testing"
	"time"
)

func TestLockTimeoutStatement(t *testing.T) {
	if got := lockTimeoutStatement("postgres", 2*time.Second); got != "SET LOCAL lock_timeout = 2000" {
		t.Fatalf("postgres: got=%q", got)
	}
	if got := lockTimeoutStatement("postgres", time.Microsecond); got != "SET LOCAL lock_timeout = 1" {
		t.Fatalf("sub-millisecond: got=%q", got)
	}
	if got := lockTimeoutStatement("sqlite", time.Second); got != "" {
		t.Fatalf("sqlite: got=%q", got)
	}
	if got := lockTimeoutStatement("postgres", 0); got != "" {
		t.Fatalf("disabled: got=%q", got)
	}
}
