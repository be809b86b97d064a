package workflow

import (
	"errors"
	"testing"
)

func TestEmbeddedPolicyParses(t *testing.T) {
	data, err := policyFS.ReadFile("policy.yaml")
	if err != nil {
		t.Fatalf("read embedded policy: %v", err)
	}
	p, err := ParsePolicy(data)
	if err != nil {
		t.Fatalf("parse embedded policy: %v", err)
	}
	if p.RevisionReasonMinLength != 10 {
		t.Fatalf("reason min: want=10 got=%d", p.RevisionReasonMinLength)
	}
	if p.CompanyStampMaxBytes != 2097152 || p.FinalPDFMaxBytes != 20971520 {
		t.Fatalf("size bounds: stamp=%d pdf=%d", p.CompanyStampMaxBytes, p.FinalPDFMaxBytes)
	}
	if _, err := p.ValidateCategory("management"); err != nil {
		t.Fatalf("MANAGEMENT must be allowed: %v", err)
	}
	if _, err := p.ValidateCategory("marketing"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("unknown category: got=%v", err)
	}
}

func TestParsePolicyRejectsWrongWorkflow(t *testing.T) {
	if _, err := ParsePolicy([]byte("workflow: other\n")); err == nil {
		t.Fatalf("expected error for foreign workflow")
	}
}

func TestValidateRevisionReason(t *testing.T) {
	p := DefaultPolicy()
	if _, err := p.ValidateRevisionReason("too short"); !errors.Is(err, ErrReasonTooShort) {
		t.Fatalf("9 chars: want ErrReasonTooShort got=%v", err)
	}
	got, err := p.ValidateRevisionReason("  Please fix the date  ")
	if err != nil || got != "Please fix the date" {
		t.Fatalf("valid reason: got=%q err=%v", got, err)
	}
	if _, err := p.ValidateRevisionReason("ñññññññññ"); !errors.Is(err, ErrReasonTooShort) {
		t.Fatalf("runes are counted, not bytes: got=%v", err)
	}
}

func TestAdminRejectReasonDefault(t *testing.T) {
	p := DefaultPolicy()
	if got := AdminRejectReason(p, " "); got != "Rejected by administrator during validation" {
		t.Fatalf("default: got=%q", got)
	}
	if got := AdminRejectReason(p, "Wrong template"); got != "Wrong template" {
		t.Fatalf("comments: got=%q", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := NormalizeCategory(" human resources "); got != "HUMAN_RESOURCES" {
		t.Fatalf("normalize: got=%q", got)
	}
}
