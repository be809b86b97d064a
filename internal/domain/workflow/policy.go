package workflow

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

const policyPathEnv = "WORKFLOW_POLICY_YAML"

//go:embed policy.yaml
var policyFS embed.FS

var (
	ErrReasonTooShort  = errors.New("reason is too short")
	ErrUnknownCategory = errors.New("unknown document category")
)

// Policy holds the tunable limits of the workflow.
type Policy struct {
	RevisionReasonMinLength  int
	AdminRejectDefaultReason string
	ObsoleteReasonMinLength  int
	CompanyStampMaxBytes     int64
	FinalPDFMaxBytes         int64
	Categories               []string
}

type yamlPolicy struct {
	Workflow string `yaml:"workflow"`
	Version  int    `yaml:"version"`
	Revision struct {
		ReasonMinLength          int    `yaml:"reason_min_length"`
		AdminRejectDefaultReason string `yaml:"admin_reject_default_reason"`
	} `yaml:"revision"`
	Obsolete struct {
		ReasonMinLength int `yaml:"reason_min_length"`
	} `yaml:"obsolete"`
	Finalize struct {
		CompanyStampMaxBytes int64    `yaml:"company_stamp_max_bytes"`
		FinalPDFMaxBytes     int64    `yaml:"final_pdf_max_bytes"`
		Categories           []string `yaml:"categories"`
	} `yaml:"finalize"`
}

// DefaultPolicy is used when no policy file can be loaded.
func DefaultPolicy() Policy {
	return Policy{
		RevisionReasonMinLength:  10,
		AdminRejectDefaultReason: "Rejected by administrator during validation",
		ObsoleteReasonMinLength:  10,
		CompanyStampMaxBytes:     2 << 20,
		FinalPDFMaxBytes:         20 << 20,
	}
}

var (
	policyOnce  sync.Once
	policyCache Policy
	policyErr   error
)

// CurrentPolicy loads the policy once, from WORKFLOW_POLICY_YAML or the embedded file.
func CurrentPolicy(log *logger.Logger) Policy {
	policyOnce.Do(func() {
		policyCache, policyErr = loadPolicy()
	})
	if policyErr != nil {
		if log != nil {
			log.Warn("workflow: policy load failed; using defaults", "error", policyErr)
		}
		return DefaultPolicy()
	}
	return policyCache
}

func loadPolicy() (Policy, error) {
	data, err := readPolicy()
	if err != nil {
		return Policy{}, err
	}
	return ParsePolicy(data)
}

func readPolicy() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(policyPathEnv)); path != "" {
		return os.ReadFile(path)
	}
	return policyFS.ReadFile("policy.yaml")
}

// ParsePolicy decodes and validates a policy document.
func ParsePolicy(data []byte) (Policy, error) {
	var raw yamlPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Policy{}, err
	}
	if strings.TrimSpace(raw.Workflow) != "document_approval" {
		return Policy{}, fmt.Errorf("unexpected workflow: %q", raw.Workflow)
	}
	p := DefaultPolicy()
	if raw.Revision.ReasonMinLength > 0 {
		p.RevisionReasonMinLength = raw.Revision.ReasonMinLength
	}
	if s := strings.TrimSpace(raw.Revision.AdminRejectDefaultReason); s != "" {
		p.AdminRejectDefaultReason = s
	}
	if raw.Obsolete.ReasonMinLength > 0 {
		p.ObsoleteReasonMinLength = raw.Obsolete.ReasonMinLength
	}
	if raw.Finalize.CompanyStampMaxBytes > 0 {
		p.CompanyStampMaxBytes = raw.Finalize.CompanyStampMaxBytes
	}
	if raw.Finalize.FinalPDFMaxBytes > 0 {
		p.FinalPDFMaxBytes = raw.Finalize.FinalPDFMaxBytes
	}
	seen := map[string]bool{}
	for _, c := range raw.Finalize.Categories {
		c = NormalizeCategory(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		p.Categories = append(p.Categories, c)
	}
	if len(AdminRejectReason(p, "")) < p.RevisionReasonMinLength {
		return Policy{}, errors.New("admin reject default reason shorter than reason minimum")
	}
	return p, nil
}

// ValidateRevisionReason enforces the minimum length on a trimmed reason.
func (p Policy) ValidateRevisionReason(reason string) (string, error) {
	return validateReason(reason, p.RevisionReasonMinLength)
}

func (p Policy) ValidateObsoleteReason(reason string) (string, error) {
	return validateReason(reason, p.ObsoleteReasonMinLength)
}

func validateReason(reason string, min int) (string, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < min {
		return "", fmt.Errorf("%w: need at least %d characters", ErrReasonTooShort, min)
	}
	return reason, nil
}

// AdminRejectReason returns the comments or the configured default.
func AdminRejectReason(p Policy, comments string) string {
	if c := strings.TrimSpace(comments); c != "" {
		return c
	}
	return p.AdminRejectDefaultReason
}

// ValidateCategory normalizes the category and checks it against the allow list.
// An empty allow list accepts any non-empty category.
func (p Policy) ValidateCategory(category string) (string, error) {
	c := NormalizeCategory(category)
	if c == "" {
		return "", fmt.Errorf("%w: category is required", ErrUnknownCategory)
	}
	if len(p.Categories) == 0 {
		return c, nil
	}
	for _, allowed := range p.Categories {
		if allowed == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCategory, c)
}

func NormalizeCategory(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-'
	}), "_")
}
