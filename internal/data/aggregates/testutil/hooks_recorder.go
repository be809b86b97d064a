package testutil

import (
	"sync"

	"github.com/yungbote/doccontrol-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
)

// HooksRecorder captures workflow write outcomes in tests.
type HooksRecorder struct {
	mu       sync.Mutex
	outcomes []aggregates.WriteOutcome
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveWrite(out aggregates.WriteOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, out)
}

// Last returns the most recent outcome, or false when none was recorded.
func (h *HooksRecorder) Last() (aggregates.WriteOutcome, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.outcomes) == 0 {
		return aggregates.WriteOutcome{}, false
	}
	return h.outcomes[len(h.outcomes)-1], true
}

// Statuses lists the recorded statuses for one operation in call order.
func (h *HooksRecorder) Statuses(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, o := range h.outcomes {
		if o.Op == op {
			out = append(out, o.Status())
		}
	}
	return out
}

// Count reports how many writes of op settled with code.
func (h *HooksRecorder) Count(op string, code domainagg.ErrorCode) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, o := range h.outcomes {
		if o.Op == op && o.Code == code {
			n++
		}
	}
	return n
}
