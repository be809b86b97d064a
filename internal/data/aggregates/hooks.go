package aggregates

import (
	"time"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/observability"
)

// WriteOutcome is what a settled workflow write reports. Code is empty on success.
type WriteOutcome struct {
	Op       string
	Code     domainagg.ErrorCode
	Duration time.Duration
}

// Status is the metric label: "success" or the error code.
func (o WriteOutcome) Status() string {
	if o.Code == "" {
		return "success"
	}
	return string(o.Code)
}

// Rejected reports a write refused by a workflow rule, as opposed to one that
// failed on infrastructure.
func (o WriteOutcome) Rejected() bool {
	switch o.Code {
	case domainagg.CodeValidation,
		domainagg.CodeNotFound,
		domainagg.CodeForbidden,
		domainagg.CodeInvalidState,
		domainagg.CodeOutOfOrder,
		domainagg.CodeAlreadySigned,
		domainagg.CodeAlreadyFinalized,
		domainagg.CodePreconditionFailed:
		return true
	default:
		return false
	}
}

// Hooks receives one outcome per workflow write after its transaction settles.
type Hooks interface {
	ObserveWrite(out WriteOutcome)
}

type noopHooks struct{}

func (noopHooks) ObserveWrite(WriteOutcome) {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports workflow writes as aggregate metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveWrite(out WriteOutcome) {
	h.metrics.ObserveAggregateOperation(out.Op, out.Status(), out.Duration)
	switch out.Code {
	case domainagg.CodeConflict:
		h.metrics.IncAggregateConflict(out.Op)
	case domainagg.CodeRetryable:
		h.metrics.IncAggregateRetry(out.Op)
	}
}
