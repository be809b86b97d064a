package aggregates

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Runner      TxRunner
	Hooks       Hooks
	CASGuard    CASGuard
	LockTimeout time.Duration
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.LockTimeout == 0 {
		d.LockTimeout = DefaultLockTimeout
	}
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB, d.LockTimeout)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	return d
}

// runWrite executes fn as one transaction, maps whatever it returned onto a
// workflow error code and reports the outcome. Rule rejections are logged at
// debug, anything else at warn.
func runWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	err := MapError(op, deps.Runner.InTx(ctx, fn))
	out := WriteOutcome{Op: op, Code: domainagg.CodeOf(err), Duration: time.Since(start)}
	deps.Hooks.ObserveWrite(out)

	switch {
	case err == nil:
	case out.Rejected():
		deps.Log.Debug("Workflow write rejected", "op", op, "code", out.Code, "reason", domainagg.ReasonOf(err))
	default:
		deps.Log.Warn("Workflow write failed", "op", op, "code", out.Code, "error", err)
	}
	return err
}
