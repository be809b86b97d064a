package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/doccontrol-backend/internal/data/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/domain/workflow"
	"github.com/yungbote/doccontrol-backend/internal/notify"
	"github.com/yungbote/doccontrol-backend/internal/observability"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
	"github.com/yungbote/doccontrol-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Workflow   services.WorkflowService
	Dispatcher *notify.Dispatcher
	Emitter    notify.Emitter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(log, cfg.JWTSecretKey)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	certificates, err := services.NewCertificateRenderer()
	if err != nil {
		return Services{}, fmt.Errorf("init certificate renderer: %w", err)
	}

	policy := workflow.CurrentPolicy(log)

	aggregate := aggregates.NewDocumentWorkflowAggregate(aggregates.DocumentWorkflowAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:          db,
			Log:         log,
			Hooks:       aggregates.NewObservabilityHooks(metrics),
			LockTimeout: cfg.WorkflowLockTimeout,
		},
		Documents: reposet.Document,
		Approvals: reposet.Approval,
		Revisions: reposet.RevisionRequest,
		Directory: reposet.User,
		Policy:    policy,
	})

	dispatcher := notify.NewDispatcher(log, notify.DispatcherConfig{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
		Timeout:   cfg.NotifyTimeout,
	}, metrics)
	activity := clients.activitySink(reposet)
	emitter := notify.NewEmitter(log, dispatcher, activity, clients.Notifier)

	wf := services.NewWorkflowService(log, services.WorkflowServiceDeps{
		Aggregate:    aggregate,
		Documents:    reposet.Document,
		Approvals:    reposet.Approval,
		Revisions:    reposet.RevisionRequest,
		Directory:    reposet.User,
		Files:        services.NewFileStore(log, clients.Bucket, metrics),
		Certificates: certificates,
		Emitter:      emitter,
		Activity:     activity,
		Metrics:      metrics,
		Policy:       policy,
	})

	return Services{
		Auth:       auth,
		Workflow:   wf,
		Dispatcher: dispatcher,
		Emitter:    emitter,
	}, nil
}
