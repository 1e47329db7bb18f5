package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/internal/config"
	"github.com/jakechorley/volunteer-hub/pkg/clients/sheetsclient"
	"github.com/jakechorley/volunteer-hub/pkg/core/autoaccept"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
	"github.com/jakechorley/volunteer-hub/pkg/notify"
	"github.com/jakechorley/volunteer-hub/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg       *config.Config
	Env       string
	Database  *postgres.DB
	Compiler  *autoaccept.ExpressionCompiler
	Evaluator *autoaccept.Evaluator
	Mailer    autoaccept.Mailer
	Logger    *zap.Logger
	Ctx       context.Context
	Now       func() time.Time

	// SheetsClient is nil unless a volunteer sheet is configured
	SheetsClient *sheetsclient.Client

	appliers []*autoaccept.Applier
}

// NewApprover builds the auto-accept applier for signups. It returns nil when
// auto-accept is disabled so signups stay pending. publisher may be nil outside
// the server, where no notification streams are open.
func (app *AppContext) NewApprover(publisher notify.Publisher) services.Approver {
	if !app.Cfg.AutoAccept.Enabled {
		return nil
	}
	dispatcher := notify.NewDispatcher(app.Database, publisher, app.Logger)
	applier := autoaccept.NewApplier(app.Evaluator, app.Database, dispatcher, app.Mailer, app.Logger, app.Cfg.Location())
	app.appliers = append(app.appliers, applier)
	return applier
}

// WaitForNotices blocks until the confirmation notices of every approver built
// by NewApprover have been sent or have failed
func (app *AppContext) WaitForNotices() {
	for _, applier := range app.appliers {
		applier.Wait()
	}
}
