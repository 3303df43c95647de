package logging

import (
	"github.com/iota-uz/staff-console/modules/logging/handlers"
	"github.com/iota-uz/staff-console/modules/logging/infrastructure/persistence"
	"github.com/iota-uz/staff-console/modules/logging/services"
	"github.com/iota-uz/staff-console/pkg/application"
)

type ModuleOptions struct {
	// HistoryFile stores the action log; empty keeps it in memory.
	HistoryFile string
	Actor       func() string
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	svc := services.NewLogsService(persistence.NewActionLogRepository(m.options.HistoryFile))
	app.RegisterServices(svc)
	handlers.NewRecordEventsHandler(svc, app.Logger(), m.options.Actor).Subscribe(app)
	return nil
}

func (m *Module) Name() string {
	return "logging"
}
