package core

import (
	"github.com/iota-uz/staff-console/modules/core/infrastructure/persistence"
	"github.com/iota-uz/staff-console/modules/core/services"
	"github.com/iota-uz/staff-console/pkg/application"
	"github.com/iota-uz/staff-console/pkg/session"
)

type ModuleOptions struct {
	Sessions *session.Manager
}

func NewModule(opts *ModuleOptions) application.Module {
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	sessions := m.options.Sessions
	if sessions == nil {
		sessions = session.NewManager(nil, session.Options{Logger: app.Logger()})
	}
	app.RegisterServices(
		services.NewAuthService(
			persistence.NewAuthRepository(app.Client()),
			sessions,
			app.EventPublisher(),
			app.Logger(),
		),
		services.NewUploadService(
			persistence.NewAttachmentRepository(app.Client()),
			app.EventPublisher(),
			app.Logger(),
		),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
