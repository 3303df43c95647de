package org

import (
	"github.com/iota-uz/staff-console/modules/org/handlers"
	"github.com/iota-uz/staff-console/modules/org/infrastructure/persistence"
	"github.com/iota-uz/staff-console/modules/org/services"
	"github.com/iota-uz/staff-console/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewOrganizationService(
			persistence.NewOrganizationRepository(app.Client()),
			app.EventPublisher(),
			app.Logger(),
		),
	)
	handlers.RegisterOrganizationEventHandlers(app)
	app.RegisterNavItems(NavItems...)
	return nil
}

func (m *Module) Name() string {
	return "org"
}
