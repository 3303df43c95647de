package hrm

import (
	"github.com/iota-uz/staff-console/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/staff-console/modules/hrm/services"
	"github.com/iota-uz/staff-console/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewEmployeeService(persistence.NewEmployeeRepository(app.Client()), app.EventPublisher()),
	)
	app.RegisterNavItems(NavItems...)
	return nil
}

func (m *Module) Name() string {
	return "hrm"
}
