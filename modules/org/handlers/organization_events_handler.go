package handlers

import (
	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/modules/org/services"
	"github.com/iota-uz/staff-console/pkg/application"
)

// OrganizationEventsHandler drops cached organization options whenever an
// organization changes.
type OrganizationEventsHandler struct {
	org *services.OrganizationService
}

func RegisterOrganizationEventHandlers(app application.Application) {
	handler := &OrganizationEventsHandler{
		org: app.Service(services.OrganizationService{}).(*services.OrganizationService),
	}
	bus := app.EventPublisher()
	bus.Subscribe(handler.onCreated)
	bus.Subscribe(handler.onUpdated)
	bus.Subscribe(handler.onDeleted)
}

func (h *OrganizationEventsHandler) onCreated(ev *organization.CreatedEvent) {
	if h == nil || h.org == nil || ev == nil {
		return
	}
	h.org.InvalidateOptions("created")
}

func (h *OrganizationEventsHandler) onUpdated(ev *organization.UpdatedEvent) {
	if h == nil || h.org == nil || ev == nil {
		return
	}
	h.org.InvalidateOptions("updated")
}

func (h *OrganizationEventsHandler) onDeleted(ev *organization.DeletedEvent) {
	if h == nil || h.org == nil || ev == nil {
		return
	}
	h.org.InvalidateOptions("deleted")
}
