package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/attachment"
	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/staff-console/modules/org/domain/aggregates/organization"
	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/pkg/application"
)

// ActionLogCreator is the part of the logs service the handler needs.
type ActionLogCreator interface {
	CreateActionLog(ctx context.Context, log *actionlog.ActionLog) error
}

type RecordEventsHandler struct {
	service ActionLogCreator
	logger  *logrus.Entry
	actor   func() string
	now     func() time.Time
}

func NewRecordEventsHandler(service ActionLogCreator, logger *logrus.Logger, actor func() string) *RecordEventsHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if actor == nil {
		actor = func() string { return "" }
	}
	return &RecordEventsHandler{
		service: service,
		logger:  logger.WithField("component", "logging.handlers"),
		actor:   actor,
		now:     time.Now,
	}
}

// Subscribe attaches the handler to every record and session event.
func (h *RecordEventsHandler) Subscribe(app application.Application) {
	bus := app.EventPublisher()
	bus.Subscribe(func(ev *employee.CreatedEvent) { h.record("employees", actionlog.ActionCreate, ev.Result.ID, ev.Result) })
	bus.Subscribe(func(ev *employee.UpdatedEvent) { h.record("employees", actionlog.ActionUpdate, ev.ID, json.RawMessage(ev.Patch)) })
	bus.Subscribe(func(ev *employee.DeletedEvent) { h.record("employees", actionlog.ActionDelete, ev.ID, nil) })

	bus.Subscribe(func(ev *organization.CreatedEvent) {
		h.record("organizations", actionlog.ActionCreate, ev.Result.ID, ev.Result)
	})
	bus.Subscribe(func(ev *organization.UpdatedEvent) {
		h.record("organizations", actionlog.ActionUpdate, ev.ID, json.RawMessage(ev.Patch))
	})
	bus.Subscribe(func(ev *organization.DeletedEvent) { h.record("organizations", actionlog.ActionDelete, ev.ID, nil) })

	bus.Subscribe(func(ev *task.CreatedEvent) { h.record("tasks", actionlog.ActionCreate, ev.Result.ID, ev.Result) })
	bus.Subscribe(func(ev *task.UpdatedEvent) { h.record("tasks", actionlog.ActionUpdate, ev.ID, json.RawMessage(ev.Patch)) })
	bus.Subscribe(func(ev *task.DeletedEvent) { h.record("tasks", actionlog.ActionDelete, ev.ID, nil) })
	bus.Subscribe(func(ev *task.CompletedEvent) { h.record("tasks", actionlog.ActionComplete, ev.Result.ID, nil) })

	bus.Subscribe(func(ev *attachment.UploadedEvent) {
		h.record("attachments", actionlog.ActionCreate, ev.Result.ID, ev.Result)
	})
	bus.Subscribe(func(ev *attachment.DeletedEvent) { h.record("attachments", actionlog.ActionDelete, ev.ID, nil) })

	bus.Subscribe(h.onSignedIn)
	bus.Subscribe(h.onSignedOut)
	bus.Subscribe(h.onRegistered)
}

func (h *RecordEventsHandler) onSignedIn(ev *user.SignedInEvent) {
	h.write(&actionlog.ActionLog{Resource: "session", Action: actionlog.ActionLogin, Actor: ev.Email, CreatedAt: ev.At})
}

func (h *RecordEventsHandler) onSignedOut(ev *user.SignedOutEvent) {
	h.write(&actionlog.ActionLog{Resource: "session", Action: actionlog.ActionLogout, Actor: ev.Email, CreatedAt: ev.At})
}

func (h *RecordEventsHandler) onRegistered(ev *user.RegisteredEvent) {
	h.write(&actionlog.ActionLog{
		Resource:  "users",
		Action:    actionlog.ActionRegister,
		RecordID:  ev.Result.ID,
		Actor:     ev.Result.Email,
		CreatedAt: h.now(),
	})
}

func (h *RecordEventsHandler) record(resource, action string, id int, after any) {
	entry := &actionlog.ActionLog{
		Resource:  resource,
		Action:    action,
		RecordID:  id,
		Actor:     h.actor(),
		CreatedAt: h.now(),
	}
	if after != nil {
		b, err := json.Marshal(after)
		if err != nil {
			h.logger.WithError(err).Warn("failed to encode action log payload")
		} else {
			entry.After = b
		}
	}
	h.write(entry)
}

func (h *RecordEventsHandler) write(entry *actionlog.ActionLog) {
	if h.service == nil {
		return
	}
	if err := h.service.CreateActionLog(context.Background(), entry); err != nil {
		h.logger.WithError(err).
			WithFields(logrus.Fields{"resource": entry.Resource, "action": entry.Action}).
			Warn("failed to persist action log")
		return
	}
	h.logger.WithFields(logrus.Fields{
		"resource":  entry.Resource,
		"action":    entry.Action,
		"record_id": entry.RecordID,
	}).Info("action recorded")
}
