package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/user"
	"github.com/iota-uz/staff-console/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/staff-console/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/staff-console/modules/tasks/domain/aggregates/task"
	"github.com/iota-uz/staff-console/pkg/application"
	"github.com/iota-uz/staff-console/pkg/eventbus"
)

type stubLogsService struct {
	created []*actionlog.ActionLog
}

func (s *stubLogsService) CreateActionLog(ctx context.Context, log *actionlog.ActionLog) error {
	s.created = append(s.created, log)
	return nil
}

func TestRecordEventsHandler_PublishesToLogsService(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(nil),
		Logger:   logger,
	})

	stubSvc := &stubLogsService{}
	handler := NewRecordEventsHandler(stubSvc, logger, func() string { return "ann@example.com" })
	handler.Subscribe(app)

	bus := app.EventPublisher()
	bus.Publish(employee.NewCreatedEvent(employee.CreateDTO{FirstName: "Bob"}, employee.Employee{ID: 8, FirstName: "Bob"}))
	bus.Publish(task.NewUpdatedEvent(3, []byte(`{"comment":"later"}`), task.Task{ID: 3}))
	bus.Publish(&user.SignedInEvent{Email: "ann@example.com", At: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})

	require.Len(t, stubSvc.created, 3)

	created := stubSvc.created[0]
	require.Equal(t, "employees", created.Resource)
	require.Equal(t, actionlog.ActionCreate, created.Action)
	require.Equal(t, 8, created.RecordID)
	require.Equal(t, "ann@example.com", created.Actor)
	require.Contains(t, string(created.After), `"first_name":"Bob"`)

	updated := stubSvc.created[1]
	require.Equal(t, "tasks", updated.Resource)
	require.JSONEq(t, `{"comment":"later"}`, string(updated.After))

	login := stubSvc.created[2]
	require.Equal(t, "session", login.Resource)
	require.Equal(t, actionlog.ActionLogin, login.Action)
}
