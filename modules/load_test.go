package modules

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/modules/core/services"
	hrmservices "github.com/iota-uz/staff-console/modules/hrm/services"
	logsservices "github.com/iota-uz/staff-console/modules/logging/services"
	orgservices "github.com/iota-uz/staff-console/modules/org/services"
	taskservices "github.com/iota-uz/staff-console/modules/tasks/services"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/application"
	"github.com/iota-uz/staff-console/pkg/dashboard"
)

func TestLoad_RegistersEveryService(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	client, err := apiclient.New(apiclient.Options{BaseURL: "http://localhost:8000/api", Logger: logger})
	require.NoError(t, err)

	app := application.New(&application.ApplicationOptions{Client: client, Logger: logger})
	require.NoError(t, Load(app, BuiltInModules(Options{})...))

	require.NotNil(t, app.Service(services.AuthService{}))
	require.NotNil(t, app.Service(services.UploadService{}))
	require.NotNil(t, app.Service(hrmservices.EmployeeService{}))
	require.NotNil(t, app.Service(orgservices.OrganizationService{}))
	require.NotNil(t, app.Service(taskservices.TaskService{}))
	require.NotNil(t, app.Service(logsservices.LogsService{}))

	require.Equal(t, NavLinks, app.NavItems())
	require.Greater(t, app.EventPublisher().SubscribersCount(), 3)
}

func TestNavLinks_MatchDashboard(t *testing.T) {
	require.Equal(t, dashboard.Navigation(), NavLinks)
}
