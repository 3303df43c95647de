package main

import (
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/staff-console/modules"
	coreservices "github.com/iota-uz/staff-console/modules/core/services"
	hrmservices "github.com/iota-uz/staff-console/modules/hrm/services"
	logsservices "github.com/iota-uz/staff-console/modules/logging/services"
	orgservices "github.com/iota-uz/staff-console/modules/org/services"
	taskservices "github.com/iota-uz/staff-console/modules/tasks/services"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/application"
	"github.com/iota-uz/staff-console/pkg/configuration"
	"github.com/iota-uz/staff-console/pkg/dashboard"
	"github.com/iota-uz/staff-console/pkg/notification"
	"github.com/iota-uz/staff-console/pkg/session"
)

// runtime is everything a command needs to talk to the API.
type runtime struct {
	conf     *configuration.Configuration
	logger   *logrus.Logger
	client   *apiclient.Client
	sessions *session.Manager
	app      application.Application
	notifier notification.Notifier
	title    *dashboard.Title
	setTitle dashboard.TitleSetter
	output   string
	out      io.Writer
}

func openRuntime(cmd *cobra.Command, opts *rootOptions) (*runtime, error) {
	conf, err := configuration.Load(opts.envFiles...)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("configuration: %w", err))
	}
	logger := conf.Logger()

	sessions := session.NewManager(session.NewFileStore(conf.SessionFile), session.Options{Logger: logger})
	if err := sessions.Restore(); err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.WithError(err).Warn("stored session ignored")
	}

	clientOpts := apiclient.OptionsFromConfig(conf)
	clientOpts.Tokens = sessions
	client, err := apiclient.New(clientOpts)
	if err != nil {
		conf.Unload()
		return nil, withCode(exitUsage, err)
	}

	notifier := notification.NewWriterNotifier(cmd.ErrOrStderr())
	app := application.New(&application.ApplicationOptions{
		Client:   client,
		Notifier: notifier,
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules(modules.Options{
		Sessions:    sessions,
		HistoryFile: conf.HistoryFile,
	})...); err != nil {
		conf.Unload()
		return nil, errors.Wrap(err, "load modules")
	}

	title, setTitle := dashboard.NewTitle(conf.DocumentTitle)
	return &runtime{
		conf:     conf,
		logger:   logger,
		client:   client,
		sessions: sessions,
		app:      app,
		notifier: notifier,
		title:    title,
		setTitle: setTitle,
		output:   opts.output,
		out:      cmd.OutOrStdout(),
	}, nil
}

func (rt *runtime) Close() {
	rt.conf.Unload()
}

func (rt *runtime) json() bool {
	return rt.output == outputJSON
}

// requireSession fails with the auth exit code when nobody is signed in.
func (rt *runtime) requireSession() error {
	if _, err := rt.sessions.Current(); err != nil {
		return withCode(exitAuth, errors.New("not signed in: run `console login` first"))
	}
	return nil
}

func (rt *runtime) authService() *coreservices.AuthService {
	return rt.app.Service(coreservices.AuthService{}).(*coreservices.AuthService)
}

func (rt *runtime) employeeService() *hrmservices.EmployeeService {
	return rt.app.Service(hrmservices.EmployeeService{}).(*hrmservices.EmployeeService)
}

func (rt *runtime) organizationService() *orgservices.OrganizationService {
	return rt.app.Service(orgservices.OrganizationService{}).(*orgservices.OrganizationService)
}

func (rt *runtime) taskService() *taskservices.TaskService {
	return rt.app.Service(taskservices.TaskService{}).(*taskservices.TaskService)
}

func (rt *runtime) logsService() *logsservices.LogsService {
	return rt.app.Service(logsservices.LogsService{}).(*logsservices.LogsService)
}

// withRuntime opens a runtime around fn. Commands that talk to protected
// endpoints pass auth=true.
func withRuntime(cmd *cobra.Command, opts *rootOptions, auth bool, fn func(rt *runtime) error) error {
	rt, err := openRuntime(cmd, opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	if auth {
		if err := rt.requireSession(); err != nil {
			return err
		}
	}
	return fn(rt)
}
