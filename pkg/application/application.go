package application

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/notification"
	"github.com/iota-uz/staff-console/pkg/types"
)

// Application is the shared registry modules plug into.
type Application interface {
	Client() *apiclient.Client
	EventPublisher() eventbus.EventBus
	Notifier() notification.Notifier
	Logger() *logrus.Logger
	NavItems() []types.NavigationItem
	RegisterNavItems(items ...types.NavigationItem)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}
}

// Module is a unit of domain functionality registered at startup.
type Module interface {
	Register(app Application) error
	Name() string
}

type ApplicationOptions struct {
	Client   *apiclient.Client
	EventBus eventbus.EventBus
	Notifier notification.Notifier
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	bus := opts.EventBus
	if bus == nil {
		bus = eventbus.NewEventPublisher(logger)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notification.Discard
	}
	return &application{
		client:         opts.Client,
		eventPublisher: bus,
		notifier:       notifier,
		logger:         logger,
		services:       make(map[reflect.Type]interface{}),
	}
}

// application with a dynamically extendable service registry
type application struct {
	client         *apiclient.Client
	eventPublisher eventbus.EventBus
	notifier       notification.Notifier
	logger         *logrus.Logger

	mu       sync.RWMutex
	services map[reflect.Type]interface{}
	navItems []types.NavigationItem
}

func (app *application) Client() *apiclient.Client {
	return app.client
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.eventPublisher
}

func (app *application) Notifier() notification.Notifier {
	return app.notifier
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

func (app *application) NavItems() []types.NavigationItem {
	app.mu.RLock()
	defer app.mu.RUnlock()
	out := make([]types.NavigationItem, len(app.navItems))
	copy(out, app.navItems)
	return out
}

func (app *application) RegisterNavItems(items ...types.NavigationItem) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.navItems = append(app.navItems, items...)
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	app.mu.Lock()
	defer app.mu.Unlock()
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	app.mu.RLock()
	svc, exists := app.services[serviceType]
	app.mu.RUnlock()
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]interface{} {
	app.mu.RLock()
	defer app.mu.RUnlock()
	out := make(map[reflect.Type]interface{}, len(app.services))
	for k, v := range app.services {
		out[k] = v
	}
	return out
}
