package modules

import (
	"slices"

	"github.com/iota-uz/staff-console/modules/core"
	"github.com/iota-uz/staff-console/modules/hrm"
	"github.com/iota-uz/staff-console/modules/logging"
	"github.com/iota-uz/staff-console/modules/org"
	"github.com/iota-uz/staff-console/modules/tasks"
	"github.com/iota-uz/staff-console/pkg/application"
	"github.com/iota-uz/staff-console/pkg/session"
)

type Options struct {
	Sessions    *session.Manager
	HistoryFile string
}

// BuiltInModules lists the console modules in registration order. The
// logging module subscribes to events of the others, so it goes last.
func BuiltInModules(opts Options) []application.Module {
	var actor func() string
	if opts.Sessions != nil {
		actor = func() string {
			t, err := opts.Sessions.Current()
			if err != nil {
				return ""
			}
			return t.Email
		}
	}
	return []application.Module{
		core.NewModule(&core.ModuleOptions{Sessions: opts.Sessions}),
		hrm.NewModule(),
		org.NewModule(),
		tasks.NewModule(),
		logging.NewModule(&logging.ModuleOptions{HistoryFile: opts.HistoryFile, Actor: actor}),
	}
}

var NavLinks = slices.Concat(
	hrm.NavItems,
	org.NavItems,
	tasks.NavItems,
)

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
