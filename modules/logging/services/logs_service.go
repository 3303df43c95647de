package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/staff-console/pkg/serrors"
)

var knownActions = map[string]bool{
	actionlog.ActionCreate:   true,
	actionlog.ActionUpdate:   true,
	actionlog.ActionDelete:   true,
	actionlog.ActionComplete: true,
	actionlog.ActionLogin:    true,
	actionlog.ActionLogout:   true,
	actionlog.ActionRegister: true,
}

// LogsService reads and appends the local action history.
type LogsService struct {
	actionRepo actionlog.Repository
	now        func() time.Time
}

func NewLogsService(actionRepo actionlog.Repository) *LogsService {
	return &LogsService{actionRepo: actionRepo, now: time.Now}
}

func validateFindParams(params *actionlog.FindParams) error {
	errs := serrors.ValidationErrors{}
	if params.Action != "" && !knownActions[params.Action] {
		errs["action"] = "unknown action " + params.Action
	}
	if params.Limit < 0 {
		errs["limit"] = "must not be negative"
	}
	if params.Offset < 0 {
		errs["offset"] = "must not be negative"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListActionLogs returns one page of matching entries, newest first, and the
// number of entries that match in total.
func (s *LogsService) ListActionLogs(
	ctx context.Context,
	params *actionlog.FindParams,
) ([]*actionlog.ActionLog, int64, error) {
	if params == nil {
		params = &actionlog.FindParams{}
	}
	if err := validateFindParams(params); err != nil {
		return nil, 0, err
	}

	logs, err := s.actionRepo.List(ctx, params)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list action logs")
	}
	count, err := s.actionRepo.Count(ctx, params)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count action logs")
	}
	return logs, count, nil
}

func (s *LogsService) CreateActionLog(ctx context.Context, log *actionlog.ActionLog) error {
	if log == nil {
		return errors.New("action log payload is required")
	}
	if log.Resource == "" || !knownActions[log.Action] {
		return errors.Errorf("invalid action log %q on %q", log.Action, log.Resource)
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}
	if err := s.actionRepo.Create(ctx, log); err != nil {
		return errors.Wrap(err, "append action log")
	}
	return nil
}
