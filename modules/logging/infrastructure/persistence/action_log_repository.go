package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/staff-console/modules/logging/domain/entities/actionlog"
)

// ActionLogRepository appends entries to a JSON-lines file. With an empty
// path entries are kept in memory for the life of the process.
type ActionLogRepository struct {
	path string

	mu     sync.Mutex
	memory []*actionlog.ActionLog
}

func NewActionLogRepository(path string) actionlog.Repository {
	return &ActionLogRepository{path: path}
}

func (r *ActionLogRepository) Create(ctx context.Context, log *actionlog.ActionLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		cp := *log
		r.memory = append(r.memory, &cp)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return errors.Wrap(err, "create history directory")
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return errors.Wrap(err, "open history")
	}
	defer f.Close()
	line, err := json.Marshal(log)
	if err != nil {
		return errors.Wrap(err, "encode action log")
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "append action log")
	}
	return nil
}

func (r *ActionLogRepository) all() ([]*actionlog.ActionLog, error) {
	if r.path == "" {
		return r.memory, nil
	}
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "open history")
	}
	defer f.Close()

	var out []*actionlog.ActionLog
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var l actionlog.ActionLog
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			// A torn last line from an interrupted write is skipped.
			continue
		}
		out = append(out, &l)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read history")
	}
	return out, nil
}

func (r *ActionLogRepository) matching(params *actionlog.FindParams) ([]*actionlog.ActionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := r.all()
	if err != nil {
		return nil, err
	}
	out := make([]*actionlog.ActionLog, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if params.Matches(entries[i]) {
			cp := *entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// List returns matching entries, newest first.
func (r *ActionLogRepository) List(ctx context.Context, params *actionlog.FindParams) ([]*actionlog.ActionLog, error) {
	out, err := r.matching(params)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return out, nil
	}
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *ActionLogRepository) Count(ctx context.Context, params *actionlog.FindParams) (int64, error) {
	out, err := r.matching(params)
	if err != nil {
		return 0, err
	}
	return int64(len(out)), nil
}
