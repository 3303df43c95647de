package actionlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionComplete = "complete"
	ActionLogin    = "login"
	ActionLogout   = "logout"
	ActionRegister = "register"
)

// ActionLog records one change made through the console.
type ActionLog struct {
	ID        uuid.UUID       `json:"id"`
	Resource  string          `json:"resource"`
	Action    string          `json:"action"`
	RecordID  int             `json:"record_id,omitempty"`
	Actor     string          `json:"actor,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type FindParams struct {
	Resource string
	Action   string
	From     *time.Time
	Limit    int
	Offset   int
}

// Matches reports whether l passes every set criterion.
func (p *FindParams) Matches(l *ActionLog) bool {
	if p == nil {
		return true
	}
	if p.Resource != "" && p.Resource != l.Resource {
		return false
	}
	if p.Action != "" && p.Action != l.Action {
		return false
	}
	if p.From != nil && l.CreatedAt.Before(*p.From) {
		return false
	}
	return true
}

type Repository interface {
	List(ctx context.Context, params *FindParams) ([]*ActionLog, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	Create(ctx context.Context, log *ActionLog) error
}
