package task

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/iota-uz/staff-console/pkg/types"
)

// Person is an employee reference embedded in a task. The API returns it
// either expanded or as a bare id.
type Person struct {
	ID        int    `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (p *Person) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' {
		if bytes.Equal(b, []byte("null")) {
			*p = Person{}
			return nil
		}
		id, err := strconv.Atoi(string(bytes.Trim(b, `"`)))
		if err != nil {
			return err
		}
		*p = Person{ID: id}
		return nil
	}
	type plain Person
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Person(v)
	return nil
}

func (p Person) String() string {
	name := strings.TrimSpace(p.LastName + " " + p.FirstName)
	if name == "" && p.ID != 0 {
		return "#" + strconv.Itoa(p.ID)
	}
	return name
}

type Task struct {
	ID          int               `json:"id"`
	Summary     string            `json:"summary"`
	Description string            `json:"description"`
	AssignedTo  *Person           `json:"assigned_to"`
	AssignedBy  *Person           `json:"assigned_by"`
	DeadLine    types.Date        `json:"dead_line"`
	DateOfIssue types.Date        `json:"date_of_issue"`
	Comment     string            `json:"comment"`
	Attachment  *types.Attachment `json:"attachment"`
	Done        bool              `json:"done"`
}

func (t Task) Key() string {
	return strconv.Itoa(t.ID)
}

// View selects the dashboard subset of tasks.
type View string

const (
	AllTasks       View = ""
	CompletedTasks View = "completed"
	InProcessTasks View = "in-process"
)

func ParseView(s string) (View, bool) {
	switch View(s) {
	case AllTasks, CompletedTasks, InProcessTasks:
		return View(s), true
	}
	return AllTasks, false
}

// DoneFilter is the value of the done parameter pinned by the view.
func (v View) DoneFilter() (string, bool) {
	switch v {
	case CompletedTasks:
		return "true", true
	case InProcessTasks:
		return "false", true
	}
	return "", false
}
