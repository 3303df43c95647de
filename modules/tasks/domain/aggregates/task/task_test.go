package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTask_DecodesPersonForms(t *testing.T) {
	var tk Task
	err := json.Unmarshal([]byte(`{
		"id": 5,
		"summary": "Audit",
		"assigned_to": 12,
		"assigned_by": {"first_name": "Ann", "last_name": "Lee"},
		"dead_line": "2024-03-01",
		"done": false
	}`), &tk)
	require.NoError(t, err)
	require.Equal(t, &Person{ID: 12}, tk.AssignedTo)
	require.Equal(t, "Lee Ann", tk.AssignedBy.String())
	require.Equal(t, "#12", tk.AssignedTo.String())
	require.Equal(t, "2024-03-01", tk.DeadLine.String())
}

func TestView(t *testing.T) {
	v, ok := ParseView("completed")
	require.True(t, ok)
	done, pinned := v.DoneFilter()
	require.True(t, pinned)
	require.Equal(t, "true", done)

	_, ok = ParseView("archived")
	require.False(t, ok)

	_, pinned = AllTasks.DoneFilter()
	require.False(t, pinned)
}

func TestNewUpdateDTO(t *testing.T) {
	dto := NewUpdateDTO(Task{Summary: "Audit", AssignedTo: &Person{ID: 3}})
	require.Equal(t, 3, dto.AssignedTo)
	_, ok := dto.Ok()
	require.True(t, ok)
}
