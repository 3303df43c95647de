package viewmodels

type Task struct {
	ID          string
	Summary     string
	Description string
	AssignedTo  string
	AssignedBy  string
	DateOfIssue string
	DeadLine    string
	Comment     string
	Attachment  string
	Done        string
}

func (t Task) Cell(key string) string {
	switch key {
	case "id":
		return t.ID
	case "summary":
		return t.Summary
	case "description":
		return t.Description
	case "assigned_to":
		return t.AssignedTo
	case "assigned_by":
		return t.AssignedBy
	case "date_of_issue":
		return t.DateOfIssue
	case "dead_line":
		return t.DeadLine
	case "comment":
		return t.Comment
	case "attachment":
		return t.Attachment
	case "done":
		return t.Done
	}
	return ""
}
