package task

type CreatedEvent struct {
	Data   CreateDTO
	Result Task
}

type UpdatedEvent struct {
	ID     int
	Patch  []byte
	Result Task
}

type DeletedEvent struct {
	ID int
}

// CompletedEvent follows a successful MarkDone.
type CompletedEvent struct {
	Result Task
}

func NewCreatedEvent(data CreateDTO, result Task) *CreatedEvent {
	return &CreatedEvent{Data: data, Result: result}
}

func NewUpdatedEvent(id int, patch []byte, result Task) *UpdatedEvent {
	return &UpdatedEvent{ID: id, Patch: patch, Result: result}
}

func NewDeletedEvent(id int) *DeletedEvent {
	return &DeletedEvent{ID: id}
}

func NewCompletedEvent(result Task) *CompletedEvent {
	return &CompletedEvent{Result: result}
}
