package employee

type CreatedEvent struct {
	Data   CreateDTO
	Result Employee
}

type UpdatedEvent struct {
	ID     int
	Patch  []byte
	Result Employee
}

type DeletedEvent struct {
	ID int
}

func NewCreatedEvent(data CreateDTO, result Employee) *CreatedEvent {
	return &CreatedEvent{Data: data, Result: result}
}

func NewUpdatedEvent(id int, patch []byte, result Employee) *UpdatedEvent {
	return &UpdatedEvent{ID: id, Patch: patch, Result: result}
}

func NewDeletedEvent(id int) *DeletedEvent {
	return &DeletedEvent{ID: id}
}
