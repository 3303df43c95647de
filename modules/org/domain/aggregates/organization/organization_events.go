package organization

type CreatedEvent struct {
	Data   CreateDTO
	Result Organization
}

type UpdatedEvent struct {
	ID     int
	Patch  []byte
	Result Organization
}

type DeletedEvent struct {
	ID int
}

func NewCreatedEvent(data CreateDTO, result Organization) *CreatedEvent {
	return &CreatedEvent{Data: data, Result: result}
}

func NewUpdatedEvent(id int, patch []byte, result Organization) *UpdatedEvent {
	return &UpdatedEvent{ID: id, Patch: patch, Result: result}
}

func NewDeletedEvent(id int) *DeletedEvent {
	return &DeletedEvent{ID: id}
}
