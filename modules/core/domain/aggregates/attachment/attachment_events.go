package attachment

import "github.com/iota-uz/staff-console/pkg/types"

type UploadedEvent struct {
	Result types.Attachment
}

type DeletedEvent struct {
	ID int
}
