package types

import "fmt"

// Attachment is an uploaded file referenced by employees and tasks.
type Attachment struct {
	ID       int    `json:"id,omitempty"`
	File     string `json:"file"`
	FileName string `json:"file_name"`
	FileMime string `json:"file_mime"`
	FileSize int64  `json:"file_size"`
}

// HumanSize renders FileSize with a binary unit.
func (a Attachment) HumanSize() string {
	const unit = 1024
	if a.FileSize < unit {
		return fmt.Sprintf("%d B", a.FileSize)
	}
	div, exp := int64(unit), 0
	for n := a.FileSize / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(a.FileSize)/float64(div), "KMGTPE"[exp])
}
