package persistence

import (
	"context"
	"net/http"
	"strconv"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/types"
)

const AttachmentsPath = "attachments/"

// AttachmentRepository uploads files referenced by employees and tasks.
type AttachmentRepository struct {
	client *apiclient.Client
}

func NewAttachmentRepository(client *apiclient.Client) *AttachmentRepository {
	return &AttachmentRepository{client: client}
}

func (r *AttachmentRepository) MaxUploadSize() int64 {
	return r.client.MaxUploadSize()
}

// Start streams a multipart upload; out receives the stored attachment.
func (r *AttachmentRepository) Start(ctx context.Context, req apiclient.UploadRequest, out *types.Attachment) *apiclient.UploadTask {
	req.Path = AttachmentsPath
	return r.client.StartUpload(ctx, req, out)
}

// CreateInline posts a base64 data URL as JSON.
func (r *AttachmentRepository) CreateInline(ctx context.Context, file apiclient.InlineFile) (types.Attachment, int, error) {
	var out types.Attachment
	status, err := r.client.DoJSON(ctx, http.MethodPost, AttachmentsPath, nil, file, &out)
	return out, status, err
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id int) (types.Attachment, error) {
	var out types.Attachment
	_, err := r.client.DoJSON(ctx, http.MethodGet, AttachmentsPath+strconv.Itoa(id)+"/", nil, nil, &out)
	return out, err
}

func (r *AttachmentRepository) Delete(ctx context.Context, id int) (int, error) {
	return r.client.DoJSON(ctx, http.MethodDelete, AttachmentsPath+strconv.Itoa(id)+"/", nil, nil, nil)
}
