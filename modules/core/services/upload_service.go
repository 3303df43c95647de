package services

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/attachment"
	"github.com/iota-uz/staff-console/modules/core/infrastructure/persistence"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/eventbus"
	"github.com/iota-uz/staff-console/pkg/types"
)

type UploadService struct {
	repo      *persistence.AttachmentRepository
	publisher eventbus.EventBus
	log       *logrus.Entry
}

func NewUploadService(repo *persistence.AttachmentRepository, publisher eventbus.EventBus, logger *logrus.Logger) *UploadService {
	return &UploadService{
		repo:      repo,
		publisher: publisher,
		log:       logger.WithField("component", "core.upload"),
	}
}

// Upload is a file transfer in flight.
type Upload struct {
	task      *apiclient.UploadTask
	result    types.Attachment
	svc       *UploadService
	published sync.Once
}

func (u *Upload) Cancel() {
	u.task.Cancel()
}

func (u *Upload) Done() <-chan struct{} {
	return u.task.Done()
}

func (u *Upload) Progress() (sent, total int64) {
	return u.task.Progress()
}

// Wait blocks until the server answered and returns the stored attachment.
// The first successful Wait publishes the uploaded event.
func (u *Upload) Wait() (types.Attachment, int, error) {
	status, err := u.task.Wait()
	if err != nil {
		u.svc.log.WithError(err).Warn("upload failed")
		return types.Attachment{}, status, err
	}
	u.published.Do(func() {
		u.svc.publisher.Publish(&attachment.UploadedEvent{Result: u.result})
	})
	return u.result, status, nil
}

// Start begins a multipart upload of body. size may be 0 when unknown.
func (s *UploadService) Start(ctx context.Context, name string, body io.Reader, size int64, onProgress func(sent, total int64)) *Upload {
	u := &Upload{svc: s}
	u.task = s.repo.Start(ctx, apiclient.UploadRequest{
		FileName:   name,
		Body:       body,
		Size:       size,
		OnProgress: onProgress,
	}, &u.result)
	return u
}

// UploadInline sends the whole file as a base64 data URL inside JSON.
func (s *UploadService) UploadInline(ctx context.Context, name string, r io.Reader) (types.Attachment, int, error) {
	file, err := apiclient.EncodeBase64File(name, r, s.repo.MaxUploadSize())
	if err != nil {
		return types.Attachment{}, 0, err
	}
	created, status, err := s.repo.CreateInline(ctx, file)
	if err != nil {
		return types.Attachment{}, status, err
	}
	s.publisher.Publish(&attachment.UploadedEvent{Result: created})
	return created, status, nil
}

func (s *UploadService) GetByID(ctx context.Context, id int) (types.Attachment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UploadService) Delete(ctx context.Context, id int) (int, error) {
	status, err := s.repo.Delete(ctx, id)
	if err != nil {
		return status, err
	}
	s.publisher.Publish(&attachment.DeletedEvent{ID: id})
	return status, nil
}
