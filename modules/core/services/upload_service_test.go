package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iota-uz/staff-console/internal/mockapi"
	"github.com/iota-uz/staff-console/modules/core/domain/aggregates/attachment"
	"github.com/iota-uz/staff-console/modules/core/infrastructure/persistence"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/eventbus"
)

func newUploadService(t *testing.T, maxUpload int64) (*UploadService, *[]any) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	srv, err := mockapi.New(mockapi.Options{BcryptCost: bcrypt.MinCost, Logger: log, Seed: mockapi.SeedOptions{Employees: 1}})
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	client, err := apiclient.New(apiclient.Options{BaseURL: hs.URL + "/api", MaxUploadSize: maxUpload, Logger: log})
	require.NoError(t, err)
	token, err := persistence.NewAuthRepository(client).Login(context.Background(), mockapi.AdminEmail, mockapi.AdminPassword)
	require.NoError(t, err)
	client.SetTokens(apiclient.StaticToken(token))

	bus := eventbus.NewEventPublisher(log)
	events := &[]any{}
	bus.Subscribe(func(ev *attachment.UploadedEvent) { *events = append(*events, ev) })
	bus.Subscribe(func(ev *attachment.DeletedEvent) { *events = append(*events, ev) })
	return NewUploadService(persistence.NewAttachmentRepository(client), bus, log), events
}

func TestUploadService_Multipart(t *testing.T) {
	svc, events := newUploadService(t, 1<<20)
	ctx := context.Background()

	body := strings.Repeat("x", 4096)
	var progress int64
	up := svc.Start(ctx, "report.txt", strings.NewReader(body), int64(len(body)), func(sent, _ int64) { progress = sent })
	att, status, err := up.Wait()
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "report.txt", att.FileName)
	require.EqualValues(t, 4096, att.FileSize)
	require.EqualValues(t, 4096, progress)

	// A second Wait does not publish again.
	_, _, err = up.Wait()
	require.NoError(t, err)
	require.Len(t, *events, 1)

	got, err := svc.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.Equal(t, att, got)

	status, err = svc.Delete(ctx, att.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, status)
	require.Len(t, *events, 2)
	require.IsType(t, &attachment.DeletedEvent{}, (*events)[1])
}

func TestUploadService_Inline(t *testing.T) {
	svc, events := newUploadService(t, 1<<20)

	att, status, err := svc.UploadInline(context.Background(), "/tmp/note.txt", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "note.txt", att.FileName)
	require.EqualValues(t, 5, att.FileSize)
	require.Len(t, *events, 1)
}

func TestUploadService_TooLarge(t *testing.T) {
	svc, events := newUploadService(t, 16)

	up := svc.Start(context.Background(), "big.bin", strings.NewReader(strings.Repeat("y", 64)), 64, nil)
	_, _, err := up.Wait()
	require.Error(t, err)
	require.True(t, apiclient.IsStatus(err, http.StatusRequestEntityTooLarge))

	_, _, err = svc.UploadInline(context.Background(), "big.bin", strings.NewReader(strings.Repeat("y", 64)))
	require.True(t, apiclient.IsStatus(err, http.StatusRequestEntityTooLarge))
	require.Empty(t, *events)
}
