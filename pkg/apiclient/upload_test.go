package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type attachment struct {
	FileName string `json:"file_name"`
	FileMime string `json:"file_mime"`
	FileSize int64  `json:"file_size"`
	Field    string `json:"field"`
}

func TestStartUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/attachments/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"file_name":"` + header.Filename + `","file_mime":"` + header.Header.Get("Content-Type") +
			`","file_size":` + strconv.Itoa(len(data)) + `,"field":"` + r.FormValue("field") + `"}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv, nil)
	var progress []int64
	var out attachment
	task := c.StartUpload(context.Background(), UploadRequest{
		Path:       "attachments/",
		FileName:   "/tmp/notes.txt",
		Body:       strings.NewReader("hello world"),
		Size:       11,
		Field:      "attachment",
		OnProgress: func(sent, total int64) { progress = append(progress, sent) },
	}, &out)

	status, err := task.Wait()
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "notes.txt", out.FileName)
	require.True(t, strings.HasPrefix(out.FileMime, "text/plain"))
	require.Equal(t, int64(11), out.FileSize)
	require.Equal(t, "attachment", out.Field)
	require.NotEmpty(t, progress)
	require.Equal(t, int64(11), progress[len(progress)-1])

	sent, total := task.Progress()
	require.Equal(t, int64(11), sent)
	require.Equal(t, int64(11), total)
}

func TestStartUpload_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv, nil)

	task := c.StartUpload(context.Background(), UploadRequest{
		Path:     "attachments/",
		FileName: "big.bin",
		Body:     strings.NewReader(strings.Repeat("x", 100)),
		Size:     100,
	}, nil)
	status, err := task.Wait()
	require.Zero(t, status)
	require.True(t, IsStatus(err, http.StatusRequestEntityTooLarge))
	require.Equal(t, "file must not exceed 16 MB", UserMessage(err))
}

func TestStartUpload_Cancel(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		_, _ = io.Copy(io.Discard, r.Body)
	}))
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api", MaxUploadSize: 1 << 20})
	require.NoError(t, err)

	src, feed := io.Pipe()
	t.Cleanup(func() { _ = feed.Close() })
	go func() { _, _ = feed.Write([]byte(strings.Repeat("x", 4096))) }()

	task := c.StartUpload(context.Background(), UploadRequest{
		Path:     "attachments/",
		FileName: "slow.txt",
		Body:     src,
	}, nil)

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("upload never reached the server")
	}
	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not stop the upload")
	}
	_, err = task.Wait()
	require.True(t, IsKind(err, KindCanceled), "got %v", err)
}

func TestStartUpload_ContextCancelWithBlockedSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
	}))
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api", MaxUploadSize: 1 << 20})
	require.NoError(t, err)

	// The source never yields a byte.
	src, feed := io.Pipe()
	t.Cleanup(func() { _ = feed.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	task := c.StartUpload(ctx, UploadRequest{Path: "attachments/", FileName: "stuck.bin", Body: src}, nil)
	cancel()

	select {
	case <-task.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("upload still running after its context was cancelled")
	}
	status, err := task.Wait()
	require.Zero(t, status)
	require.True(t, IsKind(err, KindCanceled), "got %v", err)
	require.Equal(t, "request canceled", UserMessage(err))
}

func TestEncodeBase64File(t *testing.T) {
	f, err := EncodeBase64File("dir/a.txt", strings.NewReader("hi"), 16)
	require.NoError(t, err)
	require.Equal(t, "a.txt", f.FileName)
	require.Equal(t, int64(2), f.FileSize)
	require.True(t, strings.HasPrefix(f.FileType, "text/plain"))
	require.True(t, strings.HasSuffix(f.File, ";base64,aGk="))

	_, err = EncodeBase64File("a.txt", strings.NewReader(strings.Repeat("x", 17)), 16)
	require.True(t, IsStatus(err, http.StatusRequestEntityTooLarge))
}
