package apiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
)

const sniffLen = 3072

type UploadRequest struct {
	// Path is the collection receiving the multipart POST, e.g. "attachments/".
	Path     string
	FileName string
	Body     io.Reader
	// Size is the declared size in bytes; 0 when unknown.
	Size int64
	// FieldName names the file part. Defaults to "file".
	FieldName string
	// Field is sent as the "field" form value when set.
	Field      string
	OnProgress func(sent, total int64)
}

// UploadTask is an upload running in the background.
type UploadTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	sent   atomic.Int64
	total  int64

	once   sync.Once
	err    error
	status int
}

func (t *UploadTask) Cancel() {
	t.cancel()
}

func (t *UploadTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the upload finishes and returns its outcome.
func (t *UploadTask) Wait() (int, error) {
	<-t.done
	return t.status, t.err
}

func (t *UploadTask) Progress() (sent, total int64) {
	return t.sent.Load(), t.total
}

func (t *UploadTask) finish(status int, err error) {
	t.once.Do(func() {
		t.status = status
		t.err = err
		close(t.done)
	})
}

var errTooLarge = errors.New("upload exceeds maximum size")

func (c *Client) tooLarge(u string) *Error {
	msg, _ := StatusMessage(http.StatusRequestEntityTooLarge)
	return &Error{
		Kind:    KindClient,
		Method:  http.MethodPost,
		URL:     u,
		Status:  http.StatusRequestEntityTooLarge,
		Message: msg,
		Err:     errTooLarge,
	}
}

type progressReader struct {
	r     io.Reader
	task  *UploadTask
	max   int64
	onAdd func(sent int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		sent := p.task.sent.Add(int64(n))
		if sent > p.max {
			return n, errTooLarge
		}
		if p.onAdd != nil {
			p.onAdd(sent)
		}
	}
	return n, err
}

// StartUpload streams a multipart upload. The returned task can be cancelled
// at any point; out receives the decoded response body.
func (c *Client) StartUpload(ctx context.Context, in UploadRequest, out any) *UploadTask {
	ctx, cancel := context.WithCancel(ctx)
	task := &UploadTask{cancel: cancel, done: make(chan struct{}), total: in.Size}
	u := c.endpoint(in.Path, nil)

	if in.Size > c.opts.MaxUploadSize {
		cancel()
		task.finish(0, c.tooLarge(u.String()))
		return task
	}

	fieldName := in.FieldName
	if fieldName == "" {
		fieldName = "file"
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		var werr error
		defer func() { _ = pw.CloseWithError(werr) }()

		head := make([]byte, sniffLen)
		n, err := io.ReadFull(in.Body, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			werr = errors.Wrap(err, "read upload")
			return
		}
		head = head[:n]
		mime := mimetype.Detect(head)

		if in.Field != "" {
			if werr = mw.WriteField("field", in.Field); werr != nil {
				return
			}
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, filepath.Base(in.FileName)))
		h.Set("Content-Type", mime.String())
		part, err := mw.CreatePart(h)
		if err != nil {
			werr = err
			return
		}
		body := &progressReader{
			r:    io.MultiReader(bytes.NewReader(head), in.Body),
			task: task,
			max:  c.opts.MaxUploadSize,
			onAdd: func(sent int64) {
				if in.OnProgress != nil {
					in.OnProgress(sent, in.Size)
				}
			},
		}
		if _, werr = io.Copy(part, body); werr != nil {
			return
		}
		werr = mw.Close()
	}()

	// Cancel must not wait for a source reader that may block indefinitely.
	go func() {
		select {
		case <-task.done:
		case <-ctx.Done():
			err := ctx.Err()
			_ = pw.CloseWithError(err)
			_ = pr.CloseWithError(err)
			kind := KindCanceled
			if errors.Is(err, context.DeadlineExceeded) {
				kind = KindTransport
			}
			task.finish(0, &Error{Kind: kind, Method: http.MethodPost, URL: u.String(), Err: err})
		}
	}()

	go func() {
		defer cancel()
		req, err := c.newRequest(ctx, http.MethodPost, u, pr, mw.FormDataContentType())
		if err != nil {
			_ = pr.CloseWithError(err)
			task.finish(0, err)
			return
		}
		status, respBody, err := c.send(req)
		_ = pr.Close()
		if err != nil {
			if errors.Is(err, errTooLarge) || task.sent.Load() > c.opts.MaxUploadSize {
				err = c.tooLarge(u.String())
			}
			task.finish(status, err)
			return
		}
		if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				task.finish(status, &Error{Kind: KindDecode, Method: http.MethodPost, URL: u.String(), Status: status, Err: err})
				return
			}
		}
		task.finish(status, nil)
	}()

	return task
}

// InlineFile is an attachment embedded in a JSON body as a data URL.
type InlineFile struct {
	FileName string `json:"filename"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
	File     string `json:"file"`
}

func EncodeBase64File(name string, r io.Reader, maxSize int64) (InlineFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return InlineFile{}, errors.Wrap(err, "read file")
	}
	if int64(len(data)) > maxSize {
		msg, _ := StatusMessage(http.StatusRequestEntityTooLarge)
		return InlineFile{}, &Error{Kind: KindClient, Status: http.StatusRequestEntityTooLarge, Message: msg, Err: errTooLarge}
	}
	mime := mimetype.Detect(data)
	return InlineFile{
		FileName: filepath.Base(name),
		FileType: mime.String(),
		FileSize: int64(len(data)),
		File:     "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
