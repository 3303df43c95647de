package mockapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/httpapi"
	"github.com/iota-uz/staff-console/pkg/types"
)

// multipart framing allowed on top of MaxUploadSize.
const multipartOverhead = 64 << 10

func (s *Server) writeTooLarge(w http.ResponseWriter) {
	msg, _ := apiclient.StatusMessage(http.StatusRequestEntityTooLarge)
	_ = httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", msg, nil)
}

func (s *Server) saveAttachment(name, mimeType string, size int64) types.Attachment {
	name = filepath.Base(name)
	return s.store.Attachments.Insert(func(id int) types.Attachment {
		return types.Attachment{
			ID:       id,
			File:     fmt.Sprintf("/media/attachments/%d/%s", id, name),
			FileName: name,
			FileMime: mimeType,
			FileSize: size,
		}
	})
}

// uploadAttachment accepts a multipart "file" part or a JSON inline file.
func (s *Server) uploadAttachment(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		s.uploadInline(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize+multipartOverhead)
	reader, err := r.MultipartReader()
	if err != nil {
		writeMalformed(w)
		return
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.uploadFailed(w, err)
			return
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		var head bytes.Buffer
		n, err := io.Copy(&head, io.LimitReader(part, s.opts.MaxUploadSize+1))
		if err != nil {
			s.uploadFailed(w, err)
			return
		}
		if n > s.opts.MaxUploadSize {
			s.writeTooLarge(w)
			return
		}
		detected := mimetype.Detect(head.Bytes())
		_ = httpapi.WriteJSON(w, http.StatusCreated, s.saveAttachment(part.FileName(), detected.String(), n))
		return
	}
	_ = httpapi.WriteValidationError(w, map[string]string{"file": "no file was submitted"})
}

func (s *Server) uploadFailed(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeTooLarge(w)
		return
	}
	writeMalformed(w)
}

func (s *Server) uploadInline(w http.ResponseWriter, r *http.Request) {
	// base64 inflates by a third.
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadSize*4/3+multipartOverhead)
	var in apiclient.InlineFile
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.uploadFailed(w, err)
		return
	}
	_, payload, ok := strings.Cut(in.File, ";base64,")
	if !ok || in.FileName == "" {
		_ = httpapi.WriteValidationError(w, map[string]string{"file": "expected a base64 data url"})
		return
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		_ = httpapi.WriteValidationError(w, map[string]string{"file": "invalid base64 payload"})
		return
	}
	if int64(len(data)) > s.opts.MaxUploadSize {
		s.writeTooLarge(w)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, s.saveAttachment(in.FileName, mimetype.Detect(data).String(), int64(len(data))))
}
