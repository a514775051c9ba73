package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"datamorph/internal/model"
)

// UploadRequest describes one file upload.
type UploadRequest struct {
	// Reader supplies the file content.
	Reader io.Reader
	// Filename is sent as the multipart filename.
	Filename string
	// Size is the content length in bytes. When zero it is taken from the
	// reader if it exposes Len() or Stat(); otherwise the body is streamed
	// without a length and no progress is reported.
	Size int64
	// Token is sent as a bearer token when set.
	Token string
	// ProjectID associates the upload with an existing project when set.
	ProjectID string
}

// OpenFile returns an UploadRequest reading from the file at path.
// The caller closes the returned file after the upload completes.
func OpenFile(path string) (UploadRequest, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadRequest{}, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return UploadRequest{}, nil, err
	}
	return UploadRequest{Reader: f, Filename: filepath.Base(path), Size: st.Size()}, f, nil
}

var uploadFailure = failure{message: "Upload failed", withStatus: true}

// UploadTask is an upload in flight. Progress yields a finite, increasing
// sequence of percentages and is closed before Wait returns.
type UploadTask struct {
	progress chan int
	done     chan struct{}
	result   *model.UploadResult
	err      error
}

// Progress returns the channel of upload percentages in [0, 100]. It may
// close without ever yielding, and need not reach 100.
func (t *UploadTask) Progress() <-chan int {
	return t.progress
}

// Wait blocks until the upload has finished.
func (t *UploadTask) Wait() (*model.UploadResult, error) {
	<-t.done
	return t.result, t.err
}

// Done is closed when the result is available.
func (t *UploadTask) Done() <-chan struct{} {
	return t.done
}

// StartUpload begins an upload in the background.
func (c *Client) StartUpload(ctx context.Context, req UploadRequest) *UploadTask {
	t := &UploadTask{
		// Percentages strictly increase, so 101 slots never fill up and the
		// sender never blocks on a caller that only calls Wait.
		progress: make(chan int, 101),
		done:     make(chan struct{}),
	}
	go func() {
		res, err := c.upload(ctx, req, func(pct int) { t.progress <- pct })
		t.result, t.err = res, err
		close(t.progress)
		close(t.done)
	}()
	return t
}

// UploadFile uploads a file and blocks until the server answers. When
// onProgress is set it is called on the caller's goroutine for every
// progress update.
func (c *Client) UploadFile(ctx context.Context, req UploadRequest, onProgress func(pct int)) (*model.UploadResult, error) {
	t := c.StartUpload(ctx, req)
	for pct := range t.Progress() {
		if onProgress != nil {
			onProgress(pct)
		}
	}
	return t.Wait()
}

func (c *Client) upload(ctx context.Context, req UploadRequest, emit func(int)) (*model.UploadResult, error) {
	if req.Reader == nil {
		return nil, ErrNilReader
	}

	size := req.Size
	if size <= 0 {
		size = readerSize(req.Reader)
	}

	body, contentType, length, err := multipartBody(req, size)
	if err != nil {
		return nil, err
	}
	if length >= 0 {
		body = newProgressReader(body, length, emit)
	}

	var out model.UploadResult
	err = c.do(ctx, call{
		op:            "upload",
		method:        "POST",
		path:          "/api/v1/uploads/",
		token:         req.Token,
		body:          body,
		contentType:   contentType,
		contentLength: length,
		fail:          uploadFailure,
		out:           &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// readerSize returns the remaining length of r, or -1 when it is unknown.
func readerSize(r io.Reader) int64 {
	switch v := r.(type) {
	case interface{ Len() int }:
		return int64(v.Len())
	case *os.File:
		st, err := v.Stat()
		if err != nil || !st.Mode().IsRegular() {
			return -1
		}
		off, err := v.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		return st.Size() - off
	default:
		return -1
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody frames the file between a pre-rendered head and tail so the
// content streams from the caller's reader and the total length is known
// whenever size is. The file part comes first, then project_id.
// length is -1 when size is unknown.
func multipartBody(req UploadRequest, size int64) (io.Reader, string, int64, error) {
	var head, tail bytes.Buffer
	sw := &switchWriter{w: &head}
	mw := multipart.NewWriter(sw)

	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(req.Filename)))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(req.Filename)))
	h.Set("Content-Type", ctype)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, "", 0, fmt.Errorf("build multipart body: %w", err)
	}

	sw.w = &tail
	if req.ProjectID != "" {
		if err := mw.WriteField("project_id", req.ProjectID); err != nil {
			return nil, "", 0, fmt.Errorf("build multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", 0, fmt.Errorf("build multipart body: %w", err)
	}

	length := int64(-1)
	if size >= 0 {
		length = int64(head.Len()) + size + int64(tail.Len())
	}
	return io.MultiReader(&head, req.Reader, &tail), mw.FormDataContentType(), length, nil
}

type switchWriter struct {
	w io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	return s.w.Write(p)
}
