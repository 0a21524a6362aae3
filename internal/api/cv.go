package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

const MaxCVSize = 5 << 20

var cvContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ValidateCV rejects files the platform would refuse, before any upload.
// It returns the content type to send.
func ValidateCV(filename string, size int64) (string, error) {
	ct, ok := cvContentTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", &ValidationError{Field: "file", Message: "unsupported file format, accepted: PDF, DOC, DOCX"}
	}
	if size <= 0 {
		return "", &ValidationError{Field: "file", Message: "file is empty"}
	}
	if size > MaxCVSize {
		return "", &ValidationError{Field: "file", Message: "file is too large, maximum size is 5MB"}
	}
	return ct, nil
}

// UploadCVFile checks the file on disk before reading it.
func (c *Client) UploadCVFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat cv: %w", err)
	}
	if info.IsDir() {
		return &ValidationError{Field: "file", Message: "not a regular file"}
	}
	if _, err := ValidateCV(info.Name(), info.Size()); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cv: %w", err)
	}
	return c.UploadCV(ctx, info.Name(), data)
}

func (c *Client) UploadCV(ctx context.Context, filename string, data []byte) error {
	ct, err := ValidateCV(filename, int64(len(data)))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/api/cv/upload", nil, &buf, mw.FormDataContentType(), "application/json")
	if err != nil {
		return err
	}
	return decodeBody(resp, http.MethodPost, "/api/cv/upload", nil)
}

func (c *Client) DownloadMyCV(ctx context.Context) ([]byte, error) {
	return c.getBytes(ctx, "/api/cv/download")
}

func (c *Client) DownloadStudentCV(ctx context.Context, studentID int64) ([]byte, error) {
	return c.getBytes(ctx, idPath("/api/cv/%d", studentID))
}

func (c *Client) DeleteCV(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/cv", nil, nil, nil)
}
