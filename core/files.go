package core

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Upload surfaces. Each surface carries its own allowed types and max size.
const (
	SurfaceMaterial   = "material"
	SurfaceAssignment = "assignment"
	SurfaceModule     = "module"
	SurfaceReceipt    = "receipt"
	SurfaceSubmission = "submission"
)

const mb = 1 << 20

var (
	documentTypes = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
	}
	imageTypes = []string{"image/"}
	broadTypes = []string{"application/", "image/", "video/", "audio/", "text/"}
)

// UploadRule gates one upload surface.
type UploadRule struct {
	MaxSize int64
	// Allowed mime types; a trailing "/" entry matches the whole class.
	Allowed []string
}

var UploadRules = map[string]UploadRule{
	SurfaceMaterial:   {MaxSize: 100 * mb, Allowed: broadTypes},
	SurfaceAssignment: {MaxSize: 10 * mb, Allowed: append(append([]string{}, documentTypes...), imageTypes...)},
	SurfaceModule:     {MaxSize: 10 * mb, Allowed: documentTypes},
	SurfaceReceipt:    {MaxSize: 5 * mb, Allowed: append([]string{"application/pdf"}, imageTypes...)},
	SurfaceSubmission: {MaxSize: 50 * mb, Allowed: broadTypes},
}

// Check validates a declared content type and size against the rule.
func (r UploadRule) Check(contentType string, size int64) error {
	if size > r.MaxSize {
		return NewValidationError(errors.New("file too large"),
			FieldError{Field: "file", Error: "file exceeds the maximum allowed size"})
	}
	for _, allowed := range r.Allowed {
		if strings.HasSuffix(allowed, "/") {
			if strings.HasPrefix(contentType, allowed) {
				return nil
			}
		} else if contentType == allowed {
			return nil
		}
	}
	return NewValidationError(errors.New("file type not allowed"),
		FieldError{Field: "file", Error: "file type is not allowed for this upload"})
}

// FileInfo describes a stored blob.
type FileInfo struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// FileStore is any blob storage collaborator. Save enforces the surface's
// UploadRule against the sniffed content type, never the declared one.
type FileStore interface {
	Save(ctx context.Context, surface, filename string, r io.Reader) (FileInfo, error)
	Open(ctx context.Context, path string) (io.ReadCloser, FileInfo, error)
	Delete(ctx context.Context, path string) error
}
