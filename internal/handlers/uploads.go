package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/services"
	"sahayak-backend/internal/storage"
)

type objectPutter interface {
	Put(ctx context.Context, objectPath string, r io.Reader, attrs storage.ObjectAttrs) (int64, error)
}

// UploadHandler stores teacher uploads in object storage. Processing happens
// asynchronously once the storage watcher sees the finalized object.
type UploadHandler struct {
	store    objectPutter
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger
}

func NewUploadHandler(store objectPutter, maxUploadMB int, l *zap.Logger) *UploadHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &UploadHandler{
		store:    store,
		maxBytes: int64(maxUploadMB) << 20,
		now:      time.Now,
		logger:   logger.OrNop(l).Named("upload_handler"),
	}
}

// docxMIME is stored for .docx syllabi, which sniff as plain zip archives.
const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// syllabusTypes maps accepted syllabus extensions to the content types their
// bytes may sniff as. The first entry is the content type that gets stored.
var syllabusTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".txt":  {"text/plain"},
	".docx": {docxMIME, "application/zip"},
}

// uploadPart is the validated file part. Metadata callbacks may normalize
// ContentType before the object is stored.
type uploadPart struct {
	Name        string
	ContentType string
}

type uploadResponse struct {
	ObjectPath string `json:"objectPath"`
	Size       int64  `json:"size"`
}

// Worksheet accepts a textbook page image plus the worksheet topic.
func (h *UploadHandler) Worksheet(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetTeacherID(r.Context())
	h.upload(w, r, "uploads", func(part *uploadPart, form *http.Request) (map[string]string, error) {
		if !strings.HasPrefix(part.ContentType, "image/") {
			return nil, services.Invalid("file", "must be an image")
		}
		topic := strings.TrimSpace(form.FormValue("topic"))
		if topic == "" {
			return nil, services.Invalid("topic", "is required")
		}
		return map[string]string{"teacherId": teacherID, "topic": topic}, nil
	})
}

// Syllabus accepts a syllabus document: PDF, plain text or Word (.docx).
func (h *UploadHandler) Syllabus(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetTeacherID(r.Context())
	h.upload(w, r, "syllabus_uploads", func(part *uploadPart, _ *http.Request) (map[string]string, error) {
		accepted := syllabusTypes[strings.ToLower(path.Ext(part.Name))]
		if !slices.Contains(accepted, part.ContentType) {
			return nil, services.Invalid("file", "must be a PDF, TXT or DOCX document")
		}
		part.ContentType = accepted[0]
		return map[string]string{"teacherId": teacherID}, nil
	})
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request, prefix string, metadataFor func(part *uploadPart, r *http.Request) (map[string]string, error)) {
	if r.ContentLength > h.maxBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", fmt.Sprintf("File size exceeds %dMB limit", h.maxBytes>>20), r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", fmt.Sprintf("File size exceeds %dMB limit", h.maxBytes>>20), r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if name == "" || !storage.IsObjectFile(name) {
		handleServiceError(w, r, h.logger, services.Invalid("file", "has an invalid name"))
		return
	}

	contentType, err := sniffContentType(file, header.Header.Get("Content-Type"), name)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	part := &uploadPart{Name: name, ContentType: contentType}
	metadata, err := metadataFor(part, r)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	objectPath := fmt.Sprintf("%s/%s/%d-%s", prefix, metadata["teacherId"], h.now().UnixMilli(), name)
	size, err := h.store.Put(r.Context(), objectPath, file, storage.ObjectAttrs{
		ContentType: part.ContentType,
		Metadata:    metadata,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidPath) {
			handleServiceError(w, r, h.logger, services.Invalid("file", "has an invalid name"))
			return
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("upload stored", zap.String("object_path", objectPath), zap.Int64("size", size))
	writeJSON(w, http.StatusAccepted, uploadResponse{ObjectPath: objectPath, Size: size})
}

// sniffContentType prefers magic bytes, then the part header, then the file
// extension. The reader is rewound afterwards.
func sniffContentType(file io.ReadSeeker, declared, name string) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	detected := http.DetectContentType(buf[:n])
	if detected != "application/octet-stream" {
		return baseMediaType(detected), nil
	}
	if declared != "" {
		return baseMediaType(declared), nil
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return baseMediaType(byExt), nil
	}
	return detected, nil
}

func baseMediaType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return v
	}
	return mt
}

// sanitizeFilename keeps the final path element and replaces characters that
// are awkward in object paths.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, name)
}
