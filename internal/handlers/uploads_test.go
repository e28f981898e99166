package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahayak-backend/internal/middleware"
	"sahayak-backend/internal/storage"
)

type putCall struct {
	path  string
	attrs storage.ObjectAttrs
	data  []byte
}

type stubObjects struct {
	puts []putCall
}

func (s *stubObjects) Put(ctx context.Context, objectPath string, r io.Reader, attrs storage.ObjectAttrs) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	s.puts = append(s.puts, putCall{path: objectPath, attrs: attrs, data: data})
	return int64(len(data)), nil
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func multipartRequest(t *testing.T, target, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(middleware.WithTeacherID(req.Context(), "teacher-1"))
}

func newUploadHandler(store *stubObjects) *UploadHandler {
	h := NewUploadHandler(store, 1, nil)
	h.now = func() time.Time { return time.UnixMilli(1752566400000) }
	return h
}

func TestUploadWorksheet(t *testing.T) {
	store := &stubObjects{}
	h := newUploadHandler(store)

	rr := httptest.NewRecorder()
	h.Worksheet(rr, multipartRequest(t, "/api/v1/uploads/worksheet", "page 12.png", pngBytes, map[string]string{"topic": " Photosynthesis "}))

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, store.puts, 1)
	put := store.puts[0]
	assert.Equal(t, "uploads/teacher-1/1752566400000-page_12.png", put.path)
	assert.Equal(t, "image/png", put.attrs.ContentType)
	assert.Equal(t, map[string]string{"teacherId": "teacher-1", "topic": "Photosynthesis"}, put.attrs.Metadata)
	assert.Equal(t, pngBytes, put.data, "sniffing must not consume the upload")

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, put.path, resp.ObjectPath)
}

func TestUploadWorksheetRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content []byte
		fields  map[string]string
		field   string
	}{
		{"missing topic", "page.png", pngBytes, nil, "topic"},
		{"not an image", "notes.pdf", []byte("%PDF-1.4 hello"), map[string]string{"topic": "x"}, "file"},
		{"sidecar name", "page.meta.json", pngBytes, map[string]string{"topic": "x"}, "file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubObjects{}
			rr := httptest.NewRecorder()
			newUploadHandler(store).Worksheet(rr, multipartRequest(t, "/", tc.file, tc.content, tc.fields))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeError(t, rr).Fields, tc.field)
			assert.Empty(t, store.puts)
		})
	}
}

func TestUploadSyllabus(t *testing.T) {
	store := &stubObjects{}
	h := newUploadHandler(store)

	rr := httptest.NewRecorder()
	h.Syllabus(rr, multipartRequest(t, "/api/v1/uploads/syllabus", "../term1.pdf", []byte("%PDF-1.7\n..."), nil))

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, store.puts, 1)
	assert.Equal(t, "syllabus_uploads/teacher-1/1752566400000-term1.pdf", store.puts[0].path)
	assert.Equal(t, "application/pdf", store.puts[0].attrs.ContentType)
	assert.Equal(t, map[string]string{"teacherId": "teacher-1"}, store.puts[0].attrs.Metadata)
}

func TestUploadSyllabusDocumentTypes(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     []byte
		contentType string
	}{
		{"plain text", "term 2.txt", []byte("Week 1: Plants\nWeek 2: Water cycle\n"), "text/plain"},
		{"word document", "term2.docx", docxBytes(t, "Week 1: Plants"), docxMIME},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubObjects{}
			rr := httptest.NewRecorder()
			newUploadHandler(store).Syllabus(rr, multipartRequest(t, "/api/v1/uploads/syllabus", tc.file, tc.content, nil))

			require.Equal(t, http.StatusAccepted, rr.Code)
			require.Len(t, store.puts, 1)
			assert.Equal(t, "syllabus_uploads/teacher-1/1752566400000-"+strings.ReplaceAll(tc.file, " ", "_"), store.puts[0].path)
			assert.Equal(t, tc.contentType, store.puts[0].attrs.ContentType)
			assert.Equal(t, tc.content, store.puts[0].data)
		})
	}
}

func TestUploadSyllabusRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content []byte
	}{
		{"image", "term.png", pngBytes},
		{"pdf bytes named txt", "term.txt", []byte("%PDF-1.7\n...")},
		{"unknown extension", "term.rtf", []byte("{\\rtf1 hello}")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubObjects{}
			rr := httptest.NewRecorder()
			newUploadHandler(store).Syllabus(rr, multipartRequest(t, "/", tc.file, tc.content, nil))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeError(t, rr).Fields, "file")
			assert.Empty(t, store.puts)
		})
	}
}

func docxBytes(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestUploadTooLarge(t *testing.T) {
	store := &stubObjects{}
	h := newUploadHandler(store)

	big := append([]byte(nil), pngBytes...)
	big = append(big, bytes.Repeat([]byte{1}, 2<<20)...)
	rr := httptest.NewRecorder()
	h.Worksheet(rr, multipartRequest(t, "/", "big.png", big, map[string]string{"topic": "x"}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Empty(t, store.puts)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b.png", sanitizeFilename(`C:\Users\me\a b.png`))
	assert.Equal(t, "", sanitizeFilename(".."))
	assert.Equal(t, "x.pdf", sanitizeFilename("../../x.pdf"))
}
