package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxExtractChars bounds how much document text is sent to the model.
const DefaultMaxExtractChars = 60000

// FileExtractService pulls plain text out of uploaded syllabus documents.
type FileExtractService struct {
	maxChars int
}

func NewFileExtractService(maxChars int) *FileExtractService {
	if maxChars <= 0 {
		maxChars = DefaultMaxExtractChars
	}
	return &FileExtractService{maxChars: maxChars}
}

// Supported reports whether name has an extension ExtractText understands.
func (s *FileExtractService) Supported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf", ".txt", ".docx":
		return true
	}
	return false
}

// ExtractText returns normalized text from data, choosing the decoder from
// name's extension. Output longer than the configured limit is truncated at a
// line boundary.
func (s *FileExtractService) ExtractText(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".txt":
		text = string(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("unsupported file type for text extraction: %s", ext)
	}
	if err != nil {
		return "", err
	}

	text = normalizeExtractedText(text)
	if text == "" {
		return "", fmt.Errorf("no extractable text found in %s", name)
	}
	return truncateAtLine(text, s.maxChars), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		documentXML, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return stripDOCXML(documentXML), nil
	}
	return "", fmt.Errorf("docx document.xml not found")
}

var (
	xmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	docxReplacer  = strings.NewReplacer(
		"</w:p>", "\n",
		"<w:br/>", "\n",
		"<w:br />", "\n",
		"<w:tab/>", "\t",
	)
	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
)

func stripDOCXML(src []byte) string {
	s := docxReplacer.Replace(string(src))
	s = xmlTagPattern.ReplaceAllString(s, "")
	return entityReplacer.Replace(s)
}

// normalizeExtractedText trims every line and collapses runs of blank lines.
func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	blank := false
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !blank && b.Len() > 0 {
				b.WriteString("\n")
			}
			blank = true
			continue
		}
		blank = false
		b.WriteString(trimmed)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func truncateAtLine(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut
}
