package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const mimeOctetStream = "application/octet-stream"

var extensionTypes = map[string]string{
	".txt":      MimeText,
	".text":     MimeText,
	".md":       MimeMarkdown,
	".markdown": MimeMarkdown,
	".pdf":      MimePDF,
	".docx":     MimeDOCX,
}

// ResolveMimeType returns the content type to hand to ExtractText. A concrete declared
// type is kept as-is; an empty or octet-stream type is resolved from the file extension
// and then from the payload bytes.
func ResolveMimeType(declared, fileName string, data []byte) string {
	clean := normalizeMimeType(declared)
	if clean != "" && clean != mimeOctetStream && clean != "application/zip" {
		return clean
	}

	if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(fileName))]; ok {
		return byExt
	}

	if len(data) == 0 {
		return clean
	}
	detected := mimetype.Detect(data)
	switch {
	case detected.Is(MimePDF):
		return MimePDF
	case detected.Is(MimeDOCX):
		return MimeDOCX
	case detected.Is("application/zip"):
		if zipHasDocument(data) {
			return MimeDOCX
		}
		return "application/zip"
	case detected.Is(MimeText):
		return MimeText
	}
	if clean != "" {
		return clean
	}
	return normalizeMimeType(detected.String())
}

func zipHasDocument(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}
