package upstage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mimeTypes maps supported extensions onto the MIME types embedded in
// data URIs. Unknown extensions fall back to application/octet-stream.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".bmp":  "image/bmp",
	".pdf":  "application/pdf",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".hwp":  "application/x-hwp",
	".hwpx": "application/x-hwpx",
}

// MIMEType returns the MIME type for a file path based on its extension.
func MIMEType(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// FileDataURI reads the whole file and returns it as a base64 data URI in
// the form the chat-based endpoints expect for document content.
func FileDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return fmt.Sprintf("data:%s;base64,%s", MIMEType(path), base64.StdEncoding.EncodeToString(data)), nil
}
