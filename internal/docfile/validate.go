// Package docfile validates input documents before they are sent to the
// Upstage API. Validation is purely local: existence, regular-file check,
// extension allow-list, and a size ceiling, all before any network call.
package docfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// MaxFileSize is the ceiling on input document size.
const MaxFileSize = 50 << 20 // 50 MiB

// Purpose selects which extension allow-list applies.
type Purpose string

const (
	PurposeParsing    Purpose = "parsing"
	PurposeExtraction Purpose = "extraction"
)

// parsingExtensions covers the document-digitization endpoint, which also
// accepts HWP/HWPX word-processor files.
var parsingExtensions = []string{
	".jpg", ".jpeg", ".png", ".bmp", ".pdf", ".tiff", ".heic",
	".docx", ".pptx", ".xlsx", ".hwp", ".hwpx",
}

// extractionExtensions covers the chat-completions endpoints (extraction,
// schema generation, classification).
var extractionExtensions = []string{
	".jpg", ".jpeg", ".png", ".bmp", ".pdf", ".tiff", ".heic",
	".docx", ".pptx", ".xlsx",
}

// AllowedExtensions returns the allow-list for a purpose, lower-cased with
// leading dots.
func AllowedExtensions(p Purpose) []string {
	if p == PurposeParsing {
		return parsingExtensions
	}
	return extractionExtensions
}

// FileInfo describes a validated input document.
type FileInfo struct {
	Path      string // path as supplied by the caller
	Name      string // base name without extension
	Extension string // lower-cased, with leading dot
	Size      int64
}

// NotFoundError reports a path that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// NotAFileError reports a path that exists but is not a regular file.
type NotAFileError struct {
	Path string
}

func (e *NotAFileError) Error() string {
	return fmt.Sprintf("not a regular file: %s", e.Path)
}

// UnsupportedFormatError reports an extension outside the allow-list for
// the requested purpose.
type UnsupportedFormatError struct {
	Extension string
	Purpose   Purpose
	Allowed   []string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported format %s for %s, supported formats: %s",
		ext, e.Purpose, strings.Join(e.Allowed, ", "))
}

// TooLargeError reports a file exceeding the size ceiling.
type TooLargeError struct {
	Size    int64
	MaxSize int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file size %d bytes exceeds the %d byte limit", e.Size, e.MaxSize)
}

// Validate checks that path names an existing regular file whose extension
// is allowed for purpose and whose size is within the ceiling. It has no
// side effects and is safe to call repeatedly.
func Validate(path string, purpose Purpose) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, err
	}
	if !stat.Mode().IsRegular() {
		return nil, &NotAFileError{Path: path}
	}

	ext := strings.ToLower(filepath.Ext(path))
	allowed := AllowedExtensions(purpose)
	if !slices.Contains(allowed, ext) {
		return nil, &UnsupportedFormatError{Extension: ext, Purpose: purpose, Allowed: allowed}
	}

	if stat.Size() > MaxFileSize {
		return nil, &TooLargeError{Size: stat.Size(), MaxSize: MaxFileSize}
	}

	base := filepath.Base(path)
	return &FileInfo{
		Path:      path,
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Extension: ext,
		Size:      stat.Size(),
	}, nil
}
