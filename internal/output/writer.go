// Package output persists tool results as timestamped JSON files under a
// fixed base directory.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Result categories, used as subdirectories of the base directory.
const (
	CategoryParsing        = "document_parsing"
	CategoryExtraction     = "information_extraction"
	CategorySchemas        = "information_extraction/schemas"
	CategoryClassification = "document_classification"
)

// Categories lists every result category.
func Categories() []string {
	return []string{
		CategoryParsing,
		CategoryExtraction,
		CategorySchemas,
		CategoryClassification,
	}
}

// Writer writes result payloads under BaseDir. File names follow
// <input>_<timestamp>_<suffix>.json with a second-resolution UTC
// timestamp. A same-second collision on the same input name gets a
// numeric discriminator instead of overwriting the earlier result.
type Writer struct {
	BaseDir string

	now func() time.Time
}

// NewWriter creates a Writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{BaseDir: baseDir, now: time.Now}
}

// Save writes payload as indented JSON and returns the absolute path of
// the created file.
func (w *Writer) Save(category, inputName, suffix string, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}

	dir := filepath.Join(w.BaseDir, filepath.FromSlash(category))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	stem := fmt.Sprintf("%s_%s_%s", sanitizeName(inputName), w.now().UTC().Format("20060102T150405"), suffix)
	path, err := w.freePath(dir, stem)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing result: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// freePath returns the first non-existing path for stem, appending _2, _3
// and so on when the plain name is taken.
func (w *Writer) freePath(dir, stem string) (string, error) {
	path := filepath.Join(dir, stem+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}
	for n := 2; n < 10000; n++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.json", stem, n))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("no free output name for %s", stem)
}

// sanitizeName keeps file names portable: anything outside letters,
// digits, dot, dash, and underscore becomes an underscore.
func sanitizeName(name string) string {
	if name == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
