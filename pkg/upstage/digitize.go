package upstage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// DigitizeRequest describes one document-digitization (parse) call.
type DigitizeRequest struct {
	FilePath       string   // document to upload
	Model          string   // e.g. "document-parse"
	OCR            string   // "force" or "auto"
	Base64Encoding []string // element categories returned base64-encoded, e.g. ["table"]
	OutputFormats  []string // optional, e.g. ["html", "markdown"]
}

// Digitize uploads a document to the digitization endpoint as multipart
// form data and returns the decoded raw response. The form body is rebuilt
// from disk on every retry attempt; input files are capped well below
// memory limits by the caller's validation.
func (c *Client) Digitize(ctx context.Context, req *DigitizeRequest) (map[string]any, error) {
	body, err := c.do(ctx, "parse_document", func(ctx context.Context) (*http.Request, error) {
		return c.newDigitizeRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return raw, nil
}

func (c *Client) newDigitizeRequest(ctx context.Context, req *DigitizeRequest) (*http.Request, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeDigitizeForm(mw, f, req); err != nil {
		return nil, fmt.Errorf("assembling form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+digitizePath, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	return httpReq, nil
}

// writeDigitizeForm writes the scalar fields then the document part.
// List-valued form fields are JSON-encoded per the API's convention.
func writeDigitizeForm(mw *multipart.Writer, f *os.File, req *DigitizeRequest) error {
	if err := mw.WriteField("model", req.Model); err != nil {
		return err
	}
	if req.OCR != "" {
		if err := mw.WriteField("ocr", req.OCR); err != nil {
			return err
		}
	}
	if len(req.Base64Encoding) > 0 {
		encoded, err := json.Marshal(req.Base64Encoding)
		if err != nil {
			return err
		}
		if err := mw.WriteField("base64_encoding", string(encoded)); err != nil {
			return err
		}
	}
	if len(req.OutputFormats) > 0 {
		encoded, err := json.Marshal(req.OutputFormats)
		if err != nil {
			return err
		}
		if err := mw.WriteField("output_formats", string(encoded)); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("document", filepath.Base(f.Name()))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading document: %w", err)
	}
	return mw.Close()
}
