package upstage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ExtractInformation runs schema-driven extraction over a document
// supplied as a data URI. responseFormat is the json_schema envelope that
// shapes the model output.
func (c *Client) ExtractInformation(ctx context.Context, model, dataURI string, responseFormat any) (*ChatResult, error) {
	return c.chat(ctx, "extract_information", extractionPath, model, dataURI, responseFormat)
}

// GenerateSchema asks the API to propose an extraction schema for the
// document supplied as a data URI.
func (c *Client) GenerateSchema(ctx context.Context, model, dataURI string) (*ChatResult, error) {
	return c.chat(ctx, "generate_schema", schemaGenPath, model, dataURI, nil)
}

// ClassifyDocument classifies a document against the category enum carried
// in responseFormat.
func (c *Client) ClassifyDocument(ctx context.Context, model, dataURI string, responseFormat any) (*ChatResult, error) {
	return c.chat(ctx, "classify_document", classificationPath, model, dataURI, responseFormat)
}

// chat performs one JSON-mode call: a single user message whose content is
// the document data URI, plus an optional response_format.
func (c *Client) chat(ctx context.Context, op, path, model, dataURI string, responseFormat any) (*ChatResult, error) {
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []chatContent{
					{Type: "image_url", ImageURL: &imageURL{URL: dataURI}},
				},
			},
		},
		ResponseFormat: responseFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	body, err := c.do(ctx, op, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	result := &ChatResult{}
	if err := json.Unmarshal(body, &result.Completion); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if err := json.Unmarshal(body, &result.Raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return result, nil
}
