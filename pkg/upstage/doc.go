// Package upstage provides a Go client for the Upstage Document AI API.
//
// The API exposes four document-intelligence endpoints: document
// digitization (OCR/layout parsing via multipart upload), information
// extraction, extraction-schema generation, and document classification
// (all three via OpenAI-style chat completions carrying the document as a
// base64 data URI).
//
// # Quick Start
//
// Create a client and parse a document:
//
//	c := upstage.New(os.Getenv("UPSTAGE_API_KEY"))
//	raw, err := c.Digitize(ctx, &upstage.DigitizeRequest{
//	    FilePath: "invoice.pdf",
//	    Model:    "document-parse",
//	    OCR:      "force",
//	})
//
// Use custom configuration:
//
//	c := upstage.New(apiKey,
//	    upstage.WithBaseURL("https://api.upstage.ai/v1"),
//	    upstage.WithHTTPClient(customHTTPClient),
//	    upstage.WithMaxAttempts(5),
//	)
//
// # Retry
//
// Every call retries transient failures (connection errors, HTTP 429, HTTP
// 5xx) with exponential backoff; other 4xx responses fail immediately.
// Error responses decode into *APIError carrying the upstream status code
// and message:
//
//	var apiErr *upstage.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
//	    // rate limited even after retries
//	}
package upstage
