package upstage

import "fmt"

// ChatCompletion is the typed portion of a chat-completions response.
type ChatCompletion struct {
	ID      string       `json:"id,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// ChatChoice is one completion candidate. The endpoints used here return
// exactly one.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// ChatMessage carries the model output. Content is a JSON document encoded
// as a string for all Upstage document-intelligence endpoints.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult pairs the typed completion with the raw decoded response so
// callers can persist the exact upstream payload.
type ChatResult struct {
	Completion ChatCompletion
	Raw        map[string]any
}

// Content returns choices[0].message.content, or ok=false when the
// response carries no choices.
func (r *ChatResult) Content() (string, bool) {
	if len(r.Completion.Choices) == 0 {
		return "", false
	}
	return r.Completion.Choices[0].Message.Content, true
}

// chatRequest is the JSON-mode request envelope.
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat any           `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string    `json:"type"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// APIError represents an error response from the Upstage API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstage API error (status %d): %s", e.StatusCode, e.Message)
}

// errorResponse is the JSON envelope for API errors.
type errorResponse struct {
	Error *errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}
