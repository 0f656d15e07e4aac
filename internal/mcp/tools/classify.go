package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/docfile"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/internal/schema"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// ClassifyDocumentInput is the input for classify_document.
type ClassifyDocumentInput struct {
	FilePath   string `json:"file_path" jsonschema:"required,Path to the document to classify"`
	SchemaPath string `json:"schema_path,omitempty" jsonschema:"Path to a JSON file with a custom classification response_format"`
	SchemaJSON string `json:"schema_json,omitempty" jsonschema:"Inline custom classification response_format; takes precedence over schema_path"`
}

// ClassifyDocumentOutput is the output for classify_document.
type ClassifyDocumentOutput struct {
	Classification string `json:"classification"`
	ResultSavedTo  string `json:"result_saved_to"`
}

// ToolClassifyDocument assigns a document one label from a category set.
// Without a custom schema the built-in category list is used, which always
// ends in "others" as the catch-all.
func ToolClassifyDocument(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ClassifyDocumentInput) (*sdkmcp.CallToolResult, ClassifyDocumentOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ClassifyDocumentInput) (*sdkmcp.CallToolResult, ClassifyDocumentOutput, error) {
		emit := d.progress("classify_document")
		emit(0, StageValidated)

		info, err := docfile.Validate(input.FilePath, docfile.PurposeExtraction)
		if err != nil {
			return ErrorResult(WrapValidationError(err)), ClassifyDocumentOutput{}, nil
		}
		emit(15, StageValidated)

		rf, err := resolveClassificationSchema(input)
		if err != nil {
			return ErrorResult(err), ClassifyDocumentOutput{}, nil
		}

		dataURI, err := upstage.FileDataURI(info.Path)
		if err != nil {
			return ErrorResult(err), ClassifyDocumentOutput{}, nil
		}
		emit(30, StageEncoded)

		res, err := d.Client.ClassifyDocument(ctx, d.Config.ClassifyModel, dataURI, rf)
		if err != nil {
			return ErrorResult(WrapUpstageError(err)), ClassifyDocumentOutput{}, nil
		}
		emit(70, StageRequested)

		content, ok := res.Content()
		if !ok {
			return ErrorResult(ErrInvalidAPIResponse("response contained no choices")), ClassifyDocumentOutput{}, nil
		}
		label := parseClassificationLabel(content)
		if label == "" {
			return ErrorResult(ErrInvalidAPIResponse("empty classification label")), ClassifyDocumentOutput{}, nil
		}

		record := map[string]any{
			"classification": label,
			"source_file":    info.Path,
			"model":          d.Config.ClassifyModel,
			"raw_response":   res.Raw,
		}
		savedTo, err := d.Writer.Save(output.CategoryClassification, info.Name, "classification", record)
		if err != nil {
			return ErrorResult(err), ClassifyDocumentOutput{}, nil
		}
		emit(90, StageSaved)

		emit(100, StageDone)
		return nil, ClassifyDocumentOutput{
			Classification: label,
			ResultSavedTo:  savedTo,
		}, nil
	}
}

// resolveClassificationSchema picks the response_format for one
// classification: inline JSON first, then a schema file, then the built-in
// category set.
func resolveClassificationSchema(input ClassifyDocumentInput) (map[string]any, error) {
	switch {
	case input.SchemaJSON != "":
		envelope, err := schema.Parse(input.SchemaJSON)
		if err != nil {
			return nil, WrapSchemaError(err)
		}
		return normalizeResponseFormat(envelope), nil

	case input.SchemaPath != "":
		text, err := os.ReadFile(input.SchemaPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &CodedError{
					Code:    ErrCodeNotFound,
					Message: fmt.Sprintf("schema file not found: %s", input.SchemaPath),
					Cause:   err,
				}
			}
			return nil, ErrInvalidInput(fmt.Sprintf("cannot read schema file %s: %v", input.SchemaPath, err))
		}
		envelope, err := schema.Parse(string(text))
		if err != nil {
			return nil, WrapSchemaError(err)
		}
		return normalizeResponseFormat(envelope), nil

	default:
		return schema.EnvelopeToMap(schema.DefaultClassification())
	}
}

// parseClassificationLabel pulls the category label out of the message
// content. The API answers with either a bare label, a JSON string, or a
// {"category": ...} object depending on the schema in play.
func parseClassificationLabel(content string) string {
	trimmed := strings.TrimSpace(content)

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
		switch v := decoded.(type) {
		case string:
			return strings.TrimSpace(v)
		case map[string]any:
			s, _ := v["category"].(string)
			return strings.TrimSpace(s)
		}
	}

	return trimmed
}
