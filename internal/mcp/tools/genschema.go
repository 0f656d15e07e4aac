package tools

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/docfile"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// GenerateSchemaInput is the input for generate_schema.
type GenerateSchemaInput struct {
	FilePath string `json:"file_path" jsonschema:"required,Path to the document to derive an extraction schema from"`
}

// GenerateSchemaOutput is the output for generate_schema.
type GenerateSchemaOutput struct {
	Schema        any    `json:"schema"`
	SchemaJSON    string `json:"schema_json"`
	ResultSavedTo string `json:"result_saved_to"`
	Hint          string `json:"hint,omitempty"`
}

// ToolGenerateSchema asks the API to propose an extraction schema for a
// document. The returned envelope is ready to pass back to
// extract_information as schema_json.
func ToolGenerateSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateSchemaInput) (*sdkmcp.CallToolResult, GenerateSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GenerateSchemaInput) (*sdkmcp.CallToolResult, GenerateSchemaOutput, error) {
		emit := d.progress("generate_schema")
		emit(0, StageValidated)

		info, err := docfile.Validate(input.FilePath, docfile.PurposeExtraction)
		if err != nil {
			return ErrorResult(WrapValidationError(err)), GenerateSchemaOutput{}, nil
		}
		emit(20, StageValidated)

		dataURI, err := upstage.FileDataURI(info.Path)
		if err != nil {
			return ErrorResult(err), GenerateSchemaOutput{}, nil
		}
		emit(40, StageEncoded)

		envelope, err := d.generateSchemaFromDocument(ctx, dataURI)
		if err != nil {
			return ErrorResult(err), GenerateSchemaOutput{}, nil
		}
		emit(70, StageRequested)

		savedTo, err := d.Writer.Save(output.CategorySchemas, info.Name, "generated_schema", envelope)
		if err != nil {
			return ErrorResult(err), GenerateSchemaOutput{}, nil
		}
		emit(90, StageSaved)

		text, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			return ErrorResult(err), GenerateSchemaOutput{}, nil
		}

		emit(100, StageDone)
		return nil, GenerateSchemaOutput{
			Schema:        envelope,
			SchemaJSON:    string(text),
			ResultSavedTo: savedTo,
			Hint:          "Pass schema_json (or schema_path pointing at the saved file) to extract_information to use this schema.",
		}, nil
	}
}

// generateSchemaFromDocument runs the schema-generation call for an encoded
// document and normalizes the answer into a response_format envelope.
func (d *Deps) generateSchemaFromDocument(ctx context.Context, dataURI string) (map[string]any, error) {
	res, err := d.Client.GenerateSchema(ctx, d.Config.ExtractModel, dataURI)
	if err != nil {
		return nil, WrapUpstageError(err)
	}

	content, ok := res.Content()
	if !ok {
		return nil, ErrInvalidAPIResponse("response contained no choices")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, ErrInvalidAPIResponse(fmt.Sprintf("message content is not valid JSON: %v", err))
	}

	js, ok := parsed["json_schema"]
	if !ok {
		return nil, ErrInvalidSchemaResponse(`content has no "json_schema" key`)
	}

	return map[string]any{"type": "json_schema", "json_schema": js}, nil
}
