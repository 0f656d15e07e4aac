package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/docfile"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/internal/schema"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// Schema sources reported in extract_information output.
const (
	SchemaSourceInline    = "schema_json"
	SchemaSourceFile      = "schema_path"
	SchemaSourceGenerated = "generated"
)

// ExtractInformationInput is the input for extract_information.
type ExtractInformationInput struct {
	FilePath           string `json:"file_path" jsonschema:"required,Path to the document to extract from"`
	SchemaPath         string `json:"schema_path,omitempty" jsonschema:"Path to a JSON file holding a response_format envelope with a json_schema key"`
	SchemaJSON         string `json:"schema_json,omitempty" jsonschema:"Inline response_format JSON; takes precedence over schema_path"`
	AutoGenerateSchema *bool  `json:"auto_generate_schema,omitempty" jsonschema:"Generate a schema from the document when none is provided (default: true)"`
}

// ExtractInformationOutput is the output for extract_information.
type ExtractInformationOutput struct {
	Extraction    any                        `json:"extraction"`
	SchemaSource  string                     `json:"schema_source"`
	ResultSavedTo string                     `json:"result_saved_to"`
	SchemaSavedTo string                     `json:"schema_saved_to,omitempty"`
	Verification  *schema.VerificationReport `json:"verification,omitempty"`
	Usage         *upstage.Usage             `json:"usage,omitempty"`
}

// ToolExtractInformation extracts structured fields from a document.
//
// Schema precedence is schema_json, then schema_path, then auto-generation
// when enabled. With no source left the pipeline stops before any network
// traffic happens.
func ToolExtractInformation(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExtractInformationInput) (*sdkmcp.CallToolResult, ExtractInformationOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ExtractInformationInput) (*sdkmcp.CallToolResult, ExtractInformationOutput, error) {
		emit := d.progress("extract_information")
		emit(0, StageValidated)

		info, err := docfile.Validate(input.FilePath, docfile.PurposeExtraction)
		if err != nil {
			return ErrorResult(WrapValidationError(err)), ExtractInformationOutput{}, nil
		}
		emit(15, StageValidated)

		autoGenerate := input.AutoGenerateSchema == nil || *input.AutoGenerateSchema
		if input.SchemaJSON == "" && input.SchemaPath == "" && !autoGenerate {
			return ErrorResult(ErrNoSchemaAvailable()), ExtractInformationOutput{}, nil
		}

		dataURI, err := upstage.FileDataURI(info.Path)
		if err != nil {
			return ErrorResult(err), ExtractInformationOutput{}, nil
		}
		emit(30, StageEncoded)

		rf, source, schemaSavedTo, err := d.resolveExtractionSchema(ctx, input, info, dataURI)
		if err != nil {
			return ErrorResult(err), ExtractInformationOutput{}, nil
		}

		res, err := d.Client.ExtractInformation(ctx, d.Config.ExtractModel, dataURI, rf)
		if err != nil {
			return ErrorResult(WrapUpstageError(err)), ExtractInformationOutput{}, nil
		}
		emit(70, StageRequested)

		content, ok := res.Content()
		if !ok {
			return ErrorResult(ErrInvalidAPIResponse("response contained no choices")), ExtractInformationOutput{}, nil
		}
		var extraction map[string]any
		if err := json.Unmarshal([]byte(content), &extraction); err != nil {
			return ErrorResult(ErrInvalidAPIResponse(fmt.Sprintf("message content is not valid JSON: %v", err))), ExtractInformationOutput{}, nil
		}

		savedTo, err := d.Writer.Save(output.CategoryExtraction, info.Name, "extraction", extraction)
		if err != nil {
			return ErrorResult(err), ExtractInformationOutput{}, nil
		}
		emit(90, StageSaved)

		emit(100, StageDone)
		return nil, ExtractInformationOutput{
			Extraction:    extraction,
			SchemaSource:  source,
			ResultSavedTo: savedTo,
			SchemaSavedTo: schemaSavedTo,
			Verification:  schema.Verify(rf, extraction),
			Usage:         res.Completion.Usage,
		}, nil
	}
}

// resolveExtractionSchema picks the response_format envelope for one
// extraction and saves a copy of it next to the extraction results. The
// returned envelope always carries type "json_schema".
func (d *Deps) resolveExtractionSchema(ctx context.Context, input ExtractInformationInput, info *docfile.FileInfo, dataURI string) (map[string]any, string, string, error) {
	switch {
	case input.SchemaJSON != "":
		envelope, err := schema.Parse(input.SchemaJSON)
		if err != nil {
			return nil, "", "", WrapSchemaError(err)
		}
		savedTo, err := d.saveSchemaCopy(info.Name, "schema", envelope)
		if err != nil {
			return nil, "", "", err
		}
		return normalizeResponseFormat(envelope), SchemaSourceInline, savedTo, nil

	case input.SchemaPath != "":
		text, err := os.ReadFile(input.SchemaPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, "", "", &CodedError{
					Code:    ErrCodeNotFound,
					Message: fmt.Sprintf("schema file not found: %s", input.SchemaPath),
					Cause:   err,
				}
			}
			return nil, "", "", ErrInvalidInput(fmt.Sprintf("cannot read schema file %s: %v", input.SchemaPath, err))
		}
		envelope, err := schema.Parse(string(text))
		if err != nil {
			return nil, "", "", WrapSchemaError(err)
		}
		savedTo, err := d.saveSchemaCopy(info.Name, "schema", envelope)
		if err != nil {
			return nil, "", "", err
		}
		return normalizeResponseFormat(envelope), SchemaSourceFile, savedTo, nil

	default:
		envelope, err := d.generateSchemaFromDocument(ctx, dataURI)
		if err != nil {
			return nil, "", "", err
		}
		savedTo, err := d.saveSchemaCopy(info.Name, "generated_schema", envelope)
		if err != nil {
			return nil, "", "", err
		}
		return envelope, SchemaSourceGenerated, savedTo, nil
	}
}

func (d *Deps) saveSchemaCopy(name, suffix string, envelope map[string]any) (string, error) {
	return d.Writer.Save(output.CategorySchemas, name, suffix, envelope)
}

// normalizeResponseFormat rewraps a shape-validated envelope so the outer
// type field is always present, whatever the caller supplied around the
// json_schema key.
func normalizeResponseFormat(envelope map[string]any) map[string]any {
	return map[string]any{"type": "json_schema", "json_schema": envelope["json_schema"]}
}
