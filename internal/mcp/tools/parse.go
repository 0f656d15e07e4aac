package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/docfile"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/pkg/upstage"
)

// ParseDocumentInput is the input for parse_document.
type ParseDocumentInput struct {
	FilePath      string   `json:"file_path" jsonschema:"required,Absolute or relative path to the document file to parse"`
	OutputFormats []string `json:"output_formats,omitempty" jsonschema:"Formats to request in the parsed content, e.g. html, text, markdown (default: API decides)"`
}

// ParseDocumentOutput is the output for parse_document.
type ParseDocumentOutput struct {
	Content       any    `json:"content,omitempty"`
	Elements      int    `json:"elements,omitempty"`
	ResultSavedTo string `json:"result_saved_to"`
	Hint          string `json:"hint,omitempty"`
}

// ToolParseDocument digitizes a document into structured content.
//
// Pipeline: validate the file, upload it to the digitization endpoint, save
// the full raw response, then return the content field plus the save path.
func ToolParseDocument(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ParseDocumentInput) (*sdkmcp.CallToolResult, ParseDocumentOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ParseDocumentInput) (*sdkmcp.CallToolResult, ParseDocumentOutput, error) {
		emit := d.progress("parse_document")
		emit(0, StageValidated)

		info, err := docfile.Validate(input.FilePath, docfile.PurposeParsing)
		if err != nil {
			return ErrorResult(WrapValidationError(err)), ParseDocumentOutput{}, nil
		}
		emit(20, StageValidated)
		emit(30, StageEncoded)

		raw, err := d.Client.Digitize(ctx, &upstage.DigitizeRequest{
			FilePath:       info.Path,
			Model:          d.Config.ParseModel,
			OCR:            "force",
			Base64Encoding: []string{"table"},
			OutputFormats:  input.OutputFormats,
		})
		if err != nil {
			return ErrorResult(WrapUpstageError(err)), ParseDocumentOutput{}, nil
		}
		emit(70, StageRequested)

		savedTo, err := d.Writer.Save(output.CategoryParsing, info.Name, "upstage", raw)
		if err != nil {
			return ErrorResult(err), ParseDocumentOutput{}, nil
		}
		emit(90, StageSaved)

		out := ParseDocumentOutput{
			Content:       raw["content"],
			ResultSavedTo: savedTo,
			Hint:          fmt.Sprintf("Full response saved to %s. Use query_parsed_content to pull values out of the HTML.", savedTo),
		}
		if elements, ok := raw["elements"].([]any); ok {
			out.Elements = len(elements)
		}

		emit(100, StageDone)
		return nil, out, nil
	}
}
