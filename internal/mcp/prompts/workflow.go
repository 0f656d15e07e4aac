package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleDocumentWorkflow implements the end-to-end document processing guide.
func HandleDocumentWorkflow(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		filePath := "<path/to/document.pdf>"
		goal := ""
		if args != nil {
			if v, ok := args["file_path"]; ok && v != "" {
				filePath = v
			}
			if v, ok := args["goal"]; ok {
				goal = v
			}
		}

		var sb strings.Builder

		// 1. Role
		sb.WriteString("# Document Processing Workflow\n\n")
		sb.WriteString("You are a document intelligence assistant working with the Upstage document AI tools. ")
		sb.WriteString("Your goal is to turn a raw document file into the structured data the user actually needs, without round-tripping the same file more often than necessary.\n\n")

		// 2. Task Overview
		sb.WriteString("## Task Overview\n\n")
		sb.WriteString("Every tool validates the file locally first, calls the hosted API, and saves the full result as JSON before answering. ")
		sb.WriteString(fmt.Sprintf("Saved results live under `%s`, split by pipeline:\n\n", cfg.OutputDir))
		sb.WriteString("- `document_parsing/` - full parse responses\n")
		sb.WriteString("- `information_extraction/` - extracted field values\n")
		sb.WriteString("- `information_extraction/schemas/` - provided and generated schemas\n")
		sb.WriteString("- `document_classification/` - classification labels\n\n")

		// 3. Picking the right pipeline
		sb.WriteString("## Picking the Right Tool\n\n")
		sb.WriteString("1. **parse_document** - when you need the document's content itself: tables, text, layout. Returns HTML/text/markdown renderings.\n")
		sb.WriteString("2. **extract_information** - when you need specific fields (totals, dates, parties). Bring a schema or let it generate one.\n")
		sb.WriteString("3. **generate_schema** - when you want to see what is extractable before committing to a schema.\n")
		sb.WriteString("4. **classify_document** - when you only need to know what kind of document this is.\n\n")

		// 4. Suggested calls
		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		switch goal {
		case "parse":
			sb.WriteString(fmt.Sprintf("parse_document(file_path=%q, output_formats=[\"html\", \"markdown\"])\n", filePath))
		case "extract":
			sb.WriteString(fmt.Sprintf("generate_schema(file_path=%q)\n", filePath))
			sb.WriteString(fmt.Sprintf("extract_information(file_path=%q, schema_json=\"<schema_json from previous step>\")\n", filePath))
		case "classify":
			sb.WriteString(fmt.Sprintf("classify_document(file_path=%q)\n", filePath))
		default:
			sb.WriteString(fmt.Sprintf("# Start broad, then narrow down:\nclassify_document(file_path=%q)\n", filePath))
			sb.WriteString(fmt.Sprintf("parse_document(file_path=%q)\n", filePath))
			sb.WriteString(fmt.Sprintf("extract_information(file_path=%q)\n", filePath))
		}
		sb.WriteString("\n# Revisit earlier results without re-calling the API:\n")
		sb.WriteString("search_results(query=\"<document name>\")\n")
		sb.WriteString("query_result(result_path=\"<result_saved_to>\", expression=\".content.text\")\n")
		sb.WriteString("query_parsed_content(result_path=\"<result_saved_to>\", selector=\"table td\")\n")
		sb.WriteString("```\n\n")

		// 5. Constraints
		sb.WriteString("## Constraints\n\n")
		sb.WriteString("- Files must exist locally, be regular files, and stay under 50 MiB\n")
		sb.WriteString("- Supported formats: JPG, PNG, BMP, PDF, TIFF, HEIC, DOCX, PPTX, XLSX (parse also takes HWP/HWPX)\n")
		sb.WriteString("- Prefer query_result over pasting whole saved files back into context\n")
		sb.WriteString("- Do NOT re-parse a document you already parsed; search for the saved result instead\n\n")

		// 6. Error Recovery
		sb.WriteString("## If Things Go Wrong\n\n")
		sb.WriteString("- **UNSUPPORTED_FORMAT?** Check the extension list above; convert the file first\n")
		sb.WriteString("- **TOO_LARGE?** The message shows actual and maximum bytes; split or downscale the document\n")
		sb.WriteString("- **RATE_LIMITED or TIMEOUT?** The client already retried; wait before trying again\n")
		sb.WriteString("- **INVALID_SCHEMA_SHAPE?** Use the schema_design prompt to fix the envelope\n")

		return &sdkmcp.GetPromptResult{
			Description: "End-to-end document processing workflow",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
