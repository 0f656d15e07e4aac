package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleSchemaDesign implements the extraction schema design guide.
func HandleSchemaDesign(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := req.Params.Arguments

		documentType := "document"
		fields := ""
		if args != nil {
			if v, ok := args["document_type"]; ok && v != "" {
				documentType = v
			}
			if v, ok := args["fields"]; ok {
				fields = v
			}
		}

		var sb strings.Builder

		// 1. Role
		sb.WriteString("# Design an Extraction Schema\n\n")
		sb.WriteString(fmt.Sprintf("You are designing a response_format schema that tells extract_information which fields to pull out of a %s. ", documentType))
		sb.WriteString("A precise schema is the difference between clean structured data and a wall of guesses.\n\n")

		// 2. Required envelope shape
		sb.WriteString("## Required Envelope Shape\n\n")
		sb.WriteString("Schemas are rejected before any API call unless all four rules hold:\n\n")
		sb.WriteString("1. Top level has a `json_schema` key\n")
		sb.WriteString("2. `json_schema.name` is a non-empty string\n")
		sb.WriteString("3. `json_schema.schema.type` is `\"object\"`\n")
		sb.WriteString("4. `json_schema.schema.properties` is a non-empty object\n\n")
		sb.WriteString("```json\n")
		sb.WriteString("{\n")
		sb.WriteString("  \"type\": \"json_schema\",\n")
		sb.WriteString("  \"json_schema\": {\n")
		sb.WriteString(fmt.Sprintf("    \"name\": %q,\n", documentType+"_schema"))
		sb.WriteString("    \"schema\": {\n")
		sb.WriteString("      \"type\": \"object\",\n")
		sb.WriteString("      \"properties\": {\n")
		sb.WriteString("        \"invoice_number\": {\"type\": \"string\", \"description\": \"Invoice identifier\"},\n")
		sb.WriteString("        \"total_amount\": {\"type\": \"number\", \"description\": \"Grand total including tax\"},\n")
		sb.WriteString("        \"line_items\": {\n")
		sb.WriteString("          \"type\": \"array\",\n")
		sb.WriteString("          \"items\": {\"type\": \"object\", \"properties\": {\"name\": {\"type\": \"string\"}, \"price\": {\"type\": \"number\"}}}\n")
		sb.WriteString("        }\n")
		sb.WriteString("      }\n")
		sb.WriteString("    }\n")
		sb.WriteString("  }\n")
		sb.WriteString("}\n")
		sb.WriteString("```\n\n")

		// 3. Field guidance
		sb.WriteString("## Field Guidance\n\n")
		sb.WriteString("- Use `string` for anything you would not do arithmetic on (IDs, dates, phone numbers)\n")
		sb.WriteString("- Use `number` only for genuine quantities; currency symbols stay out of the value\n")
		sb.WriteString("- Use `array` with an object `items` schema for repeating rows like line items\n")
		sb.WriteString("- Write a description for every field; the model extracts what you describe, not what you name\n")
		if fields != "" {
			sb.WriteString(fmt.Sprintf("- Requested fields to cover: %s\n", fields))
		}
		sb.WriteString("\n")

		// 4. Templates
		sb.WriteString("## Built-in Templates\n\n")
		sb.WriteString("Ready-made schemas exist for: ")
		sb.WriteString(strings.Join(cfg.TemplateNames, ", "))
		sb.WriteString(".\nRead one with the `upstage://templates/{name}` resource and adapt it rather than starting blank.\n\n")

		// 5. Workflow
		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		sb.WriteString("# Let the API propose a starting point from a real document:\n")
		sb.WriteString("generate_schema(file_path=\"<path>\")\n\n")
		sb.WriteString("# Then refine and use it:\n")
		sb.WriteString("extract_information(file_path=\"<path>\", schema_json=\"<edited schema>\")\n")
		sb.WriteString("```\n\n")

		// 6. Constraints
		sb.WriteString("## Constraints\n\n")
		sb.WriteString("- Keep schemas flat where you can; nesting beyond two levels rarely extracts well\n")
		sb.WriteString("- STOP at the fields the user actually needs - every extra field costs accuracy on the rest\n")

		return &sdkmcp.GetPromptResult{
			Description: "Extraction schema design guide",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
