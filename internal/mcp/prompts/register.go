package prompts

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Entry pairs a prompt with its handler so transports that dispatch prompt
// requests themselves can reuse the same definitions.
type Entry struct {
	Prompt  *sdkmcp.Prompt
	Handler func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error)
}

// Entries returns all prompts in registration order.
func Entries(cfg *Config) []Entry {
	return []Entry{
		// Prompt 1: Document processing workflow
		{
			Prompt: &sdkmcp.Prompt{
				Name:        "document_workflow",
				Description: "RECOMMENDED: Walk through parsing, extracting, and classifying a document end to end. Start here - explains which tool to reach for and where results land on disk.",
				Arguments: []*sdkmcp.PromptArgument{
					{
						Name:        "file_path",
						Description: "Path to the document to work on",
						Required:    false,
					},
					{
						Name:        "goal",
						Description: "What you are after: parse, extract, or classify",
						Required:    false,
					},
				},
			},
			Handler: HandleDocumentWorkflow(cfg),
		},

		// Prompt 2: Extraction schema design
		{
			Prompt: &sdkmcp.Prompt{
				Name:        "schema_design",
				Description: "Design a response_format schema for extract_information: required envelope shape, field type guidance, and the built-in templates to start from.",
				Arguments: []*sdkmcp.PromptArgument{
					{
						Name:        "document_type",
						Description: "Kind of document the schema targets (e.g. invoice, contract)",
						Required:    false,
					},
					{
						Name:        "fields",
						Description: "Comma-separated wishlist of fields to capture",
						Required:    false,
					},
				},
			},
			Handler: HandleSchemaDesign(cfg),
		},
	}
}

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	for _, e := range Entries(cfg) {
		srv.AddPrompt(e.Prompt, e.Handler)
	}
}
