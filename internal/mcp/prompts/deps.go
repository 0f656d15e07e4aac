// Package prompts contains MCP prompt implementations for the Upstage
// document workflows.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	OutputDir     string
	TemplateNames []string
}
