package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/upstage-ai/upstage-mcp/internal/mcp/tools"
	"github.com/upstage-ai/upstage-mcp/internal/output"
	"github.com/upstage-ai/upstage-mcp/internal/schema"
)

// Resource URI scheme: upstage://
// Supported URIs:
//   upstage://templates/{name}
//   upstage://results/{category}

// classificationTemplateName exposes the built-in category set next to the
// extraction templates.
const classificationTemplateName = "classification"

// resourceNotFoundError marks a URI that parsed fine but points at nothing.
type resourceNotFoundError struct {
	uri string
}

func (e *resourceNotFoundError) Error() string {
	return "resource not found: " + e.uri
}

// resourceTemplates returns the advertised URI templates.
func resourceTemplates() []*sdkmcp.ResourceTemplate {
	return []*sdkmcp.ResourceTemplate{
		{
			URITemplate: "upstage://templates/{name}",
			Name:        "Schema Template",
			Description: "Built-in response_format envelope for a document type, ready to adapt and pass to extract_information. The classification template holds the default category set.",
			MIMEType:    tools.MimeJSON,
			Annotations: &sdkmcp.Annotations{
				Audience: []sdkmcp.Role{"assistant"},
				Priority: 0.8,
			},
		},
		{
			URITemplate: "upstage://results/{category}",
			Name:        "Saved Results",
			Description: "Most recent saved result files for one pipeline category. Use search_results for token queries; this resource is a plain newest-first listing.",
			MIMEType:    tools.MimeJSON,
			Annotations: &sdkmcp.Annotations{
				Audience: []sdkmcp.Role{"assistant"},
				Priority: 0.4,
			},
		},
	}
}

// concreteResources lists the fixed URIs clients can read without expanding
// a template.
func concreteResources() []*sdkmcp.Resource {
	names := append(schema.TemplateNames(), classificationTemplateName)
	resources := make([]*sdkmcp.Resource, 0, len(names)+len(output.Categories()))
	for _, name := range names {
		resources = append(resources, &sdkmcp.Resource{
			URI:         "upstage://templates/" + name,
			Name:        name + " template",
			Description: fmt.Sprintf("Built-in %s schema envelope", name),
			MIMEType:    tools.MimeJSON,
		})
	}
	for _, category := range output.Categories() {
		resources = append(resources, &sdkmcp.Resource{
			URI:         "upstage://results/" + category,
			Name:        category + " results",
			Description: fmt.Sprintf("Recent saved results under %s", category),
			MIMEType:    tools.MimeJSON,
		})
	}
	return resources
}

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	for _, t := range resourceTemplates() {
		s.mcpServer.AddResourceTemplate(t, s.handleResource)
	}
}

// handleResource adapts ReadResource for the SDK session layer.
func (s *Server) handleResource(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	res, err := s.ReadResource(ctx, req.Params.URI)
	var notFound *resourceNotFoundError
	if errors.As(err, &notFound) {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	return res, err
}

// ReadResource resolves one upstage:// URI. Both transports route resource
// reads through here.
func (s *Server) ReadResource(ctx context.Context, uri string) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(uri)
	if err != nil {
		return nil, err
	}

	switch {
	case params["name"] != "":
		envelope, err := templateEnvelope(params["name"])
		if err != nil {
			return nil, &resourceNotFoundError{uri: uri}
		}
		return toResourceResult(uri, envelope)

	default:
		category := params["category"]
		if !validResultCategory(category) {
			return nil, &resourceNotFoundError{uri: uri}
		}
		recent, err := s.deps.Store.Recent(ctx, category, s.deps.Config.DefaultSearchLimit)
		if err != nil {
			return nil, err
		}
		results := make([]tools.ResultInfo, len(recent))
		for i, a := range recent {
			results[i] = tools.BuildResultInfo(a)
		}
		return toResourceResult(uri, map[string]any{
			"category": category,
			"results":  results,
			"count":    len(results),
		})
	}
}

// templateEnvelope materializes one named template as a response_format map.
func templateEnvelope(name string) (map[string]any, error) {
	if name == classificationTemplateName {
		return schema.EnvelopeToMap(schema.DefaultClassification())
	}
	rf, ok := schema.Template(name)
	if !ok {
		return nil, fmt.Errorf("unknown template: %s", name)
	}
	return schema.EnvelopeToMap(rf)
}

func validResultCategory(category string) bool {
	for _, c := range output.Categories() {
		if c == category {
			return true
		}
	}
	return false
}

// parseResourceURI extracts parameters from an upstage:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, "upstage://") {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected upstage://")
	}

	path := strings.TrimPrefix(uri, "upstage://")
	parts := strings.Split(path, "/")

	params := make(map[string]string)

	switch parts[0] {
	case "templates":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("templates URI requires a template name")
		}
		params["name"] = parts[1]

	case "results":
		if len(parts) < 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("results URI requires a category")
		}
		// Categories may themselves contain a slash.
		params["category"] = strings.Join(parts[1:], "/")

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", parts[0]))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
