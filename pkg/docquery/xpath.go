package docquery

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
)

// QueryXPath extracts trimmed text content from HTML using an XPath
// expression. Empty matches are dropped.
func QueryXPath(html, expression string, maxResults int) (*Result, error) {
	doc, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, expression)
	if err != nil {
		return nil, fmt.Errorf("compiling xpath %q: %w", expression, err)
	}

	values := []string{}
	for _, node := range nodes {
		text := strings.TrimSpace(htmlquery.InnerText(node))
		if text == "" {
			continue
		}
		values = append(values, text)
		if maxResults > 0 && len(values) == maxResults {
			break
		}
	}

	return &Result{Values: values, Count: len(values), Mode: ModeXPath}, nil
}
