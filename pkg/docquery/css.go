package docquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// QueryCSS extracts trimmed text content from HTML using a CSS selector.
// Empty matches are dropped.
func QueryCSS(html, expression string, maxResults int) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	values := []string{}
	doc.Find(expression).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			values = append(values, text)
		}
		return maxResults <= 0 || len(values) < maxResults
	})

	return &Result{Values: values, Count: len(values), Mode: ModeCSS}, nil
}
