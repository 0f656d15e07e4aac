// Package docquery extracts text from HTML fragments with CSS selectors
// or XPath expressions. Parse results from the Upstage digitization
// endpoint carry their layout as HTML, which makes either query style a
// natural fit depending on the caller.
package docquery

import "strings"

// Query modes.
const (
	ModeAuto  = "auto"
	ModeCSS   = "css"
	ModeXPath = "xpath"
)

// Result holds the extracted text values of one query.
type Result struct {
	Values []string `json:"values"`
	Count  int      `json:"count"`
	Mode   string   `json:"mode"`
}

// Query dispatches to CSS or XPath extraction. ModeAuto treats
// expressions starting with "/" as XPath and everything else as a CSS
// selector.
func Query(html, expression, mode string, maxResults int) (*Result, error) {
	switch mode {
	case ModeCSS:
		return QueryCSS(html, expression, maxResults)
	case ModeXPath:
		return QueryXPath(html, expression, maxResults)
	default:
		if strings.HasPrefix(expression, "/") {
			return QueryXPath(html, expression, maxResults)
		}
		return QueryCSS(html, expression, maxResults)
	}
}
