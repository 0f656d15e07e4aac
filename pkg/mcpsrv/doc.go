// Package mcpsrv assembles and runs the Upstage document MCP server.
//
// The package wires the builtin document tools (parsing, information
// extraction, schema generation, classification), the workflow prompts, and
// the upstage:// resources into a ready-to-run server, and offers functional
// options for extending or replacing any of them.
//
// # Basic Usage
//
// Build a server from an API client and run it on stdio:
//
//	server, err := mcpsrv.NewServer(upstage.New(os.Getenv("UPSTAGE_API_KEY")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// The same server can listen on a streamable HTTP endpoint instead:
//
//	server.RunHTTP(ctx, ":3000")
//
// # Extension
//
// Custom tools use the MCP SDK types directly. A handler takes a typed
// input and returns a typed output:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type WordCountInput struct {
//	    Text string `json:"text"`
//	}
//
//	type WordCountOutput struct {
//	    Words int `json:"words"`
//	}
//
//	func countWords(ctx context.Context, req *mcp.CallToolRequest, in WordCountInput) (*mcp.CallToolResult, WordCountOutput, error) {
//	    return nil, WordCountOutput{Words: len(strings.Fields(in.Text))}, nil
//	}
//
//	server, err := mcpsrv.NewServer(
//	    upstage.New(apiKey),
//	    mcpsrv.WithTool(&mcp.Tool{Name: "count_words", Description: "Count words in text"}, countWords),
//	)
//
// Tools that need the shared infrastructure (the API client, the result
// store, the output writer) are registered with WithDepsTool instead.
//
// # Configuration
//
// Environment variables configure the server (UPSTAGE_API_KEY, LOG_LEVEL,
// and the rest; .env files are honored). Options override selected pieces:
//
//	server, err := mcpsrv.NewServer(
//	    upstage.New(apiKey),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/upstage-mcp.log"),
//	    mcpsrv.WithProgress(func(percent int, stage string) {
//	        fmt.Printf("%3d%% %s\n", percent, stage)
//	    }),
//	)
package mcpsrv
