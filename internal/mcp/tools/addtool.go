package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after proving that the zero value of its output
// type survives the JSON schema the SDK infers for it. Output bugs of that
// class otherwise stay invisible until the first real call.
//
// Panics when the output type cannot satisfy its own schema.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckOutputSchema[Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckOutputSchema panics when the zero value of T would be rejected by the
// schema inferred from T. Run it at registration so the server dies at
// startup instead of on the first tool call.
//
// Two failure classes exist. A nil slice marshals to null while the inferred
// schema demands an array; tagging the field `omitzero` (or always assigning
// an empty slice) cures it. And json.RawMessage marshals as transparent JSON
// while the schema generator sees []byte, so every RawMessage field is a
// guaranteed mismatch regardless of value.
//
// The untyped any output skips the check, as do types the SDK itself cannot
// infer a schema for (AddTool reports those with better context).
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	elem := rt
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	if paths := rawMessagePaths(elem, nil, map[reflect.Type]bool{}); len(paths) > 0 {
		panic(fmt.Sprintf(
			"tool %q: output type %s carries json.RawMessage at %s; the inferred "+
				"schema treats it as []byte, so every value fails validation. "+
				"Declare the field as any (or map[string]any) and unmarshal into it",
			toolName, elem, strings.Join(paths, ", "),
		))
	}

	if err := zeroValueSchemaError(elem); err != nil {
		panic(fmt.Sprintf(
			"tool %q: zero value of output type %s fails its own schema: %v. "+
				"Tag nil-defaulting slice fields with omitzero, or initialize them "+
				"to empty slices",
			toolName, elem, err,
		))
	}
}

// zeroValueSchemaError marshals the zero value of elem and validates it
// against the schema inferred from elem. Inference and resolution failures
// report nil; the SDK surfaces those separately during registration.
func zeroValueSchemaError(elem reflect.Type) error {
	inferred, err := jsonschema.ForType(elem, &jsonschema.ForOptions{})
	if err != nil {
		return nil
	}
	resolved, err := inferred.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil
	}

	data, err := json.Marshal(reflect.Zero(elem).Interface())
	if err != nil {
		return nil
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}

	if err := resolved.Validate(&v); err != nil {
		return fmt.Errorf("%w (zero value JSON: %s)", err, data)
	}
	return nil
}

var rawMessageType = reflect.TypeFor[json.RawMessage]()

// rawMessagePaths walks t and collects the field path of every reachable
// json.RawMessage. visited guards against recursive types.
func rawMessagePaths(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == rawMessageType {
		return []string{strings.Join(path, ".")}
	}
	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var paths []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			paths = append(paths, rawMessagePaths(f.Type, append(path, f.Name), visited)...)
		}
	case reflect.Slice, reflect.Array:
		paths = append(paths, rawMessagePaths(t.Elem(), append(path, "[]"), visited)...)
	case reflect.Map:
		paths = append(paths, rawMessagePaths(t.Elem(), append(path, "[value]"), visited)...)
	}
	return paths
}
