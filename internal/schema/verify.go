package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// VerificationReport summarizes an advisory check of extracted data
// against the schema that shaped the request. It is embedded in persisted
// metadata and never fails the extraction itself.
type VerificationReport struct {
	Checked bool     `json:"checked"`
	Valid   bool     `json:"valid"`
	Errors  []string `json:"errors,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// printer renders validation errors as English text.
var printer = message.NewPrinter(language.English)

// Verify compiles the envelope's inner object schema and validates the
// extracted instance against it. Envelopes that do not compile as strict
// JSON Schema produce an unchecked report rather than an error: the
// Upstage dialect tolerates looser constructs than the validator does.
func Verify(envelope map[string]any, instance any) *VerificationReport {
	inner := innerSchema(envelope)
	if inner == nil {
		return &VerificationReport{Note: "no object schema found in envelope"}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", inner); err != nil {
		return &VerificationReport{Note: fmt.Sprintf("schema not checkable: %s", err)}
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return &VerificationReport{Note: fmt.Sprintf("schema not checkable: %s", err)}
	}

	if err := compiled.Validate(instance); err != nil {
		return &VerificationReport{
			Checked: true,
			Valid:   false,
			Errors:  validationMessages(err),
		}
	}
	return &VerificationReport{Checked: true, Valid: true}
}

// innerSchema digs json_schema.schema out of an envelope map.
func innerSchema(envelope map[string]any) map[string]any {
	named, _ := envelope["json_schema"].(map[string]any)
	inner, _ := named["schema"].(map[string]any)
	return inner
}

// validationMessages flattens a validation error into deduplicated
// per-path messages.
func validationMessages(err error) []string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{err.Error()}
	}

	byPath := make(map[string]map[string]bool)
	collectLeafErrors(validationErr, byPath)

	var result []string
	for path, msgs := range byPath {
		for msg := range msgs {
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	sort.Strings(result)
	return result
}

// collectLeafErrors walks the cause tree keeping only concrete leaf
// failures; $ref bookkeeping entries are noise for callers.
func collectLeafErrors(err *jsonschema.ValidationError, byPath map[string]map[string]bool) {
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		path := ""
		if len(err.InstanceLocation) > 0 {
			path = "/" + strings.Join(err.InstanceLocation, "/")
		}
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			if byPath[path] == nil {
				byPath[path] = make(map[string]bool)
			}
			byPath[path][msg] = true
		}
	}
	for _, cause := range err.Causes {
		collectLeafErrors(cause, byPath)
	}
}
