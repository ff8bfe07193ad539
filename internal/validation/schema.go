// Package validation checks user-supplied documents against the embedded
// JSON Schemas.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/schemas"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// overridesSchema is the compiled JSON Schema for overrides documents.
var overridesSchema = mustCompileSchema(schemas.OverridesSchemaJSON, "overrides.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateOverridesBytes validates a YAML or JSON overrides document and
// returns one message per violation.
func ValidateOverridesBytes(data []byte) []string {
	_, errs := parseAndValidate(data)
	return errs
}

// ParseOverrides validates a YAML or JSON overrides document and decodes it.
// Schema violations are reported as a single error wrapping
// rula.ErrInvalidOverrides.
func ParseOverrides(data []byte) (rula.Overrides, error) {
	doc, errs := parseAndValidate(data)
	if len(errs) > 0 {
		return rula.Overrides{}, fmt.Errorf("%w: %s", rula.ErrInvalidOverrides, strings.Join(errs, "; "))
	}
	m, _ := doc.(map[string]any)
	return rula.DecodeOverrides(m)
}

// LoadOverrides reads and parses an overrides file.
func LoadOverrides(path string) (rula.Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rula.Overrides{}, fmt.Errorf("reading overrides file: %w", err)
	}
	o, err := ParseOverrides(data)
	if err != nil {
		return o, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

func parseAndValidate(data []byte) (any, []string) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	doc = convertToJSONCompatible(doc)
	return doc, validateAgainstSchema(overridesSchema, doc)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible converts YAML-decoded values to JSON-compatible types.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
