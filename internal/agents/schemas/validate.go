package schemas

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

// ViolationError describes the first place a payload departs from its schema
type ViolationError struct {
	Path   string
	Reason string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

// Validate decodes raw as JSON and checks it against schema: required
// properties, value types, array items and numeric bounds. Out-of-range
// numbers are reported, never clamped.
func Validate(schema *genai.Schema, raw []byte) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return &ViolationError{Path: "$", Reason: "invalid JSON: " + err.Error()}
	}
	return validateValue(schema, value, "$")
}

func validateValue(schema *genai.Schema, value any, path string) error {
	if schema == nil {
		return nil
	}

	if value == nil {
		if schema.Nullable != nil && *schema.Nullable {
			return nil
		}
		return &ViolationError{Path: path, Reason: "must not be null"}
	}

	switch strings.ToUpper(string(schema.Type)) {
	case "OBJECT":
		obj, ok := value.(map[string]any)
		if !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected object, got %T", value)}
		}
		for _, name := range schema.Required {
			if _, ok := obj[name]; !ok {
				return &ViolationError{Path: path + "." + name, Reason: "required property missing"}
			}
		}
		for name, prop := range schema.Properties {
			v, ok := obj[name]
			if !ok || (v == nil && !contains(schema.Required, name)) {
				continue
			}
			if err := validateValue(prop, v, path+"."+name); err != nil {
				return err
			}
		}

	case "ARRAY":
		items, ok := value.([]any)
		if !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected array, got %T", value)}
		}
		for i, item := range items {
			if err := validateValue(schema.Items, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case "STRING":
		s, ok := value.(string)
		if !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected string, got %T", value)}
		}
		if len(schema.Enum) > 0 && !contains(schema.Enum, s) {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("%q is not one of %v", s, schema.Enum)}
		}

	case "NUMBER", "INTEGER":
		n, ok := value.(float64)
		if !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected number, got %T", value)}
		}
		if strings.ToUpper(string(schema.Type)) == "INTEGER" && n != math.Trunc(n) {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected integer, got %v", n)}
		}
		if schema.Minimum != nil && n < *schema.Minimum {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("%v is below minimum %v", n, *schema.Minimum)}
		}
		if schema.Maximum != nil && n > *schema.Maximum {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("%v is above maximum %v", n, *schema.Maximum)}
		}

	case "BOOLEAN":
		if _, ok := value.(bool); !ok {
			return &ViolationError{Path: path, Reason: fmt.Sprintf("expected boolean, got %T", value)}
		}
	}

	return nil
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
