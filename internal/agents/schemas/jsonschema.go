package schemas

import (
	"sort"
	"strings"

	"google.golang.org/genai"
)

// ToJSONSchema converts a genai schema into a JSON Schema document usable as
// a strict structured-output format. Strict mode needs every property listed
// as required, so optional properties become nullable instead.
func ToJSONSchema(schema *genai.Schema) map[string]any {
	return toJSONSchema(schema, false)
}

func toJSONSchema(schema *genai.Schema, nullable bool) map[string]any {
	if schema == nil {
		return map[string]any{}
	}

	out := map[string]any{}
	typ := strings.ToLower(string(schema.Type))
	if nullable || (schema.Nullable != nil && *schema.Nullable) {
		out["type"] = []string{typ, "null"}
	} else {
		out["type"] = typ
	}

	if schema.Description != "" {
		out["description"] = schema.Description
	}
	if len(schema.Enum) > 0 {
		out["enum"] = schema.Enum
	}
	if schema.Minimum != nil {
		out["minimum"] = *schema.Minimum
	}
	if schema.Maximum != nil {
		out["maximum"] = *schema.Maximum
	}

	switch typ {
	case "object":
		required := make(map[string]bool, len(schema.Required))
		for _, name := range schema.Required {
			required[name] = true
		}

		props := make(map[string]any, len(schema.Properties))
		names := make([]string, 0, len(schema.Properties))
		for _, name := range propertyOrder(schema) {
			props[name] = toJSONSchema(schema.Properties[name], !required[name])
			names = append(names, name)
		}
		out["properties"] = props
		out["required"] = names
		out["additionalProperties"] = false

	case "array":
		out["items"] = toJSONSchema(schema.Items, false)
	}

	return out
}

// propertyOrder returns property names in PropertyOrdering order, followed by
// any remaining properties in lexical order.
func propertyOrder(schema *genai.Schema) []string {
	seen := make(map[string]bool, len(schema.Properties))
	names := make([]string, 0, len(schema.Properties))
	for _, name := range schema.PropertyOrdering {
		if _, ok := schema.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	var rest []string
	for name := range schema.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}
