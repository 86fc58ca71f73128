package component

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/binfile/errors"
)

// JSONSchema renders a registration's ConfigSchema as a draft-07 JSON Schema document.
func JSONSchema(name string, reg *Registration) map[string]any {
	doc := jsonSchemaObject(reg.Schema)
	doc["$schema"] = "http://json-schema.org/draft-07/schema#"
	doc["$id"] = fmt.Sprintf("%s.v1.json", name)
	doc["title"] = fmt.Sprintf("%s Configuration", name)
	if reg.Description != "" {
		doc["description"] = reg.Description
	}
	return doc
}

func jsonSchemaObject(schema ConfigSchema) map[string]any {
	properties := make(map[string]any, len(schema.Properties))
	for propName, prop := range schema.Properties {
		p := map[string]any{
			"type":        jsonSchemaType(prop.Type),
			"description": prop.Description,
		}
		switch prop.Type {
		case "object", "ports", "array":
			// an explicit null leaves the setting unset
			p["type"] = []string{jsonSchemaType(prop.Type), "null"}
		}
		if prop.Default != nil {
			p["default"] = prop.Default
		}
		if len(prop.Enum) > 0 {
			p["enum"] = prop.Enum
		}
		if prop.Minimum != nil {
			p["minimum"] = *prop.Minimum
		}
		if prop.Maximum != nil {
			p["maximum"] = *prop.Maximum
		}
		if prop.Type == "array" {
			p["items"] = map[string]any{"type": "string"}
		}
		properties[propName] = p
	}

	required := schema.Required
	if required == nil {
		required = []string{}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func jsonSchemaType(propType string) string {
	switch propType {
	case "int":
		return "integer"
	case "float":
		return "number"
	case "bool":
		return "boolean"
	case "array":
		return "array"
	case "object", "ports":
		return "object"
	default:
		return "string"
	}
}

// ValidateConfig checks raw component configuration against the schema. Unknown
// properties are allowed.
func ValidateConfig(rawConfig json.RawMessage, schema ConfigSchema) error {
	if len(rawConfig) == 0 {
		rawConfig = json.RawMessage("{}")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(jsonSchemaObject(schema)),
		gojsonschema.NewBytesLoader(rawConfig),
	)
	if err != nil {
		return errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig, "%v", err),
			"Schema", "ValidateConfig", "load config")
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return errors.WrapInvalid(
			errors.Detail(errors.ErrInvalidConfig, "%s", strings.Join(problems, "; ")),
			"Schema", "ValidateConfig", "validate config")
	}

	return nil
}
