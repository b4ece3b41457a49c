package definition

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// FromOpenAPI builds a flat definition named schemaName from the matching
// components.schemas entry of an OpenAPI 3 document.
func FromOpenAPI(ctx context.Context, raw []byte, schemaName string) (*Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("definition: openapi document is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("definition: load openapi document: %w", err)
	}
	if doc.Components == nil || doc.Components.Schemas == nil {
		return nil, fmt.Errorf("definition: openapi document has no component schemas")
	}

	ref, ok := doc.Components.Schemas[schemaName]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("definition: schema %q not found", schemaName)
	}
	schema := ref.Value

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	def := &Definition{
		Name: schemaName,
		Basic: BasicSection{
			Mode:      ModeFlat,
			Creatable: true,
			Editable:  true,
			Deletable: true,
		},
	}
	for _, name := range names {
		propRef := schema.Properties[name]
		if propRef == nil || propRef.Value == nil {
			continue
		}
		prop := propertyFromSchema(name, propRef.Value)
		prop.Extra.Mandatory = slices.Contains(schema.Required, name)
		def.Properties = append(def.Properties, prop)
	}
	if len(def.Properties) > 0 {
		label := def.Properties.Names()[0]
		if def.Properties.Has("title") {
			label = "title"
		}
		def.Listing.Label = LabelConfig{Properties: []string{label}, Format: "%s"}
	}
	def.normalize()
	return def, nil
}

func propertyFromSchema(name string, schema *openapi3.Schema) Property {
	prop := Property{
		Name:        name,
		Label:       schema.Title,
		Description: schema.Description,
		WidgetType:  "text",
	}
	if prop.Label == "" {
		prop.Label = name
	}
	if schema.MaxLength != nil {
		prop.Extra.MaxLength = int(*schema.MaxLength)
	}

	switch schemaType(schema.Type) {
	case "boolean":
		prop.WidgetType = "checkbox"
	case "integer", "number":
		if schema.Format == "unix-time" {
			prop.Extra.RegExp = RegExpDateTime
		}
	case "array":
		prop.Extra.Multiple = true
		if schema.Items != nil && schema.Items.Value != nil {
			prop.Options = enumOptions(schema.Items.Value.Enum)
		}
		if len(prop.Options) > 0 {
			prop.WidgetType = "checkbox"
		}
	case "string":
		switch schema.Format {
		case "date":
			prop.Extra.RegExp = RegExpDate
		case "time":
			prop.Extra.RegExp = RegExpTime
		case "date-time":
			prop.Extra.RegExp = RegExpDateTime
		}
		if prop.Extra.MaxLength > 255 {
			prop.WidgetType = "textarea"
		}
	}

	if opts := enumOptions(schema.Enum); len(opts) > 0 {
		prop.Options = opts
		prop.WidgetType = "select"
	}
	return prop
}

func schemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != "null" {
			return strings.ToLower(value)
		}
	}
	return ""
}

func enumOptions(values []any) []Option {
	if len(values) == 0 {
		return nil
	}
	out := make([]Option, 0, len(values))
	for _, value := range values {
		text := fmt.Sprint(value)
		out = append(out, Option{Value: text, Label: text})
	}
	return out
}
