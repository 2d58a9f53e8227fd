package gdocai

import (
	"slices"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// ExtractFormFields combines the key/value pairs of every page into one map.
// Repeated keys with different values become a []string.
func ExtractFormFields(doc *documentaipb.Document) map[string]any {
	fields := make(map[string]any)
	if doc == nil {
		return fields
	}

	for _, page := range doc.Pages {
		for _, field := range page.FormFields {
			key := strings.TrimSpace(layoutText(field.FieldName, doc.Text))
			key = strings.TrimSuffix(key, ":")
			if key == "" {
				continue
			}
			addValue(fields, key, strings.TrimSpace(layoutText(field.FieldValue, doc.Text)))
		}
	}
	return fields
}

// ExtractCustomExtractorFields maps custom extractor entities by type.
// Entities with properties become nested maps, with the entity's own mention
// text kept under "_value".
func ExtractCustomExtractorFields(doc *documentaipb.Document) map[string]any {
	fields := make(map[string]any)
	if doc == nil {
		return fields
	}
	for _, entity := range doc.Entities {
		if entity.Type != "" {
			addEntity(fields, entity)
		}
	}
	return fields
}

func addEntity(fields map[string]any, entity *documentaipb.Document_Entity) {
	if len(entity.Properties) == 0 {
		addValue(fields, entity.Type, entity.MentionText)
		return
	}

	props, ok := fields[entity.Type].(map[string]any)
	if !ok {
		props = make(map[string]any)
		if existing, exists := fields[entity.Type]; exists {
			props["_value"] = existing
		} else if entity.MentionText != "" {
			props["_value"] = entity.MentionText
		}
	}
	for _, prop := range entity.Properties {
		if prop.Type != "" {
			addEntity(props, prop)
		}
	}
	fields[entity.Type] = props
}

// addValue stores value under key, collecting distinct repeats into a []string.
func addValue(fields map[string]any, key, value string) {
	existing, exists := fields[key]
	if !exists {
		fields[key] = value
		return
	}
	if value == "" {
		return
	}

	switch v := existing.(type) {
	case string:
		if v == "" {
			fields[key] = value
		} else if v != value {
			fields[key] = []string{v, value}
		}
	case []string:
		if !slices.Contains(v, value) {
			fields[key] = append(v, value)
		}
	case map[string]any:
		addValue(v, "_value", value)
	}
}
