package mapper

import (
	"sort"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// FormFromMap decodes a loosely-typed form definition, typically parsed
// JSON, into a DynamicForm. The form id and title plus a few per-field
// and per-section keys are required; everything else degrades to a
// default. Sections are reordered by their index regardless of input
// order. See FormToMap for the inverse.
func FormFromMap(raw map[string]any) (model.DynamicForm, error) {
	id, ok := stringValue(raw, "id")
	if !ok {
		return model.DynamicForm{}, goerr.Wrap(ErrInvalidData, "form is missing required key",
			goerr.V(EntityKey, "form"), goerr.V(MissingKeyKey, "id"))
	}
	title, ok := stringValue(raw, "title")
	if !ok {
		return model.DynamicForm{}, goerr.Wrap(ErrInvalidData, "form is missing required key",
			goerr.V(EntityKey, "form"), goerr.V(MissingKeyKey, "title"))
	}

	fields := make([]model.FormField, 0)
	for i, rawField := range mapSlice(raw, "fields") {
		field, err := fieldFromMap(rawField)
		if err != nil {
			return model.DynamicForm{}, goerr.Wrap(err, "invalid field", goerr.V(IndexKey, i))
		}
		fields = append(fields, field)
	}

	sections := make([]model.FormSection, 0)
	for i, rawSection := range mapSlice(raw, "sections") {
		section, err := sectionFromMap(rawSection)
		if err != nil {
			return model.DynamicForm{}, goerr.Wrap(err, "invalid section", goerr.V(IndexKey, i))
		}
		sections = append(sections, section)
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Index < sections[j].Index
	})

	return model.DynamicForm{
		ID:        model.FormID(id),
		Title:     title,
		Fields:    fields,
		Sections:  sections,
		CreatedAt: timeOrNow(raw, "createdAt"),
		UpdatedAt: timeOrNow(raw, "updatedAt"),
	}, nil
}

// fieldFromMap decodes a single field definition. The uuid, type, name
// and label keys must be present; an unrecognized type string is
// normalized to text, and required/value/options fall back to their
// zero defaults.
func fieldFromMap(raw map[string]any) (model.FormField, error) {
	for _, key := range []string{"uuid", "type", "name", "label"} {
		if _, ok := stringValue(raw, key); !ok {
			return model.FormField{}, goerr.Wrap(ErrInvalidData, "field is missing required key",
				goerr.V(EntityKey, "field"), goerr.V(MissingKeyKey, key))
		}
	}

	typeName, _ := stringValue(raw, "type")

	var options []model.FieldOption
	for _, rawOption := range mapSlice(raw, "options") {
		options = append(options, model.FieldOption{
			Label: stringOrDefault(rawOption, "label", ""),
			Value: stringOrDefault(rawOption, "value", ""),
		})
	}

	return model.FormField{
		UUID:     model.FieldUUID(stringOrDefault(raw, "uuid", "")),
		Type:     types.ParseFieldType(typeName),
		Name:     stringOrDefault(raw, "name", ""),
		Label:    stringOrDefault(raw, "label", ""),
		Required: boolOrDefault(raw, "required", false),
		Options:  options,
		Value:    stringOrDefault(raw, "value", ""),
	}, nil
}

// sectionFromMap decodes a single section definition. All five keys are
// required since a section without its range or ordering is unusable.
func sectionFromMap(raw map[string]any) (model.FormSection, error) {
	uuid, ok := stringValue(raw, "uuid")
	if !ok {
		return model.FormSection{}, goerr.Wrap(ErrInvalidData, "section is missing required key",
			goerr.V(EntityKey, "section"), goerr.V(MissingKeyKey, "uuid"))
	}
	title, ok := stringValue(raw, "title")
	if !ok {
		return model.FormSection{}, goerr.Wrap(ErrInvalidData, "section is missing required key",
			goerr.V(EntityKey, "section"), goerr.V(MissingKeyKey, "title"))
	}

	section := model.FormSection{
		UUID:  model.SectionUUID(uuid),
		Title: title,
	}
	for key, dst := range map[string]*int{
		"from":  &section.From,
		"to":    &section.To,
		"index": &section.Index,
	} {
		n, ok := intValue(raw, key)
		if !ok {
			return model.FormSection{}, goerr.Wrap(ErrInvalidData, "section is missing required key",
				goerr.V(EntityKey, "section"), goerr.V(MissingKeyKey, key))
		}
		*dst = n
	}

	return section, nil
}

// FormToMap encodes a DynamicForm into the loosely-typed representation
// consumed by FormFromMap. Timestamps are emitted as epoch milliseconds.
// Validation errors are transient state and are not encoded.
func FormToMap(form model.DynamicForm) map[string]any {
	fields := make([]any, len(form.Fields))
	for i, field := range form.Fields {
		fields[i] = fieldToMap(field)
	}

	sections := make([]any, len(form.Sections))
	for i, section := range form.Sections {
		sections[i] = map[string]any{
			"uuid":  string(section.UUID),
			"title": section.Title,
			"from":  int64(section.From),
			"to":    int64(section.To),
			"index": int64(section.Index),
		}
	}

	return map[string]any{
		"id":        string(form.ID),
		"title":     form.Title,
		"fields":    fields,
		"sections":  sections,
		"createdAt": form.CreatedAt.UnixMilli(),
		"updatedAt": form.UpdatedAt.UnixMilli(),
	}
}

func fieldToMap(field model.FormField) map[string]any {
	options := make([]any, len(field.Options))
	for i, option := range field.Options {
		options[i] = map[string]any{
			"label": option.Label,
			"value": option.Value,
		}
	}

	return map[string]any{
		"uuid":     string(field.UUID),
		"type":     field.Type.String(),
		"name":     field.Name,
		"label":    field.Label,
		"required": field.Required,
		"options":  options,
		"value":    field.Value,
	}
}
