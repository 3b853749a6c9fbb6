package mapper_test

import (
	"errors"
	"testing"
	"time"

	"github.com/formloom/formloom/pkg/domain/mapper"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func wellFormedRawForm() map[string]any {
	return map[string]any{
		"id":    "contact",
		"title": "Contact",
		"fields": []any{
			map[string]any{
				"uuid":     "u1",
				"type":     "text",
				"name":     "name",
				"label":    "Name",
				"required": true,
				"value":    "",
				"options":  []any{},
			},
			map[string]any{
				"uuid":  "u2",
				"type":  "dropdown",
				"name":  "topic",
				"label": "Topic",
				"options": []any{
					map[string]any{"label": "Sales", "value": "sales"},
					map[string]any{"label": "Support", "value": "support"},
				},
			},
		},
		"sections": []any{
			map[string]any{"uuid": "s2", "title": "Two", "from": float64(1), "to": float64(1), "index": float64(1)},
			map[string]any{"uuid": "s1", "title": "One", "from": float64(0), "to": float64(0), "index": float64(0)},
		},
		"createdAt": float64(1735689600000),
		"updatedAt": float64(1735693200000),
	}
}

func TestFormFromMap(t *testing.T) {
	form, err := mapper.FormFromMap(wellFormedRawForm())
	gt.NoError(t, err)

	gt.Value(t, form.ID).Equal(model.FormID("contact"))
	gt.S(t, form.Title).Equal("Contact")

	gt.A(t, form.Fields).Length(2)
	gt.Value(t, form.Fields[0].UUID).Equal(model.FieldUUID("u1"))
	gt.Value(t, form.Fields[0].Type).Equal(types.FieldTypeText)
	gt.B(t, form.Fields[0].Required).True()
	gt.Value(t, form.Fields[1].Type).Equal(types.FieldTypeDropdown)
	gt.A(t, form.Fields[1].Options).Length(2)
	gt.S(t, form.Fields[1].Options[0].Value).Equal("sales")

	// Sections are reordered by index regardless of input order
	gt.A(t, form.Sections).Length(2)
	gt.Value(t, form.Sections[0].UUID).Equal(model.SectionUUID("s1"))
	gt.Value(t, form.Sections[1].UUID).Equal(model.SectionUUID("s2"))

	gt.Number(t, form.CreatedAt.UnixMilli()).Equal(int64(1735689600000))
	gt.Number(t, form.UpdatedAt.UnixMilli()).Equal(int64(1735693200000))
}

func TestFormFromMap_MissingRequiredKeys(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(raw map[string]any)
	}{
		{
			name:   "missing form id",
			mutate: func(raw map[string]any) { delete(raw, "id") },
		},
		{
			name:   "missing form title",
			mutate: func(raw map[string]any) { delete(raw, "title") },
		},
		{
			name:   "id of wrong type",
			mutate: func(raw map[string]any) { raw["id"] = 42 },
		},
		{
			name: "field missing uuid",
			mutate: func(raw map[string]any) {
				field := raw["fields"].([]any)[0].(map[string]any)
				delete(field, "uuid")
			},
		},
		{
			name: "field missing type",
			mutate: func(raw map[string]any) {
				field := raw["fields"].([]any)[0].(map[string]any)
				delete(field, "type")
			},
		},
		{
			name: "field missing label",
			mutate: func(raw map[string]any) {
				field := raw["fields"].([]any)[0].(map[string]any)
				delete(field, "label")
			},
		},
		{
			name: "section missing from",
			mutate: func(raw map[string]any) {
				section := raw["sections"].([]any)[0].(map[string]any)
				delete(section, "from")
			},
		},
		{
			name: "section missing index",
			mutate: func(raw map[string]any) {
				section := raw["sections"].([]any)[0].(map[string]any)
				delete(section, "index")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := wellFormedRawForm()
			tt.mutate(raw)

			_, err := mapper.FormFromMap(raw)
			gt.Error(t, err)
			gt.B(t, errors.Is(err, mapper.ErrInvalidData)).True()
		})
	}
}

func TestFormFromMap_OptionalKeysDefault(t *testing.T) {
	raw := map[string]any{
		"id":    "minimal",
		"title": "Minimal",
		"fields": []any{
			map[string]any{
				"uuid":  "u1",
				"type":  "mystery-type",
				"name":  "a",
				"label": "A",
			},
		},
	}

	before := time.Now()
	form, err := mapper.FormFromMap(raw)
	gt.NoError(t, err)

	// Unknown type string normalizes to text
	gt.Value(t, form.Fields[0].Type).Equal(types.FieldTypeText)
	// Missing required/options/value default to zero values
	gt.B(t, form.Fields[0].Required).False()
	gt.A(t, form.Fields[0].Options).Length(0)
	gt.S(t, form.Fields[0].Value).Equal("")
	// Missing sections decode as empty, not nil failure
	gt.A(t, form.Sections).Length(0)
	// Missing timestamps default to now
	gt.B(t, form.CreatedAt.Before(before)).False()
}

func TestFormRoundTrip(t *testing.T) {
	original := model.DynamicForm{
		ID:    "survey",
		Title: "Survey",
		Fields: []model.FormField{
			{UUID: "u1", Type: types.FieldTypeEmail, Name: "email", Label: "Email", Required: true, Value: "a@b.com"},
			{UUID: "u2", Type: types.FieldTypeCheckbox, Name: "tags", Label: "Tags",
				Options: []model.FieldOption{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}},
				Value:   "a, b"},
		},
		Sections: []model.FormSection{
			{UUID: "s1", Title: "Main", From: 0, To: 1, Index: 0},
		},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	decoded, err := mapper.FormFromMap(mapper.FormToMap(original))
	gt.NoError(t, err)
	gt.Value(t, decoded).Equal(original)
}

func TestFormRoundTrip_TimestampMillisecondRounding(t *testing.T) {
	// Sub-millisecond precision is lost by the epoch-millis encoding.
	original := model.DynamicForm{
		ID:        "t",
		Title:     "T",
		Fields:    []model.FormField{},
		Sections:  []model.FormSection{},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 123456789, time.UTC),
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 123456789, time.UTC),
	}

	decoded, err := mapper.FormFromMap(mapper.FormToMap(original))
	gt.NoError(t, err)
	gt.Number(t, decoded.CreatedAt.UnixMilli()).Equal(original.CreatedAt.UnixMilli())
	gt.Number(t, decoded.CreatedAt.Nanosecond()).Equal(123000000)
}
