package model_test

import (
	"testing"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestFormField_WithValue(t *testing.T) {
	field := model.FormField{
		UUID:            "u1",
		Type:            types.FieldTypeText,
		Name:            "note",
		Label:           "Note",
		Value:           "old",
		ValidationError: "Note is required",
	}

	updated := field.WithValue("new")

	gt.S(t, updated.Value).Equal("new")
	gt.S(t, updated.ValidationError).Equal("")

	// The original is untouched
	gt.S(t, field.Value).Equal("old")
	gt.S(t, field.ValidationError).Equal("Note is required")
}

func TestFormField_WithValidationError(t *testing.T) {
	field := model.FormField{UUID: "u1", Type: types.FieldTypeText}

	flagged := field.WithValidationError("broken")
	gt.B(t, flagged.HasValidationError()).True()
	gt.S(t, flagged.ValidationError).Equal("broken")

	cleared := flagged.WithValidationError("")
	gt.B(t, cleared.HasValidationError()).False()
}

func TestFormField_IsBlank(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{
			name:  "empty",
			value: "",
			want:  true,
		},
		{
			name:  "whitespace only",
			value: "   \t",
			want:  true,
		},
		{
			name:  "non-blank",
			value: "x",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := model.FormField{Value: tt.value}
			if tt.want {
				gt.B(t, field.IsBlank()).True()
			} else {
				gt.B(t, field.IsBlank()).False()
			}
		})
	}
}

func TestFormField_DisplayName(t *testing.T) {
	withLabel := model.FormField{Name: "e", Label: "Email"}
	gt.S(t, withLabel.DisplayName()).Equal("Email")

	withoutLabel := model.FormField{Name: "e", Label: "  "}
	gt.S(t, withoutLabel.DisplayName()).Equal("e")
}

func TestFormField_SelectedValues(t *testing.T) {
	tests := []struct {
		name      string
		fieldType types.FieldType
		value     string
		want      []string
	}{
		{
			name:      "checkbox splits comma separated values",
			fieldType: types.FieldTypeCheckbox,
			value:     "a, b",
			want:      []string{"a", "b"},
		},
		{
			name:      "checkbox drops blank segments",
			fieldType: types.FieldTypeCheckbox,
			value:     "a, , b,",
			want:      []string{"a", "b"},
		},
		{
			name:      "checkbox empty value",
			fieldType: types.FieldTypeCheckbox,
			value:     "",
			want:      nil,
		},
		{
			name:      "dropdown keeps whole value",
			fieldType: types.FieldTypeDropdown,
			value:     " green ",
			want:      []string{"green"},
		},
		{
			name:      "text blank value",
			fieldType: types.FieldTypeText,
			value:     "  ",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := model.FormField{Type: tt.fieldType, Value: tt.value}
			got := field.SelectedValues()
			gt.A(t, got).Length(len(tt.want))
			for i, want := range tt.want {
				gt.S(t, got[i]).Equal(want)
			}
		})
	}
}

func TestFormField_IsValueValidOption(t *testing.T) {
	options := []model.FieldOption{
		{Label: "A", Value: "a"},
		{Label: "B", Value: "b"},
	}

	tests := []struct {
		name      string
		fieldType types.FieldType
		value     string
		want      bool
	}{
		{
			name:      "checkbox selecting both options with stray whitespace",
			fieldType: types.FieldTypeCheckbox,
			value:     "a, b",
			want:      true,
		},
		{
			name:      "checkbox with unknown selection",
			fieldType: types.FieldTypeCheckbox,
			value:     "a, c",
			want:      false,
		},
		{
			name:      "checkbox blank is valid",
			fieldType: types.FieldTypeCheckbox,
			value:     " ",
			want:      true,
		},
		{
			name:      "dropdown member",
			fieldType: types.FieldTypeDropdown,
			value:     "b",
			want:      true,
		},
		{
			name:      "radio non-member",
			fieldType: types.FieldTypeRadio,
			value:     "z",
			want:      false,
		},
		{
			name:      "text ignores options",
			fieldType: types.FieldTypeText,
			value:     "anything",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := model.FormField{Type: tt.fieldType, Options: options, Value: tt.value}
			if tt.want {
				gt.B(t, field.IsValueValidOption()).True()
			} else {
				gt.B(t, field.IsValueValidOption()).False()
			}
		})
	}
}

func TestFormField_OptionValues(t *testing.T) {
	field := model.FormField{
		Type: types.FieldTypeDropdown,
		Options: []model.FieldOption{
			{Label: "Red", Value: "red"},
			{Label: "Green", Value: "green"},
		},
	}

	values := field.OptionValues()
	gt.A(t, values).Length(2)
	gt.S(t, values[0]).Equal("red")
	gt.S(t, values[1]).Equal("green")
}

func TestFormField_Clone(t *testing.T) {
	field := model.FormField{
		UUID:    "u1",
		Type:    types.FieldTypeDropdown,
		Options: []model.FieldOption{{Label: "A", Value: "a"}},
	}

	clone := field.Clone()
	clone.Options[0].Value = "mutated"

	gt.S(t, field.Options[0].Value).Equal("a")
}
