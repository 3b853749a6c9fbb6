package model_test

import (
	"testing"
	"time"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func testForm() model.DynamicForm {
	return model.DynamicForm{
		ID:    "contact",
		Title: "Contact",
		Fields: []model.FormField{
			{UUID: "u1", Type: types.FieldTypeText, Name: "name", Label: "Name", Required: true},
			{UUID: "u2", Type: types.FieldTypeEmail, Name: "email", Label: "Email", Required: true},
			{UUID: "u3", Type: types.FieldTypeTextarea, Name: "message", Label: "Message"},
			{UUID: "u4", Type: types.FieldTypeDropdown, Name: "topic", Label: "Topic",
				Options: []model.FieldOption{{Label: "Sales", Value: "sales"}, {Label: "Support", Value: "support"}}},
		},
		Sections: []model.FormSection{
			{UUID: "s2", Title: "Details", From: 2, To: 3, Index: 1},
			{UUID: "s1", Title: "About you", From: 0, To: 1, Index: 0},
		},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDynamicForm_FieldsInSection(t *testing.T) {
	form := testForm()

	tests := []struct {
		name      string
		section   model.FormSection
		wantUUIDs []model.FieldUUID
	}{
		{
			name:      "exact range",
			section:   model.FormSection{From: 0, To: 1},
			wantUUIDs: []model.FieldUUID{"u1", "u2"},
		},
		{
			name:      "single field",
			section:   model.FormSection{From: 2, To: 2},
			wantUUIDs: []model.FieldUUID{"u3"},
		},
		{
			name:      "to beyond field count is clamped",
			section:   model.FormSection{From: 2, To: 99},
			wantUUIDs: []model.FieldUUID{"u3", "u4"},
		},
		{
			name:      "negative from is clamped",
			section:   model.FormSection{From: -5, To: 0},
			wantUUIDs: []model.FieldUUID{"u1"},
		},
		{
			name:      "degenerate range after clamping",
			section:   model.FormSection{From: 10, To: 20},
			wantUUIDs: []model.FieldUUID{},
		},
		{
			name:      "inverted range",
			section:   model.FormSection{From: 3, To: 1},
			wantUUIDs: []model.FieldUUID{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := form.FieldsInSection(tt.section)
			gt.A(t, fields).Length(len(tt.wantUUIDs))
			for i, want := range tt.wantUUIDs {
				gt.Value(t, fields[i].UUID).Equal(want)
			}
		})
	}
}

func TestDynamicForm_FieldByUUID(t *testing.T) {
	form := testForm()

	field, ok := form.FieldByUUID("u2")
	gt.B(t, ok).True()
	gt.S(t, field.Label).Equal("Email")

	_, ok = form.FieldByUUID("missing")
	gt.B(t, ok).False()
}

func TestDynamicForm_UpdateFieldValue(t *testing.T) {
	form := testForm()

	updated := form.UpdateFieldValue("u1", "Alice")

	field, ok := updated.FieldByUUID("u1")
	gt.B(t, ok).True()
	gt.S(t, field.Value).Equal("Alice")
	gt.B(t, updated.UpdatedAt.After(form.UpdatedAt)).True()

	// The original form is untouched
	original, _ := form.FieldByUUID("u1")
	gt.S(t, original.Value).Equal("")

	// Unknown UUID returns an unchanged copy without bumping UpdatedAt
	same := form.UpdateFieldValue("missing", "x")
	gt.Value(t, same.UpdatedAt).Equal(form.UpdatedAt)
}

func TestDynamicForm_UpdateFieldValue_ClearsValidationError(t *testing.T) {
	form := testForm().UpdateFieldValidation("u1", "Name is required")

	field, _ := form.FieldByUUID("u1")
	gt.B(t, field.HasValidationError()).True()
	gt.B(t, form.IsValid()).False()

	form = form.UpdateFieldValue("u1", "Alice")
	field, _ = form.FieldByUUID("u1")
	gt.B(t, field.HasValidationError()).False()
	gt.B(t, form.IsValid()).True()
}

func TestDynamicForm_CompletionPercentage(t *testing.T) {
	form := testForm()

	// Two required fields, none filled
	gt.Number(t, form.CompletionPercentage()).Equal(0.0)

	half := form.UpdateFieldValue("u1", "Alice")
	gt.Number(t, half.CompletionPercentage()).Equal(0.5)

	full := half.UpdateFieldValue("u2", "a@b.com")
	gt.Number(t, full.CompletionPercentage()).Equal(1.0)

	// Optional fields do not count
	withOptional := form.UpdateFieldValue("u3", "hello")
	gt.Number(t, withOptional.CompletionPercentage()).Equal(0.0)
}

func TestDynamicForm_CompletionPercentage_NoRequiredFields(t *testing.T) {
	form := model.DynamicForm{
		ID: "free",
		Fields: []model.FormField{
			{UUID: "u1", Type: types.FieldTypeText, Name: "a"},
		},
	}
	gt.Number(t, form.CompletionPercentage()).Equal(1.0)

	empty := model.DynamicForm{ID: "empty"}
	gt.Number(t, empty.CompletionPercentage()).Equal(1.0)
}

func TestDynamicForm_WithFieldValues(t *testing.T) {
	form := testForm()
	entry := model.NewDraft(form.ID).UpdateFieldValues(map[model.FieldUUID]string{
		"u1": "Alice",
		"u4": "sales",
	})

	filled := form.WithFieldValues(entry)

	name, _ := filled.FieldByUUID("u1")
	gt.S(t, name.Value).Equal("Alice")
	topic, _ := filled.FieldByUUID("u4")
	gt.S(t, topic.Value).Equal("sales")

	// Fields without a stored value keep their current one
	email, _ := filled.FieldByUUID("u2")
	gt.S(t, email.Value).Equal("")
}

func TestDynamicForm_SectionContaining(t *testing.T) {
	form := testForm()

	section, ok := form.SectionContaining("u1")
	gt.B(t, ok).True()
	gt.Value(t, section.UUID).Equal(model.SectionUUID("s1"))

	section, ok = form.SectionContaining("u3")
	gt.B(t, ok).True()
	gt.Value(t, section.UUID).Equal(model.SectionUUID("s2"))

	_, ok = form.SectionContaining("missing")
	gt.B(t, ok).False()
}

func TestDynamicForm_SortedSections(t *testing.T) {
	form := testForm()

	sections := form.SortedSections()
	gt.A(t, sections).Length(2)
	gt.Value(t, sections[0].UUID).Equal(model.SectionUUID("s1"))
	gt.Value(t, sections[1].UUID).Equal(model.SectionUUID("s2"))

	// The form's own section order is untouched
	gt.Value(t, form.Sections[0].UUID).Equal(model.SectionUUID("s2"))
}

func TestDynamicForm_RequiredFields(t *testing.T) {
	form := testForm()

	required := form.RequiredFields()
	gt.A(t, required).Length(2)
	gt.Value(t, required[0].UUID).Equal(model.FieldUUID("u1"))
	gt.Value(t, required[1].UUID).Equal(model.FieldUUID("u2"))
}

func TestDynamicForm_Validate_RequiredEmail(t *testing.T) {
	// A required empty email field yields exactly one error naming the label.
	form := model.DynamicForm{
		ID:    "f1",
		Title: "T",
		Fields: []model.FormField{
			{UUID: "u1", Type: types.FieldTypeEmail, Name: "e", Label: "Email", Required: true, Value: ""},
		},
	}

	failures := form.Validate()
	gt.A(t, failures).Length(1)
	gt.Value(t, failures[0].FieldUUID).Equal(model.FieldUUID("u1"))
	gt.S(t, failures[0].Message).Equal("Email is required")
}

func TestDynamicForm_Validate_MalformedEmail(t *testing.T) {
	form := model.DynamicForm{
		ID:    "f1",
		Title: "T",
		Fields: []model.FormField{
			{UUID: "u1", Type: types.FieldTypeEmail, Name: "e", Label: "Email", Required: true, Value: "not-an-email"},
		},
	}

	failures := form.Validate()
	gt.A(t, failures).Length(1)
	gt.S(t, failures[0].Message).Equal("Email must be a valid email address")
}

func TestDeriveFormID(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  model.FormID
	}{
		{
			name:  "simple title",
			title: "Contact Form",
			want:  "contact-form",
		},
		{
			name:  "mixed case and symbols",
			title: "Employee Survey (2025)!",
			want:  "employee-survey-2025",
		},
		{
			name:  "already an id",
			title: "signup",
			want:  "signup",
		},
		{
			name:  "symbols only",
			title: "!!!",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.DeriveFormID(tt.title)).Equal(tt.want)
		})
	}
}
