package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// ValidationIssue represents a single issue found while checking a form
// definition or the stored entries. EntryID is empty for definition
// issues.
type ValidationIssue struct {
	FormID    model.FormID
	EntryID   model.EntryID
	FieldUUID model.FieldUUID
	Message   string
}

// ValidationReport holds the issues found by a validation run
type ValidationReport struct {
	Issues []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationReport) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the report
func (r *ValidationReport) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateFormDefinition checks a form definition for structural
// problems: blank or duplicate field identifiers, option fields without
// options or with duplicate option values, and section ranges that fall
// outside the field sequence. It reports everything it finds and never
// modifies the form. Only the field identity issues block persistence;
// the rest are advisory since reads clamp or ignore them.
func ValidateFormDefinition(form *model.DynamicForm) []ValidationIssue {
	issues := fieldIdentityIssues(form)

	if form.Title == "" {
		issues = append(issues, ValidationIssue{
			FormID:  form.ID,
			Message: "form has no title",
		})
	}

	for _, field := range form.Fields {
		if field.Type.RequiresOptions() && len(field.Options) == 0 {
			issues = append(issues, ValidationIssue{
				FormID:    form.ID,
				FieldUUID: field.UUID,
				Message:   fmt.Sprintf("field %q is a %s but defines no options", field.DisplayName(), field.Type),
			})
		}

		seen := make(map[string]bool, len(field.Options))
		for _, opt := range field.Options {
			if seen[opt.Value] {
				issues = append(issues, ValidationIssue{
					FormID:    form.ID,
					FieldUUID: field.UUID,
					Message:   fmt.Sprintf("field %q defines option value %q more than once", field.DisplayName(), opt.Value),
				})
			}
			seen[opt.Value] = true
		}
	}

	for _, section := range form.Sections {
		if section.From < 0 || section.To >= len(form.Fields) || section.From > section.To {
			issues = append(issues, ValidationIssue{
				FormID: form.ID,
				Message: fmt.Sprintf("section %q covers field range [%d, %d] outside the %d defined fields",
					section.Title, section.From, section.To, len(form.Fields)),
			})
		}
	}

	return issues
}

// fieldIdentityIssues reports the definition problems that make a form
// unusable for entry storage: fields without a UUID and fields sharing
// one. Entry values are keyed by field UUID, so these block persistence.
func fieldIdentityIssues(form *model.DynamicForm) []ValidationIssue {
	var issues []ValidationIssue

	seen := make(map[model.FieldUUID]bool, len(form.Fields))
	for _, field := range form.Fields {
		if field.UUID == "" {
			issues = append(issues, ValidationIssue{
				FormID:  form.ID,
				Message: fmt.Sprintf("field %q has no UUID", field.DisplayName()),
			})
			continue
		}
		if seen[field.UUID] {
			issues = append(issues, ValidationIssue{
				FormID:    form.ID,
				FieldUUID: field.UUID,
				Message:   fmt.Sprintf("field UUID %s is used more than once", field.UUID),
			})
		}
		seen[field.UUID] = true
	}

	return issues
}

func issueMessages(issues []ValidationIssue) []string {
	messages := make([]string, len(issues))
	for i, issue := range issues {
		messages[i] = issue.Message
	}
	return messages
}

// ValidateDB checks the stored entries of every form for consistency
// with the current form schemas: values kept under field UUIDs the
// schema no longer defines, choice values that no longer match any
// option, and edit drafts whose source entry is gone. It does NOT
// modify any data.
func (uc *UseCases) ValidateDB(ctx context.Context) (*ValidationReport, error) {
	report := &ValidationReport{}

	forms, err := uc.repo.Form().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list forms")
	}

	for _, form := range forms {
		entries, err := uc.repo.Entry().ListByForm(ctx, form.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list entries", goerr.V(FormIDKey, form.ID))
		}

		known := make(map[model.EntryID]bool, len(entries))
		for _, entry := range entries {
			known[entry.ID] = true
		}

		for _, entry := range entries {
			validateEntryValues(report, form, entry)

			if entry.IsDraft && entry.HasSource() && !known[entry.SourceEntryID] {
				report.AddIssue(ValidationIssue{
					FormID:  form.ID,
					EntryID: entry.ID,
					Message: fmt.Sprintf("edit draft references missing source entry %s", entry.SourceEntryID),
				})
			}
		}
	}

	return report, nil
}

// validateEntryValues reports stored values that the form schema no
// longer accepts. Field UUIDs are walked in sorted order so repeated
// runs produce identical reports.
func validateEntryValues(report *ValidationReport, form *model.DynamicForm, entry *model.FormEntry) {
	uuids := make([]model.FieldUUID, 0, len(entry.FieldValues))
	for uuid := range entry.FieldValues {
		uuids = append(uuids, uuid)
	}
	sort.Slice(uuids, func(i, j int) bool { return uuids[i] < uuids[j] })

	for _, uuid := range uuids {
		value := entry.FieldValues[uuid]

		field, ok := form.FieldByUUID(uuid)
		if !ok {
			report.AddIssue(ValidationIssue{
				FormID:    form.ID,
				EntryID:   entry.ID,
				FieldUUID: uuid,
				Message:   "value stored for a field the form no longer defines",
			})
			continue
		}

		if !field.WithValue(value).IsValueValidOption() {
			report.AddIssue(ValidationIssue{
				FormID:    form.ID,
				EntryID:   entry.ID,
				FieldUUID: uuid,
				Message:   fmt.Sprintf("value %q does not match any option of field %q", value, field.DisplayName()),
			})
		}
	}
}
