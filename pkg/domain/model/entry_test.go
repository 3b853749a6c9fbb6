package model_test

import (
	"testing"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestNewDraft(t *testing.T) {
	entry := model.NewDraft("f1")

	gt.Value(t, entry.FormID).Equal(model.FormID("f1"))
	gt.B(t, entry.ID != "").True()
	gt.B(t, entry.IsDraft).True()
	gt.B(t, entry.IsComplete).False()
	gt.B(t, entry.HasSource()).False()
	gt.Value(t, entry.Status()).Equal(types.EntryStatusDraft)
	gt.Number(t, len(entry.FieldValues)).Equal(0)
	gt.B(t, entry.FieldValues != nil).True()
}

func TestNewDraft_UniqueIDs(t *testing.T) {
	a := model.NewDraft("f1")
	b := model.NewDraft("f1")
	gt.B(t, a.ID != b.ID).True()
}

func TestFormEntry_DraftToComplete(t *testing.T) {
	// New draft, fill a value, mark complete.
	entry := model.NewDraft("f1").
		UpdateFieldValue("u1", "a@b.com").
		MarkAsComplete()

	gt.B(t, entry.IsDraft).False()
	gt.B(t, entry.IsComplete).True()
	gt.S(t, entry.FieldValues["u1"]).Equal("a@b.com")
	gt.Value(t, entry.Status()).Equal(types.EntryStatusCompleted)
}

func TestNewEditDraft(t *testing.T) {
	source := model.NewDraft("f1").
		UpdateFieldValues(map[model.FieldUUID]string{"u1": "x", "u2": "y"}).
		MarkAsComplete()
	source.ID = "e1"

	draft := model.NewEditDraft(source)

	gt.Value(t, draft.SourceEntryID).Equal(model.EntryID("e1"))
	gt.B(t, draft.IsDraft).True()
	gt.B(t, draft.IsComplete).False()
	gt.B(t, draft.ID != source.ID).True()
	gt.Value(t, draft.FormID).Equal(source.FormID)
	gt.Value(t, draft.Status()).Equal(types.EntryStatusEditDraft)

	// Field values are copied, not shared
	gt.S(t, draft.FieldValues["u1"]).Equal("x")
	gt.S(t, draft.FieldValues["u2"]).Equal("y")
	draft.FieldValues["u1"] = "mutated"
	gt.S(t, source.FieldValues["u1"]).Equal("x")
}

func TestFormEntry_UpdateReopensCompleted(t *testing.T) {
	// Editing a completed entry turns it back into a draft.
	entry := model.NewDraft("f1").MarkAsComplete()
	gt.B(t, entry.IsComplete).True()

	edited := entry.UpdateFieldValue("u1", "changed")
	gt.B(t, edited.IsDraft).True()
	gt.B(t, edited.IsComplete).False()
	gt.Value(t, edited.Status()).Equal(types.EntryStatusDraft)
}

func TestFormEntry_UpdateFieldValues(t *testing.T) {
	entry := model.NewDraft("f1").UpdateFieldValue("u1", "keep")

	merged := entry.UpdateFieldValues(map[model.FieldUUID]string{
		"u2": "added",
		"u3": "also added",
	})

	gt.S(t, merged.FieldValues["u1"]).Equal("keep")
	gt.S(t, merged.FieldValues["u2"]).Equal("added")
	gt.S(t, merged.FieldValues["u3"]).Equal("also added")

	// The original entry is untouched
	gt.Number(t, len(entry.FieldValues)).Equal(1)
}

func TestFormEntry_MarkAsDraft(t *testing.T) {
	entry := model.NewDraft("f1").MarkAsComplete().MarkAsDraft()

	gt.B(t, entry.IsDraft).True()
	gt.B(t, entry.IsComplete).False()
}

func TestFormEntry_Duplicate(t *testing.T) {
	source := model.NewDraft("f1").
		UpdateFieldValue("u1", "v").
		MarkAsComplete()
	source.ID = "e1"

	tests := []struct {
		name  string
		newID model.EntryID
	}{
		{
			name:  "explicit id",
			newID: "copy-1",
		},
		{
			name:  "generated id",
			newID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dup := source.Duplicate(tt.newID)

			if tt.newID != "" {
				gt.Value(t, dup.ID).Equal(tt.newID)
			} else {
				gt.B(t, dup.ID != "").True()
				gt.B(t, dup.ID != source.ID).True()
			}

			// A duplicate is a plain draft, not an edit draft
			gt.B(t, dup.HasSource()).False()
			gt.B(t, dup.IsDraft).True()
			gt.B(t, dup.IsComplete).False()
			gt.S(t, dup.FieldValues["u1"]).Equal("v")
		})
	}
}

func TestFormEntry_Status(t *testing.T) {
	tests := []struct {
		name  string
		entry model.FormEntry
		want  types.EntryStatus
	}{
		{
			name:  "draft",
			entry: model.FormEntry{IsDraft: true},
			want:  types.EntryStatusDraft,
		},
		{
			name:  "edit draft",
			entry: model.FormEntry{IsDraft: true, SourceEntryID: "e1"},
			want:  types.EntryStatusEditDraft,
		},
		{
			name:  "submitted",
			entry: model.FormEntry{},
			want:  types.EntryStatusSubmitted,
		},
		{
			name:  "completed",
			entry: model.FormEntry{IsComplete: true},
			want:  types.EntryStatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.entry.Status()).Equal(tt.want)
		})
	}
}

func TestFormEntry_ValidateAgainstForm(t *testing.T) {
	form := model.DynamicForm{
		ID: "f1",
		Fields: []model.FormField{
			{UUID: "u1", Type: types.FieldTypeEmail, Name: "e", Label: "Email", Required: true},
			{UUID: "u2", Type: types.FieldTypeNumber, Name: "n", Label: "Age"},
			{UUID: "u3", Type: types.FieldTypeText, Name: "t", Label: "Note"},
		},
	}

	tests := []struct {
		name     string
		values   map[model.FieldUUID]string
		wantKeys []model.FieldUUID
	}{
		{
			name:     "missing required field",
			values:   map[model.FieldUUID]string{},
			wantKeys: []model.FieldUUID{"u1"},
		},
		{
			name: "bad type on optional field",
			values: map[model.FieldUUID]string{
				"u1": "a@b.com",
				"u2": "not a number",
			},
			wantKeys: []model.FieldUUID{"u2"},
		},
		{
			name: "all valid",
			values: map[model.FieldUUID]string{
				"u1": "a@b.com",
				"u2": "30",
				"u3": "hello",
			},
			wantKeys: nil,
		},
		{
			name: "blank optional values pass",
			values: map[model.FieldUUID]string{
				"u1": "a@b.com",
				"u2": "  ",
			},
			wantKeys: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := model.NewDraft("f1").UpdateFieldValues(tt.values)
			failures := entry.ValidateAgainstForm(form)

			gt.Number(t, len(failures)).Equal(len(tt.wantKeys))
			for _, key := range tt.wantKeys {
				gt.B(t, failures[key] != "").True()
			}
		})
	}
}

func TestFormEntry_Clone(t *testing.T) {
	entry := model.NewDraft("f1").UpdateFieldValue("u1", "v")

	clone := entry.Clone()
	clone.FieldValues["u1"] = "mutated"

	gt.S(t, entry.FieldValues["u1"]).Equal("v")
}
