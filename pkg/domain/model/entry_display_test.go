package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

func TestFormEntry_DisplayTitle(t *testing.T) {
	created := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry model.FormEntry
		want  string
	}{
		{
			name: "edit draft label wins",
			entry: model.FormEntry{
				ID:            "e2",
				SourceEntryID: "e1",
				IsDraft:       true,
				FieldValues:   map[model.FieldUUID]string{"u1": "some value"},
			},
			want: "Edit Draft",
		},
		{
			name: "first non-blank value in field uuid order",
			entry: model.FormEntry{
				ID:      "e1",
				IsDraft: true,
				FieldValues: map[model.FieldUUID]string{
					"a-field": "  ",
					"b-field": "Alice",
					"c-field": "ignored",
				},
			},
			want: "Alice",
		},
		{
			name: "long value is truncated with ellipsis",
			entry: model.FormEntry{
				ID:      "e1",
				IsDraft: true,
				FieldValues: map[model.FieldUUID]string{
					"u1": "this value is far too long for a list row",
				},
			},
			want: "this value is far too " + "...",
		},
		{
			name: "empty draft falls back to creation timestamp",
			entry: model.FormEntry{
				ID:        "e1",
				IsDraft:   true,
				CreatedAt: created,
			},
			want: "Draft started Mar 15, 2025 09:30",
		},
		{
			name: "empty non-draft falls back to id prefix",
			entry: model.FormEntry{
				ID:         "0a1b2c3d-e4f5-6789-abcd-ef0123456789",
				IsComplete: true,
			},
			want: "Entry 0a1b2c3d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.S(t, tt.entry.DisplayTitle()).Equal(tt.want)
		})
	}
}

func TestFormEntry_DisplayTitle_TruncationLength(t *testing.T) {
	entry := model.FormEntry{
		ID:      "e1",
		IsDraft: true,
		FieldValues: map[model.FieldUUID]string{
			"u1": strings.Repeat("x", 50),
		},
	}

	title := entry.DisplayTitle()
	gt.B(t, strings.HasSuffix(title, "...")).True()
	gt.Number(t, len([]rune(title))).Equal(22 + 3)
}

func TestFormEntry_DisplaySubtitle(t *testing.T) {
	updated := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry model.FormEntry
		want  string
	}{
		{
			name: "edit draft names the source entry",
			entry: model.FormEntry{
				ID:            "e2",
				SourceEntryID: "0a1b2c3d-e4f5-6789-abcd-ef0123456789",
				IsDraft:       true,
				UpdatedAt:     updated,
			},
			want: "Editing entry 0a1b2c3d",
		},
		{
			name: "draft shows save time",
			entry: model.FormEntry{
				ID:        "e1",
				IsDraft:   true,
				UpdatedAt: updated,
			},
			want: "Draft saved Mar 15, 2025 09:30",
		},
		{
			name: "completed shows completion time",
			entry: model.FormEntry{
				ID:         "e1",
				IsComplete: true,
				UpdatedAt:  updated,
			},
			want: "Completed Mar 15, 2025 09:30",
		},
		{
			name: "submitted shows submission time",
			entry: model.FormEntry{
				ID:        "e1",
				UpdatedAt: updated,
			},
			want: "Submitted Mar 15, 2025 09:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.S(t, tt.entry.DisplaySubtitle()).Equal(tt.want)
		})
	}
}
