package mapper

import (
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// EntryFromMap decodes a loosely-typed entry record into a FormEntry.
// The id and formId keys are required; sourceEntryId, the value map,
// flags and timestamps degrade to defaults. Non-string values inside
// the fieldValues map are dropped rather than coerced.
func EntryFromMap(raw map[string]any) (model.FormEntry, error) {
	id, ok := stringValue(raw, "id")
	if !ok {
		return model.FormEntry{}, goerr.Wrap(ErrInvalidData, "entry is missing required key",
			goerr.V(EntityKey, "entry"), goerr.V(MissingKeyKey, "id"))
	}
	formID, ok := stringValue(raw, "formId")
	if !ok {
		return model.FormEntry{}, goerr.Wrap(ErrInvalidData, "entry is missing required key",
			goerr.V(EntityKey, "entry"), goerr.V(MissingKeyKey, "formId"))
	}

	fieldValues := map[model.FieldUUID]string{}
	if rawValues, ok := raw["fieldValues"].(map[string]any); ok {
		for key, value := range rawValues {
			if s, ok := value.(string); ok {
				fieldValues[model.FieldUUID(key)] = s
			}
		}
	}

	return model.FormEntry{
		ID:            model.EntryID(id),
		FormID:        model.FormID(formID),
		SourceEntryID: model.EntryID(stringOrDefault(raw, "sourceEntryId", "")),
		FieldValues:   fieldValues,
		CreatedAt:     timeOrNow(raw, "createdAt"),
		UpdatedAt:     timeOrNow(raw, "updatedAt"),
		IsComplete:    boolOrDefault(raw, "isComplete", false),
		IsDraft:       boolOrDefault(raw, "isDraft", false),
	}, nil
}

// EntryToMap encodes a FormEntry into the loosely-typed representation
// consumed by EntryFromMap. Timestamps are emitted as epoch
// milliseconds; an absent source reference is encoded as an empty
// string.
func EntryToMap(entry model.FormEntry) map[string]any {
	fieldValues := make(map[string]any, len(entry.FieldValues))
	for key, value := range entry.FieldValues {
		fieldValues[string(key)] = value
	}

	return map[string]any{
		"id":            string(entry.ID),
		"formId":        string(entry.FormID),
		"sourceEntryId": string(entry.SourceEntryID),
		"fieldValues":   fieldValues,
		"createdAt":     entry.CreatedAt.UnixMilli(),
		"updatedAt":     entry.UpdatedAt.UnixMilli(),
		"isComplete":    entry.IsComplete,
		"isDraft":       entry.IsDraft,
	}
}
