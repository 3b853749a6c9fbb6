package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/formloom/formloom/pkg/domain/mapper"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
)

// queryOptionsFromRequest parses the status, q, sort and order query
// parameters. Empty parameters keep the defaults; unknown values are a
// client error.
func queryOptionsFromRequest(r *http.Request) (usecase.QueryOptions, error) {
	q := r.URL.Query()

	filter, err := types.ParseEntryFilter(q.Get("status"))
	if err != nil {
		return usecase.QueryOptions{}, goerr.Wrap(mapper.ErrInvalidData, err.Error())
	}
	sortKey, err := types.ParseEntrySortKey(q.Get("sort"))
	if err != nil {
		return usecase.QueryOptions{}, goerr.Wrap(mapper.ErrInvalidData, err.Error())
	}
	order, err := types.ParseSortOrder(q.Get("order"))
	if err != nil {
		return usecase.QueryOptions{}, goerr.Wrap(mapper.ErrInvalidData, err.Error())
	}

	return usecase.QueryOptions{
		Filter:  filter,
		Search:  q.Get("q"),
		SortKey: sortKey,
		Order:   order,
	}, nil
}

func entriesToMaps(entries []*model.FormEntry) []map[string]any {
	items := make([]map[string]any, len(entries))
	for i, entry := range entries {
		items[i] = mapper.EntryToMap(*entry)
	}
	return items
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	opts, err := queryOptionsFromRequest(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	entries, err := s.uc.Entry.ListEntries(r.Context(), formID, opts)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"entries": entriesToMaps(entries)})
}

func (s *Server) startDraft(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	draft, err := s.uc.Entry.StartDraft(r.Context(), formID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.EntryToMap(*draft))
}

func (s *Server) discardDrafts(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	discarded, err := s.uc.Entry.DiscardDrafts(r.Context(), formID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"discarded": discarded})
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	entry, err := s.uc.Entry.GetEntry(r.Context(), entryID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.EntryToMap(*entry))
}

func (s *Server) updateEntryValues(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	raw, err := decodeBody(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	rawValues, ok := raw["values"].(map[string]any)
	if !ok {
		respondError(r.Context(), w, goerr.Wrap(mapper.ErrInvalidData, "request body needs a values object"))
		return
	}

	values := make(map[model.FieldUUID]string, len(rawValues))
	for key, value := range rawValues {
		text, ok := value.(string)
		if !ok {
			respondError(r.Context(), w, goerr.Wrap(mapper.ErrInvalidData, "field values must be strings",
				goerr.V("field", key)))
			return
		}
		values[model.FieldUUID(key)] = text
	}

	updated, err := s.uc.Entry.UpdateEntryValues(r.Context(), entryID, values)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.EntryToMap(*updated))
}

func (s *Server) completeEntry(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	completed, fieldErrors, err := s.uc.Entry.CompleteEntry(r.Context(), entryID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if len(fieldErrors) > 0 {
		messages := make(map[string]string, len(fieldErrors))
		for uuid, message := range fieldErrors {
			messages[string(uuid)] = message
		}
		respondJSON(r.Context(), w, http.StatusUnprocessableEntity, map[string]any{"fieldErrors": messages})
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.EntryToMap(*completed))
}

func (s *Server) startEditDraft(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	draft, err := s.uc.Entry.StartEditDraft(r.Context(), entryID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.EntryToMap(*draft))
}

func (s *Server) duplicateEntry(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	copied, err := s.uc.Entry.DuplicateEntry(r.Context(), entryID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusCreated, mapper.EntryToMap(*copied))
}

func (s *Server) reopenEntry(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	reopened, err := s.uc.Entry.ReopenEntry(r.Context(), entryID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.EntryToMap(*reopened))
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	if err := s.uc.Entry.DeleteEntry(r.Context(), entryID); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) watchEntry(w http.ResponseWriter, r *http.Request) {
	entryID := model.EntryID(chi.URLParam(r, "entryID"))

	ch, err := s.uc.Entry.WatchEntry(r.Context(), entryID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	streamSSE(w, r, s.heartbeat, ch, func(entry *model.FormEntry) any {
		return mapper.EntryToMap(*entry)
	})
}

func (s *Server) watchFormEntries(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	ch, err := s.uc.Entry.WatchFormEntries(r.Context(), formID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	streamSSE(w, r, s.heartbeat, ch, func(entries []*model.FormEntry) any {
		return entriesToMaps(entries)
	})
}
