package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/formloom/formloom/pkg/domain/mapper"
	"github.com/formloom/formloom/pkg/domain/model"
)

func (s *Server) listForms(w http.ResponseWriter, r *http.Request) {
	forms, err := s.uc.Form.ListForms(r.Context())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	items := make([]map[string]any, len(forms))
	for i, form := range forms {
		items[i] = mapper.FormToMap(*form)
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"forms": items})
}

func (s *Server) createForm(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeBody(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	form, err := mapper.FormFromMap(raw)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	created, err := s.uc.Form.CreateForm(r.Context(), &form)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusCreated, mapper.FormToMap(*created))
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	form, err := s.uc.Form.GetForm(r.Context(), formID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.FormToMap(*form))
}

func (s *Server) updateForm(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	raw, err := decodeBody(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	form, err := mapper.FormFromMap(raw)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	// The path owns the identity
	form.ID = formID

	updated, err := s.uc.Form.UpdateForm(r.Context(), &form)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusOK, mapper.FormToMap(*updated))
}

func (s *Server) deleteForm(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	if err := s.uc.Form.DeleteForm(r.Context(), formID); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) watchForm(w http.ResponseWriter, r *http.Request) {
	formID := model.FormID(chi.URLParam(r, "formID"))

	ch, err := s.uc.Form.WatchForm(r.Context(), formID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	streamSSE(w, r, s.heartbeat, ch, func(form *model.DynamicForm) any {
		return mapper.FormToMap(*form)
	})
}
