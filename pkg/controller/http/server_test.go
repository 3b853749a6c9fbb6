package http_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpctrl "github.com/formloom/formloom/pkg/controller/http"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/repository/memory"
	"github.com/formloom/formloom/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func newTestServer(t *testing.T) (*httpctrl.Server, *usecase.UseCases) {
	t.Helper()
	repo := memory.New()
	uc := usecase.New(repo, usecase.WithAutoSaveInterval(100*time.Millisecond))
	t.Cleanup(func() {
		gt.NoError(t, uc.Close(t.Context()))
	})
	return httpctrl.New(uc, httpctrl.WithHeartbeat(50*time.Millisecond)), uc
}

func formPayload() map[string]any {
	return map[string]any{
		"id":    "customer-survey",
		"title": "Customer Survey",
		"fields": []any{
			map[string]any{"uuid": "f-name", "type": "text", "name": "name", "label": "Name", "required": true},
			map[string]any{"uuid": "f-email", "type": "email", "name": "email", "label": "Email"},
			map[string]any{"uuid": "f-rating", "type": "dropdown", "name": "rating", "label": "Rating", "options": []any{
				map[string]any{"label": "Good", "value": "good"},
				map[string]any{"label": "Bad", "value": "bad"},
			}},
		},
		"sections": []any{
			map[string]any{"uuid": "s-main", "title": "About you", "from": 0, "to": 2, "index": 0},
		},
	}
}

// doJSON performs a request with an optional JSON body and returns the
// recorded response.
func doJSON(t *testing.T, server *httpctrl.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var decoded map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded)).Required()
	return decoded
}

func createFormViaAPI(t *testing.T, server *httpctrl.Server) string {
	t.Helper()
	rec := doJSON(t, server, http.MethodPost, "/api/forms", formPayload())
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	return decodeJSON(t, rec)["id"].(string)
}

func TestServer_Health(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/health", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeJSON(t, rec)["status"]).Equal("ok")
}

func TestServer_FormCRUD(t *testing.T) {
	server, _ := newTestServer(t)

	formID := createFormViaAPI(t, server)
	gt.Value(t, formID).Equal("customer-survey")

	rec := doJSON(t, server, http.MethodGet, "/api/forms", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	forms := decodeJSON(t, rec)["forms"].([]any)
	gt.Array(t, forms).Length(1)

	rec = doJSON(t, server, http.MethodGet, "/api/forms/"+formID, nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	got := decodeJSON(t, rec)
	gt.Value(t, got["title"]).Equal("Customer Survey")
	gt.Array(t, got["fields"].([]any)).Length(3)

	payload := formPayload()
	payload["title"] = "Customer Survey v2"
	rec = doJSON(t, server, http.MethodPut, "/api/forms/"+formID, payload)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeJSON(t, rec)["title"]).Equal("Customer Survey v2")

	rec = doJSON(t, server, http.MethodDelete, "/api/forms/"+formID, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	rec = doJSON(t, server, http.MethodGet, "/api/forms/"+formID, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestServer_CreateForm_BadRequest(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/forms", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("missing title", func(t *testing.T) {
		server, _ := newTestServer(t)

		payload := formPayload()
		delete(payload, "title")
		rec := doJSON(t, server, http.MethodPost, "/api/forms", payload)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("duplicate field uuids", func(t *testing.T) {
		server, _ := newTestServer(t)

		payload := formPayload()
		fields := payload["fields"].([]any)
		fields[1].(map[string]any)["uuid"] = "f-name"
		rec := doJSON(t, server, http.MethodPost, "/api/forms", payload)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestServer_EntryLifecycle(t *testing.T) {
	server, _ := newTestServer(t)
	formID := createFormViaAPI(t, server)

	// Start a draft
	rec := doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	draft := decodeJSON(t, rec)
	entryID := draft["id"].(string)
	gt.Value(t, draft["isDraft"]).Equal(true)

	// Starting again lands on the same draft
	rec = doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeJSON(t, rec)["id"]).Equal(entryID)

	// Completing without the required value fails field validation
	rec = doJSON(t, server, http.MethodPost, "/api/entries/"+entryID+"/complete", nil)
	gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	fieldErrors := decodeJSON(t, rec)["fieldErrors"].(map[string]any)
	gt.Value(t, fieldErrors["f-name"]).Equal("Name is required")

	// Fill the values
	rec = doJSON(t, server, http.MethodPatch, "/api/entries/"+entryID+"/values", map[string]any{
		"values": map[string]any{"f-name": "Alice", "f-rating": "good"},
	})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	values := decodeJSON(t, rec)["fieldValues"].(map[string]any)
	gt.Value(t, values["f-name"]).Equal("Alice")

	// Complete
	rec = doJSON(t, server, http.MethodPost, "/api/entries/"+entryID+"/complete", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	completed := decodeJSON(t, rec)
	gt.Value(t, completed["isComplete"]).Equal(true)
	gt.Value(t, completed["isDraft"]).Equal(false)

	// Stage a revision
	rec = doJSON(t, server, http.MethodPost, "/api/entries/"+entryID+"/edit-draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	edit := decodeJSON(t, rec)
	gt.Value(t, edit["sourceEntryId"]).Equal(entryID)

	// Duplicate
	rec = doJSON(t, server, http.MethodPost, "/api/entries/"+entryID+"/duplicate", nil)
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	copied := decodeJSON(t, rec)
	gt.Value(t, copied["sourceEntryId"]).Equal("")
	gt.Value(t, copied["isDraft"]).Equal(true)

	// Reopen the completed entry
	rec = doJSON(t, server, http.MethodPost, "/api/entries/"+entryID+"/reopen", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeJSON(t, rec)["isDraft"]).Equal(true)

	// Delete it
	rec = doJSON(t, server, http.MethodDelete, "/api/entries/"+entryID, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)

	rec = doJSON(t, server, http.MethodGet, "/api/entries/"+entryID, nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}

func TestServer_EditDraftFromDraftConflicts(t *testing.T) {
	server, _ := newTestServer(t)
	formID := createFormViaAPI(t, server)

	rec := doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	entryID := decodeJSON(t, rec)["id"].(string)

	rec = doJSON(t, server, http.MethodPost, "/api/entries/"+entryID+"/edit-draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusConflict)
}

func TestServer_ListEntries(t *testing.T) {
	server, _ := newTestServer(t)
	formID := createFormViaAPI(t, server)

	rec := doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	entryID := decodeJSON(t, rec)["id"].(string)

	rec = doJSON(t, server, http.MethodPatch, "/api/entries/"+entryID+"/values", map[string]any{
		"values": map[string]any{"f-name": "Alice", "f-rating": "good"},
	})
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	rec = doJSON(t, server, http.MethodPost, "/api/entries/"+entryID+"/complete", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	t.Run("all entries", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/forms/"+formID+"/entries", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeJSON(t, rec)["entries"].([]any)).Length(2)
	})

	t.Run("status filter", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/forms/"+formID+"/entries?status=completed", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		entries := decodeJSON(t, rec)["entries"].([]any)
		gt.Array(t, entries).Length(1)
		gt.Value(t, entries[0].(map[string]any)["id"]).Equal(entryID)
	})

	t.Run("search", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/forms/"+formID+"/entries?q=alice", nil)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, decodeJSON(t, rec)["entries"].([]any)).Length(1)
	})

	t.Run("unknown status is a client error", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/forms/"+formID+"/entries?status=bogus", nil)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown form", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/forms/no-such-form/entries", nil)
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestServer_DiscardDrafts(t *testing.T) {
	server, _ := newTestServer(t)
	formID := createFormViaAPI(t, server)

	rec := doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	rec = doJSON(t, server, http.MethodDelete, "/api/forms/"+formID+"/entries/drafts", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, decodeJSON(t, rec)["discarded"]).Equal(float64(1))
}

// readSSEData returns the payload of the next data frame, skipping
// heartbeat comments and blank lines.
func readSSEData(t *testing.T, reader *bufio.Reader) []byte {
	t.Helper()
	for {
		line, err := reader.ReadString('\n')
		gt.NoError(t, err).Required()
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			return []byte(strings.TrimSuffix(data, "\n"))
		}
	}
}

func TestServer_WatchEntry(t *testing.T) {
	server, uc := newTestServer(t)
	formID := createFormViaAPI(t, server)

	rec := doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)
	entryID := decodeJSON(t, rec)["id"].(string)

	ts := httptest.NewServer(server)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/entries/" + entryID + "/watch")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	gt.Value(t, resp.Header.Get("Content-Type")).Equal("text/event-stream")

	reader := bufio.NewReader(resp.Body)

	// The current state arrives first
	var current map[string]any
	gt.NoError(t, json.Unmarshal(readSSEData(t, reader), &current)).Required()
	gt.Value(t, current["id"]).Equal(entryID)

	// A persisted change produces another frame
	_, err = uc.Entry.UpdateEntryValues(t.Context(), model.EntryID(entryID), map[model.FieldUUID]string{"f-name": "Alice"})
	gt.NoError(t, err).Required()
	_, err = uc.Entry.SaveEntry(t.Context(), model.EntryID(entryID))
	gt.NoError(t, err).Required()

	var updated map[string]any
	gt.NoError(t, json.Unmarshal(readSSEData(t, reader), &updated)).Required()
	values := updated["fieldValues"].(map[string]any)
	gt.Value(t, values["f-name"]).Equal("Alice")
}

func TestServer_WatchFormEntries(t *testing.T) {
	server, _ := newTestServer(t)
	formID := createFormViaAPI(t, server)

	ts := httptest.NewServer(server)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/forms/" + formID + "/entries/watch")
	gt.NoError(t, err).Required()
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)

	// The initial set is empty
	var initial []any
	gt.NoError(t, json.Unmarshal(readSSEData(t, reader), &initial)).Required()
	gt.Array(t, initial).Length(0)

	rec := doJSON(t, server, http.MethodPost, "/api/forms/"+formID+"/entries/draft", nil)
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var changed []any
	gt.NoError(t, json.Unmarshal(readSSEData(t, reader), &changed)).Required()
	gt.Array(t, changed).Length(1)
}

func TestServer_WatchMissingEntry(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/entries/no-such-entry/watch", nil)
	gt.Value(t, rec.Code).Equal(http.StatusNotFound)
}
