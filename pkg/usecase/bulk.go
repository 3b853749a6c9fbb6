package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/formloom/formloom/pkg/domain/mapper"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/service/sink"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// bulkConcurrency bounds how many entries a bulk operation touches at
// once
const bulkConcurrency = 8

// BulkResult is the outcome of a single item in a bulk operation. A
// failed item never aborts the remaining ones.
type BulkResult struct {
	EntryID model.EntryID
	Err     error
}

func (r BulkResult) Failed() bool {
	return r.Err != nil
}

// CountFailed tallies the failed items of a bulk operation.
func CountFailed(results []BulkResult) int {
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	return failed
}

// BulkDeleteEntries deletes the given entries, collecting a per-item
// outcome.
func (uc *EntryUseCase) BulkDeleteEntries(ctx context.Context, ids []model.EntryID) []BulkResult {
	results := make([]BulkResult, len(ids))

	var eg errgroup.Group
	eg.SetLimit(bulkConcurrency)
	for i, id := range ids {
		eg.Go(func() error {
			results[i] = BulkResult{EntryID: id, Err: uc.DeleteEntry(ctx, id)}
			return nil
		})
	}
	// Item errors live in the results, never in the group
	_ = eg.Wait()

	return results
}

// ExportEntries writes every entry of a form to the sink as one JSON
// object per entry. The returned error covers the form lookup and the
// entry listing; write failures are per-item outcomes.
func (uc *EntryUseCase) ExportEntries(ctx context.Context, formID model.FormID, s sink.Sink) ([]BulkResult, error) {
	if _, err := uc.repo.Form().Get(ctx, formID); err != nil {
		return nil, goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, formID))
	}

	entries, err := uc.repo.Entry().ListByForm(ctx, formID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list entries for export", goerr.V(FormIDKey, formID))
	}

	results := make([]BulkResult, len(entries))

	var eg errgroup.Group
	eg.SetLimit(bulkConcurrency)
	for i, entry := range entries {
		eg.Go(func() error {
			results[i] = BulkResult{EntryID: entry.ID, Err: exportEntry(ctx, s, entry)}
			return nil
		})
	}
	_ = eg.Wait()

	return results, nil
}

func exportEntry(ctx context.Context, s sink.Sink, entry *model.FormEntry) error {
	data, err := json.MarshalIndent(mapper.EntryToMap(*entry), "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode entry", goerr.V(EntryIDKey, entry.ID))
	}

	name := fmt.Sprintf("%s.json", entry.ID)
	if err := s.Write(ctx, name, data); err != nil {
		return goerr.Wrap(err, "failed to write entry export", goerr.V(EntryIDKey, entry.ID))
	}

	return nil
}
