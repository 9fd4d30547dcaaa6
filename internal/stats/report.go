package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/churnform/internal/model"
	"github.com/verte-zerg/churnform/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Entries []model.HistoryEntry
	Summary Summary
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	entries, err := st.ListPredictions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list predictions: %w", err)
	}
	return Report{
		Entries: entries,
		Summary: Summarize(entries),
	}, nil
}
