package orchestrators

import (
	"context"
	"log/slog"

	"signupdesk/internal/domain/activity"
)

// CatalogAPI defines the upstream call needed by Refresh.
type CatalogAPI interface {
	ListActivities(ctx context.Context) (activity.Catalog, error)
}

// RefreshDeps holds dependencies for Refresh.
type RefreshDeps struct {
	API CatalogAPI
}

// LoadFailedText replaces the listing when activities cannot be fetched.
const LoadFailedText = "Failed to load activities. Please try again later."

// ExecuteRefresh fetches the current catalog.
// PRE: none
// POST: Returns the catalog, or the upstream error after logging it
func ExecuteRefresh(ctx context.Context, deps RefreshDeps) (activity.Catalog, error) {
	catalog, err := deps.API.ListActivities(ctx)
	if err != nil {
		slog.Error("fetch_activities_failed", "error", err)
		return nil, err
	}
	slog.Debug("activities_fetched", "count", len(catalog))
	return catalog, nil
}
