package orchestrators

import (
	"context"
	"testing"

	"signupdesk/internal/domain/activity"
)

// TestExecuteRefresh tests the catalog passes through and failures surface.
func TestExecuteRefresh(t *testing.T) {
	api := &mockAPI{catalog: activity.Catalog{{Name: "Chess Club"}, {Name: "Art Club"}}}
	catalog, err := ExecuteRefresh(context.Background(), RefreshDeps{API: api})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog) != 2 || catalog[1].Name != "Art Club" {
		t.Errorf("unexpected catalog: %+v", catalog)
	}

	api.err = transportErr("list activities")
	if _, err := ExecuteRefresh(context.Background(), RefreshDeps{API: api}); err == nil {
		t.Fatal("expected error")
	}
}
