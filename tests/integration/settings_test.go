//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestAdminSettings(t *testing.T) {
	resp := doGet(t, "/api/admin/settings")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	values := decodeJSON[map[string]string](t, resp)
	if values["store.name"] != "Storefront" {
		t.Errorf("store.name: got %q, want Storefront", values["store.name"])
	}
	if values["checkout.enabled"] != "true" {
		t.Errorf("checkout.enabled: got %q, want true", values["checkout.enabled"])
	}
}

func TestAdminUpdateSetting(t *testing.T) {
	resp := doJSON(t, http.MethodPut, "/api/admin/settings/store.name", map[string]any{
		"value": "Storefront Test",
	})
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	got := doGet(t, "/api/admin/settings")
	defer got.Body.Close()

	values := decodeJSON[map[string]string](t, got)
	if values["store.name"] != "Storefront Test" {
		t.Errorf("store.name: got %q, want Storefront Test", values["store.name"])
	}

	// restore for any test that reads the seeded value afterwards
	restore := doJSON(t, http.MethodPut, "/api/admin/settings/store.name", map[string]any{
		"value": "Storefront",
	})
	restore.Body.Close()
}
