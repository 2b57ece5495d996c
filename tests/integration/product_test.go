//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 9 {
		t.Fatalf("expected 9 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var waffle *productResponse
	for i := range products {
		if products[i].ID == "1" {
			waffle = &products[i]
			break
		}
	}

	if waffle == nil {
		t.Fatal("product with ID '1' not found")
	}
	if waffle.Name != "Waffle with Berries" {
		t.Errorf("name: got %q, want %q", waffle.Name, "Waffle with Berries")
	}
	if waffle.Price != "6.50" {
		t.Errorf("price: got %q, want %q", waffle.Price, "6.50")
	}
	if waffle.Category != "Waffle" {
		t.Errorf("category: got %q, want %q", waffle.Category, "Waffle")
	}
	if waffle.Image.Thumbnail == "" {
		t.Error("image.thumbnail is empty")
	}
	if waffle.Image.Desktop == "" {
		t.Error("image.desktop is empty")
	}
	if len(waffle.Variants) != 2 {
		t.Fatalf("variants: got %d, want 2", len(waffle.Variants))
	}
	if waffle.Variants[0].SKU == "" {
		t.Error("variant sku is empty")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/1")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	product := decodeJSON[productResponse](t, resp)
	if product.ID != "1" {
		t.Errorf("id: got %q, want %q", product.ID, "1")
	}
	if product.Name != "Waffle with Berries" {
		t.Errorf("name: got %q, want %q", product.Name, "Waffle with Berries")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestAdminUpsertProduct(t *testing.T) {
	body := map[string]any{
		"name":     "Seasonal Pumpkin Tart",
		"price":    "5.25",
		"category": "Tart",
		"variants": []map[string]any{
			{"sku": "TART-PMP-SL", "label": "Slice", "priceDelta": "0"},
		},
	}

	resp := doJSON(t, http.MethodPut, "/api/admin/products/seasonal-tart", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := doGet(t, "/api/products/seasonal-tart")
	defer got.Body.Close()

	if got.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after upsert, got %d", got.StatusCode)
	}

	product := decodeJSON[productResponse](t, got)
	if product.Name != "Seasonal Pumpkin Tart" {
		t.Errorf("name: got %q, want %q", product.Name, "Seasonal Pumpkin Tart")
	}
	if product.Price != "5.25" {
		t.Errorf("price: got %q, want %q", product.Price, "5.25")
	}
	if len(product.Variants) != 1 {
		t.Fatalf("variants: got %d, want 1", len(product.Variants))
	}
	if product.Variants[0].ID == 0 {
		t.Error("variant id was not assigned")
	}
}
