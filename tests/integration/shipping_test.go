//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func listLocations(t *testing.T, path string) []locationResponse {
	t.Helper()

	resp := doGet(t, path)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d", path, resp.StatusCode)
	}
	return decodeJSON[[]locationResponse](t, resp)
}

func findLocation(t *testing.T, locations []locationResponse, name string) locationResponse {
	t.Helper()

	for _, l := range locations {
		if l.Name == name {
			return l
		}
	}
	t.Fatalf("location %q not found", name)
	return locationResponse{}
}

func TestShippingOptions_Countries(t *testing.T) {
	countries := listLocations(t, "/api/shipping/options")

	jordan := findLocation(t, countries, "Jordan")
	if jordan.Cost == nil || *jordan.Cost != "10.00" {
		t.Errorf("Jordan cost: got %v, want 10.00", jordan.Cost)
	}
}

func TestShippingOptions_StatesInheritCountryRate(t *testing.T) {
	countries := listLocations(t, "/api/shipping/options")
	jordan := findLocation(t, countries, "Jordan")

	states := listLocations(t, fmt.Sprintf("/api/shipping/options?countryId=%d", jordan.ID))

	amman := findLocation(t, states, "Amman")
	if amman.Cost == nil || *amman.Cost != "7.50" {
		t.Errorf("Amman cost: got %v, want 7.50", amman.Cost)
	}
	if amman.ParentID != jordan.ID {
		t.Errorf("Amman parent: got %d, want %d", amman.ParentID, jordan.ID)
	}

	// Irbid has no override; the country rate applies at checkout.
	irbid := findLocation(t, states, "Irbid")
	if irbid.Cost != nil {
		t.Errorf("Irbid cost: got %v, want null", *irbid.Cost)
	}
}

func TestShippingOptions_Cities(t *testing.T) {
	countries := listLocations(t, "/api/shipping/options")
	jordan := findLocation(t, countries, "Jordan")

	states := listLocations(t, fmt.Sprintf("/api/shipping/options?countryId=%d", jordan.ID))
	amman := findLocation(t, states, "Amman")

	cities := listLocations(t, fmt.Sprintf("/api/shipping/options?stateId=%d", amman.ID))

	sweifieh := findLocation(t, cities, "Sweifieh")
	if sweifieh.Cost == nil || *sweifieh.Cost != "5.00" {
		t.Errorf("Sweifieh cost: got %v, want 5.00", sweifieh.Cost)
	}

	downtown := findLocation(t, cities, "Downtown")
	if downtown.Cost != nil {
		t.Errorf("Downtown cost: got %v, want null", *downtown.Cost)
	}
}

func TestAdminSaveCountry(t *testing.T) {
	cost := "12.00"
	resp := doJSON(t, http.MethodPost, "/api/admin/shipping/countries", map[string]any{
		"name": "Lebanon",
		"cost": cost,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	created := decodeJSON[locationResponse](t, resp)
	if created.ID == 0 {
		t.Fatal("country id was not assigned")
	}
	if created.Cost == nil || *created.Cost != "12.00" {
		t.Errorf("cost: got %v, want 12.00", created.Cost)
	}

	countries := listLocations(t, "/api/shipping/options")
	findLocation(t, countries, "Lebanon")
}
