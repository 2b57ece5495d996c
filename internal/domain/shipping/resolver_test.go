package shipping

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/apperr"
)

type mockGeoRepo struct {
	countries map[int64]*Country
	states    map[int64]*State
	cities    map[int64]*City
}

func (m *mockGeoRepo) GetCountry(_ context.Context, id int64) (*Country, error) {
	if c, ok := m.countries[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (m *mockGeoRepo) GetState(_ context.Context, id int64) (*State, error) {
	if s, ok := m.states[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *mockGeoRepo) GetCity(_ context.Context, id int64) (*City, error) {
	if c, ok := m.cities[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (m *mockGeoRepo) ListCountries(_ context.Context) ([]Country, error) { return nil, nil }
func (m *mockGeoRepo) ListStates(_ context.Context, _ int64) ([]State, error) {
	return nil, nil
}
func (m *mockGeoRepo) ListCities(_ context.Context, _ int64) ([]City, error) {
	return nil, nil
}

func costOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// Geography used across tests:
//
//	country 1 (base 10.00)
//	  state 10 (no override) -> city 100 (no override), city 101 (override 3.25)
//	  state 11 (override 7.50) -> city 110 (no override)
//	country 2 (no base cost)
//	  state 20 (no override)
func newGeo() *mockGeoRepo {
	return &mockGeoRepo{
		countries: map[int64]*Country{
			1: {ID: 1, Name: "Jordan", Cost: costOf("10.00")},
			2: {ID: 2, Name: "Atlantis"},
		},
		states: map[int64]*State{
			10: {ID: 10, CountryID: 1, Name: "Amman"},
			11: {ID: 11, CountryID: 1, Name: "Irbid", Cost: costOf("7.50")},
			20: {ID: 20, CountryID: 2, Name: "Depths"},
		},
		cities: map[int64]*City{
			100: {ID: 100, StateID: 10, Name: "Abdoun"},
			101: {ID: 101, StateID: 10, Name: "Sweifieh", Cost: costOf("3.245")},
			110: {ID: 110, StateID: 11, Name: "Downtown"},
		},
	}
}

func TestResolver_EffectiveCostBranches(t *testing.T) {
	resolver := NewResolver(newGeo())
	ctx := context.Background()

	tests := []struct {
		name      string
		country   int64
		state     int64
		city      int64
		wantCost  string
		wantNil   bool
		wantNames [3]string
	}{
		{
			name: "city override wins", city: 101,
			wantCost:  "3.25", // 3.245 normalized half-up to scale 2
			wantNames: [3]string{"Jordan", "Amman", "Sweifieh"},
		},
		{
			name: "state override when city has none", city: 110,
			wantCost:  "7.50",
			wantNames: [3]string{"Jordan", "Irbid", "Downtown"},
		},
		{
			name: "country base when no overrides", city: 100,
			wantCost:  "10.00",
			wantNames: [3]string{"Jordan", "Amman", "Abdoun"},
		},
		{
			name: "nil when nothing in the chain has a cost", country: 2, state: 20,
			wantNil:   true,
			wantNames: [3]string{"Atlantis", "Depths", ""},
		},
		{
			name: "state only fills country", state: 11,
			wantCost:  "7.50",
			wantNames: [3]string{"Jordan", "Irbid", ""},
		},
		{
			name: "country only", country: 1,
			wantCost:  "10.00",
			wantNames: [3]string{"Jordan", "", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := resolver.Resolve(ctx, tt.country, tt.state, tt.city)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, q.EffectiveCost)
				assert.True(t, q.Cost().IsZero())
			} else {
				require.NotNil(t, q.EffectiveCost)
				assert.Equal(t, tt.wantCost, q.EffectiveCost.StringFixed(2))
			}
			assert.Equal(t, tt.wantNames[0], q.CountryName)
			assert.Equal(t, tt.wantNames[1], q.StateName)
			assert.Equal(t, tt.wantNames[2], q.CityName)
		})
	}
}

func TestResolver_HierarchyMismatch(t *testing.T) {
	resolver := NewResolver(newGeo())
	ctx := context.Background()

	// State 20 belongs to country 2, not country 1.
	_, err := resolver.Resolve(ctx, 1, 20, 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	// City 110 belongs to state 11, not state 10.
	_, err = resolver.Resolve(ctx, 0, 10, 110)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
}

func TestResolver_MissingInputsAndRecords(t *testing.T) {
	resolver := NewResolver(newGeo())
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, 0, 0, 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	_, err = resolver.Resolve(ctx, 999, 0, 0)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))
}
