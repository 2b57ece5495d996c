package shipping

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced country, state, or city is missing.
var ErrNotFound = errors.New("shipping location not found")

// ErrDuplicate is returned when a location name collides within its parent.
var ErrDuplicate = errors.New("shipping location already exists")

// Country is the root of the shipping-rate hierarchy. A nil Cost means no
// shipping cost is known for the country.
type Country struct {
	ID   int64
	Name string
	Cost *decimal.Decimal
}

// State optionally overrides its country's shipping cost.
type State struct {
	ID        int64
	CountryID int64
	Name      string
	Cost      *decimal.Decimal
}

// City optionally overrides its state's shipping cost.
type City struct {
	ID      int64
	StateID int64
	Name    string
	Cost    *decimal.Decimal
}

// Quote is the resolved shipping rate for an address, with the full
// inheritance chain that produced it.
type Quote struct {
	CountryID   int64
	CountryName string
	CountryCost *decimal.Decimal

	StateID   int64
	StateName string
	StateCost *decimal.Decimal

	CityID   int64
	CityName string
	CityCost *decimal.Decimal

	// EffectiveCost is the city override when present, else the state
	// override, else the country base cost, else nil.
	EffectiveCost *decimal.Decimal
}

// Cost returns the effective cost, or zero when no rate is known.
func (q *Quote) Cost() decimal.Decimal {
	if q == nil || q.EffectiveCost == nil {
		return decimal.Zero
	}
	return *q.EffectiveCost
}

// Repository provides read access to the shipping geography.
type Repository interface {
	GetCountry(ctx context.Context, id int64) (*Country, error)
	GetState(ctx context.Context, id int64) (*State, error)
	GetCity(ctx context.Context, id int64) (*City, error)
	ListCountries(ctx context.Context) ([]Country, error)
	ListStates(ctx context.Context, countryID int64) ([]State, error)
	ListCities(ctx context.Context, stateID int64) ([]City, error)
}

// AdminRepository maintains the shipping geography. Saving with a zero ID
// inserts and fills the generated identity.
type AdminRepository interface {
	SaveCountry(ctx context.Context, c *Country) error
	SaveState(ctx context.Context, s *State) error
	SaveCity(ctx context.Context, c *City) error
}
