package shipping

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/apperr"
)

// Resolver computes the effective shipping cost for an address using
// city -> state -> country override inheritance. It is read-only.
type Resolver struct {
	repo Repository
}

// NewResolver creates a Resolver backed by the given Repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the shipping quote for the given location identifiers.
// A zero id means the identifier was not supplied; missing parents are filled
// in by following city -> state -> country references. Supplying ids from
// different branches of the hierarchy is a bad-request error, never a silent
// fallback.
func (r *Resolver) Resolve(ctx context.Context, countryID, stateID, cityID int64) (*Quote, error) {
	if countryID == 0 && stateID == 0 && cityID == 0 {
		return nil, apperr.BadRequest("A shipping location is required")
	}

	q := &Quote{}

	if cityID != 0 {
		city, err := r.repo.GetCity(ctx, cityID)
		if err != nil {
			return nil, mapLookupErr(err, "city")
		}
		if stateID != 0 && stateID != city.StateID {
			return nil, apperr.BadRequest("City does not belong to the selected state")
		}
		stateID = city.StateID
		q.CityID = city.ID
		q.CityName = city.Name
		q.CityCost = normalize(city.Cost)
	}

	if stateID != 0 {
		state, err := r.repo.GetState(ctx, stateID)
		if err != nil {
			return nil, mapLookupErr(err, "state")
		}
		if countryID != 0 && countryID != state.CountryID {
			return nil, apperr.BadRequest("State does not belong to the selected country")
		}
		countryID = state.CountryID
		q.StateID = state.ID
		q.StateName = state.Name
		q.StateCost = normalize(state.Cost)
	}

	country, err := r.repo.GetCountry(ctx, countryID)
	if err != nil {
		return nil, mapLookupErr(err, "country")
	}
	q.CountryID = country.ID
	q.CountryName = country.Name
	q.CountryCost = normalize(country.Cost)

	q.EffectiveCost = firstCost(q.CityCost, q.StateCost, q.CountryCost)
	return q, nil
}

// firstCost returns the first non-nil cost in override order.
func firstCost(costs ...*decimal.Decimal) *decimal.Decimal {
	for _, c := range costs {
		if c != nil {
			return c
		}
	}
	return nil
}

// normalize rounds a nullable cost to scale 2.
func normalize(c *decimal.Decimal) *decimal.Decimal {
	if c == nil {
		return nil
	}
	r := c.Round(2)
	return &r
}

func mapLookupErr(err error, kind string) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Shipping " + kind + " not found")
	}
	return errors.Wrap(err, "lookup shipping "+kind)
}
