package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront/internal/domain/shipping"
)

const (
	getCountrySQL    = `SELECT id, name, cost FROM shipping_countries WHERE id = $1`
	getStateSQL      = `SELECT id, country_id, name, cost FROM shipping_states WHERE id = $1`
	getCitySQL       = `SELECT id, state_id, name, cost FROM shipping_cities WHERE id = $1`
	listCountriesSQL = `SELECT id, name, cost FROM shipping_countries ORDER BY name`
	listStatesSQL    = `SELECT id, country_id, name, cost FROM shipping_states WHERE country_id = $1 ORDER BY name`
	listCitiesSQL    = `SELECT id, state_id, name, cost FROM shipping_cities WHERE state_id = $1 ORDER BY name`

	insertCountrySQL = `INSERT INTO shipping_countries (name, cost) VALUES ($1, $2) RETURNING id`
	updateCountrySQL = `UPDATE shipping_countries SET name = $2, cost = $3 WHERE id = $1`
	insertStateSQL   = `INSERT INTO shipping_states (country_id, name, cost) VALUES ($1, $2, $3) RETURNING id`
	updateStateSQL   = `UPDATE shipping_states SET country_id = $2, name = $3, cost = $4 WHERE id = $1`
	insertCitySQL    = `INSERT INTO shipping_cities (state_id, name, cost) VALUES ($1, $2, $3) RETURNING id`
	updateCitySQL    = `UPDATE shipping_cities SET state_id = $2, name = $3, cost = $4 WHERE id = $1`
)

var (
	_ shipping.Repository      = (*ShippingRepository)(nil)
	_ shipping.AdminRepository = (*ShippingRepository)(nil)
)

// ShippingRepository implements shipping.Repository backed by PostgreSQL.
type ShippingRepository struct {
	pool *pgxpool.Pool
}

// NewShippingRepository returns a ShippingRepository that uses the given pool.
func NewShippingRepository(pool *pgxpool.Pool) *ShippingRepository {
	return &ShippingRepository{pool: pool}
}

func (r *ShippingRepository) GetCountry(ctx context.Context, id int64) (*shipping.Country, error) {
	var c shipping.Country
	err := r.pool.QueryRow(ctx, getCountrySQL, id).Scan(&c.ID, &c.Name, &c.Cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrNotFound
		}
		return nil, fmt.Errorf("getting country %d: %w", id, err)
	}
	return &c, nil
}

func (r *ShippingRepository) GetState(ctx context.Context, id int64) (*shipping.State, error) {
	var s shipping.State
	err := r.pool.QueryRow(ctx, getStateSQL, id).Scan(&s.ID, &s.CountryID, &s.Name, &s.Cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrNotFound
		}
		return nil, fmt.Errorf("getting state %d: %w", id, err)
	}
	return &s, nil
}

func (r *ShippingRepository) GetCity(ctx context.Context, id int64) (*shipping.City, error) {
	var c shipping.City
	err := r.pool.QueryRow(ctx, getCitySQL, id).Scan(&c.ID, &c.StateID, &c.Name, &c.Cost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrNotFound
		}
		return nil, fmt.Errorf("getting city %d: %w", id, err)
	}
	return &c, nil
}

func (r *ShippingRepository) ListCountries(ctx context.Context) ([]shipping.Country, error) {
	rows, err := r.pool.Query(ctx, listCountriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing countries: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.Country, error) {
		var c shipping.Country
		err := row.Scan(&c.ID, &c.Name, &c.Cost)
		return c, err
	})
}

func (r *ShippingRepository) ListStates(ctx context.Context, countryID int64) ([]shipping.State, error) {
	rows, err := r.pool.Query(ctx, listStatesSQL, countryID)
	if err != nil {
		return nil, fmt.Errorf("listing states of country %d: %w", countryID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.State, error) {
		var s shipping.State
		err := row.Scan(&s.ID, &s.CountryID, &s.Name, &s.Cost)
		return s, err
	})
}

func (r *ShippingRepository) ListCities(ctx context.Context, stateID int64) ([]shipping.City, error) {
	rows, err := r.pool.Query(ctx, listCitiesSQL, stateID)
	if err != nil {
		return nil, fmt.Errorf("listing cities of state %d: %w", stateID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (shipping.City, error) {
		var c shipping.City
		err := row.Scan(&c.ID, &c.StateID, &c.Name, &c.Cost)
		return c, err
	})
}

func (r *ShippingRepository) SaveCountry(ctx context.Context, c *shipping.Country) error {
	if c.ID == 0 {
		if err := r.pool.QueryRow(ctx, insertCountrySQL, c.Name, c.Cost).Scan(&c.ID); err != nil {
			return fmt.Errorf("inserting country: %w", mapDuplicate(err))
		}
		return nil
	}
	tag, err := r.pool.Exec(ctx, updateCountrySQL, c.ID, c.Name, c.Cost)
	if err != nil {
		return fmt.Errorf("updating country %d: %w", c.ID, mapDuplicate(err))
	}
	if tag.RowsAffected() == 0 {
		return shipping.ErrNotFound
	}
	return nil
}

func (r *ShippingRepository) SaveState(ctx context.Context, s *shipping.State) error {
	if s.ID == 0 {
		if err := r.pool.QueryRow(ctx, insertStateSQL, s.CountryID, s.Name, s.Cost).Scan(&s.ID); err != nil {
			return fmt.Errorf("inserting state: %w", mapDuplicate(err))
		}
		return nil
	}
	tag, err := r.pool.Exec(ctx, updateStateSQL, s.ID, s.CountryID, s.Name, s.Cost)
	if err != nil {
		return fmt.Errorf("updating state %d: %w", s.ID, mapDuplicate(err))
	}
	if tag.RowsAffected() == 0 {
		return shipping.ErrNotFound
	}
	return nil
}

func (r *ShippingRepository) SaveCity(ctx context.Context, c *shipping.City) error {
	if c.ID == 0 {
		if err := r.pool.QueryRow(ctx, insertCitySQL, c.StateID, c.Name, c.Cost).Scan(&c.ID); err != nil {
			return fmt.Errorf("inserting city: %w", mapDuplicate(err))
		}
		return nil
	}
	tag, err := r.pool.Exec(ctx, updateCitySQL, c.ID, c.StateID, c.Name, c.Cost)
	if err != nil {
		return fmt.Errorf("updating city %d: %w", c.ID, mapDuplicate(err))
	}
	if tag.RowsAffected() == 0 {
		return shipping.ErrNotFound
	}
	return nil
}

// mapDuplicate translates a unique violation into the domain sentinel so
// handlers can answer 409 without knowing postgres error codes.
func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return shipping.ErrDuplicate
	}
	return err
}
