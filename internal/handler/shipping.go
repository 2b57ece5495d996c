package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/shipping"
)

// ShippingHandler serves shipping geography reads and the admin rate editor.
type ShippingHandler struct {
	repo  shipping.Repository
	admin shipping.AdminRepository
}

// NewShippingHandler creates a ShippingHandler.
func NewShippingHandler(repo shipping.Repository, admin shipping.AdminRepository) *ShippingHandler {
	return &ShippingHandler{repo: repo, admin: admin}
}

type locationDTO struct {
	ID       int64   `json:"id"`
	ParentID int64   `json:"parentId,omitempty"`
	Name     string  `json:"name"`
	Cost     *string `json:"cost"`
}

// Options handles GET /api/shipping/options. Without parameters it lists
// countries; countryId narrows to states and stateId to cities.
func (h *ShippingHandler) Options(w http.ResponseWriter, r *http.Request) {
	if stateID := queryID(r, "stateId"); stateID != 0 {
		cities, err := h.repo.ListCities(r.Context(), stateID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		dtos := make([]locationDTO, len(cities))
		for i, c := range cities {
			dtos[i] = locationDTO{ID: c.ID, ParentID: c.StateID, Name: c.Name, Cost: moneyPtr(c.Cost)}
		}
		writeJSON(w, r, http.StatusOK, dtos)
		return
	}

	if countryID := queryID(r, "countryId"); countryID != 0 {
		states, err := h.repo.ListStates(r.Context(), countryID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		dtos := make([]locationDTO, len(states))
		for i, s := range states {
			dtos[i] = locationDTO{ID: s.ID, ParentID: s.CountryID, Name: s.Name, Cost: moneyPtr(s.Cost)}
		}
		writeJSON(w, r, http.StatusOK, dtos)
		return
	}

	countries, err := h.repo.ListCountries(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	dtos := make([]locationDTO, len(countries))
	for i, c := range countries {
		dtos[i] = locationDTO{ID: c.ID, Name: c.Name, Cost: moneyPtr(c.Cost)}
	}
	writeJSON(w, r, http.StatusOK, dtos)
}

type saveLocationRequest struct {
	ID       int64   `json:"id,omitempty"`
	ParentID int64   `json:"parentId,omitempty"`
	Name     string  `json:"name"`
	Cost     *string `json:"cost"`
}

func (req *saveLocationRequest) cost() (*decimal.Decimal, error) {
	if req.Cost == nil {
		return nil, nil
	}
	d, err := parseMoney(*req.Cost, "cost")
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveCountry handles POST /api/admin/shipping/countries.
func (h *ShippingHandler) SaveCountry(w http.ResponseWriter, r *http.Request) {
	var req saveLocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, r, apperr.BadRequest("Country name is required"))
		return
	}
	cost, err := req.cost()
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := &shipping.Country{ID: req.ID, Name: req.Name, Cost: cost}
	if err := h.admin.SaveCountry(r.Context(), c); err != nil {
		writeError(w, r, mapShippingErr(err, "country"))
		return
	}
	writeJSON(w, r, http.StatusOK, locationDTO{ID: c.ID, Name: c.Name, Cost: moneyPtr(c.Cost)})
}

// SaveState handles POST /api/admin/shipping/states.
func (h *ShippingHandler) SaveState(w http.ResponseWriter, r *http.Request) {
	var req saveLocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.ParentID == 0 {
		writeError(w, r, apperr.BadRequest("State name and countryId are required"))
		return
	}
	cost, err := req.cost()
	if err != nil {
		writeError(w, r, err)
		return
	}

	s := &shipping.State{ID: req.ID, CountryID: req.ParentID, Name: req.Name, Cost: cost}
	if err := h.admin.SaveState(r.Context(), s); err != nil {
		writeError(w, r, mapShippingErr(err, "state"))
		return
	}
	writeJSON(w, r, http.StatusOK, locationDTO{ID: s.ID, ParentID: s.CountryID, Name: s.Name, Cost: moneyPtr(s.Cost)})
}

// SaveCity handles POST /api/admin/shipping/cities.
func (h *ShippingHandler) SaveCity(w http.ResponseWriter, r *http.Request) {
	var req saveLocationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.ParentID == 0 {
		writeError(w, r, apperr.BadRequest("City name and stateId are required"))
		return
	}
	cost, err := req.cost()
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := &shipping.City{ID: req.ID, StateID: req.ParentID, Name: req.Name, Cost: cost}
	if err := h.admin.SaveCity(r.Context(), c); err != nil {
		writeError(w, r, mapShippingErr(err, "city"))
		return
	}
	writeJSON(w, r, http.StatusOK, locationDTO{ID: c.ID, ParentID: c.StateID, Name: c.Name, Cost: moneyPtr(c.Cost)})
}

func mapShippingErr(err error, kind string) error {
	switch {
	case errors.Is(err, shipping.ErrNotFound):
		return apperr.NotFound("Shipping " + kind + " not found")
	case errors.Is(err, shipping.ErrDuplicate):
		return apperr.Conflict("Shipping " + kind + " already exists")
	}
	return err
}

func queryID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return id
}
