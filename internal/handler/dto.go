package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/apperr"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/shipping"
)

type addressDTO struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	CountryID int64  `json:"countryId,omitempty"`
	StateID   int64  `json:"stateId,omitempty"`
	CityID    int64  `json:"cityId,omitempty"`
}

func (a *addressDTO) toDomain() *order.Address {
	if a == nil {
		return nil
	}
	return &order.Address{
		Name:      a.Name,
		Phone:     a.Phone,
		Line1:     a.Line1,
		Line2:     a.Line2,
		Postcode:  a.Postcode,
		CountryID: a.CountryID,
		StateID:   a.StateID,
		CityID:    a.CityID,
	}
}

type lineDTO struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name,omitempty"`
	VariantID    int64  `json:"variantId,omitempty"`
	SKU          string `json:"sku,omitempty"`
	VariantLabel string `json:"variantLabel,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unitPrice"`
	TaxRate      string `json:"taxRate,omitempty"`
}

func linesToDomain(dtos []lineDTO) ([]order.Line, error) {
	lines := make([]order.Line, len(dtos))
	for i, d := range dtos {
		price, err := parseMoney(d.UnitPrice, "unitPrice")
		if err != nil {
			return nil, err
		}
		rate := decimal.Zero
		if d.TaxRate != "" {
			rate, err = parseMoney(d.TaxRate, "taxRate")
			if err != nil {
				return nil, err
			}
		}
		lines[i] = order.Line{
			ProductID:    d.ProductID,
			Name:         d.Name,
			VariantID:    d.VariantID,
			SKU:          d.SKU,
			VariantLabel: d.VariantLabel,
			Quantity:     d.Quantity,
			UnitPrice:    price,
			TaxRate:      rate,
		}
	}
	return lines, nil
}

func parseMoney(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.BadRequest("Invalid decimal value for " + field)
	}
	return d, nil
}

type taxLineDTO struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Rate      string `json:"rate"`
	Amount    string `json:"amount"`
}

type quoteDTO struct {
	CountryID   int64   `json:"countryId"`
	CountryName string  `json:"countryName"`
	CountryCost *string `json:"countryCost"`
	StateID     int64   `json:"stateId,omitempty"`
	StateName   string  `json:"stateName,omitempty"`
	StateCost   *string `json:"stateCost,omitempty"`
	CityID      int64   `json:"cityId,omitempty"`
	CityName    string  `json:"cityName,omitempty"`
	CityCost    *string `json:"cityCost,omitempty"`
	Cost        string  `json:"cost"`
}

type appliedCouponDTO struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	DiscountType   string `json:"discountType"`
	DiscountValue  string `json:"discountValue"`
	DiscountAmount string `json:"discountAmount"`
	Description    string `json:"description,omitempty"`
}

type summaryDTO struct {
	ProductTotal  string            `json:"productTotal"`
	TaxTotal      string            `json:"taxTotal"`
	ShippingTotal string            `json:"shippingTotal"`
	DiscountTotal string            `json:"discountTotal"`
	GrandTotal    string            `json:"grandTotal"`
	TaxLines      []taxLineDTO      `json:"taxLines"`
	Shipping      *quoteDTO         `json:"shippingBreakdown"`
	Coupon        *appliedCouponDTO `json:"appliedCoupon"`
}

func summaryToDTO(s *order.Summary) summaryDTO {
	dto := summaryDTO{
		ProductTotal:  s.ProductTotal.StringFixed(2),
		TaxTotal:      s.TaxTotal.StringFixed(2),
		ShippingTotal: s.ShippingTotal.StringFixed(2),
		DiscountTotal: s.DiscountTotal.StringFixed(2),
		GrandTotal:    s.GrandTotal.StringFixed(2),
		TaxLines:      make([]taxLineDTO, len(s.TaxLines)),
		Shipping:      quoteToDTO(s.Shipping),
		Coupon:        couponToDTO(s.Coupon),
	}
	for i, tl := range s.TaxLines {
		dto.TaxLines[i] = taxLineDTO{
			ProductID: tl.ProductID,
			Name:      tl.Name,
			Rate:      tl.Rate.String(),
			Amount:    tl.Amount.StringFixed(2),
		}
	}
	return dto
}

func quoteToDTO(q *shipping.Quote) *quoteDTO {
	if q == nil {
		return nil
	}
	return &quoteDTO{
		CountryID:   q.CountryID,
		CountryName: q.CountryName,
		CountryCost: moneyPtr(q.CountryCost),
		StateID:     q.StateID,
		StateName:   q.StateName,
		StateCost:   moneyPtr(q.StateCost),
		CityID:      q.CityID,
		CityName:    q.CityName,
		CityCost:    moneyPtr(q.CityCost),
		Cost:        q.Cost().StringFixed(2),
	}
}

func couponToDTO(c *coupon.Applied) *appliedCouponDTO {
	if c == nil {
		return nil
	}
	return &appliedCouponDTO{
		ID:             c.ID,
		Code:           c.Code,
		DiscountType:   string(c.DiscountType),
		DiscountValue:  c.DiscountValue.String(),
		DiscountAmount: c.DiscountAmount.StringFixed(2),
		Description:    c.Description,
	}
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

type orderDTO struct {
	ID            int64      `json:"id"`
	OrderNumber   string     `json:"orderNumber"`
	Status        string     `json:"status"`
	CustomerEmail string     `json:"customerEmail"`
	CustomerName  string     `json:"customerName,omitempty"`
	Summary       summaryDTO `json:"summary"`
	CreatedAt     time.Time  `json:"createdAt"`
}
