package order

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/shipping"
)

// Snapshot codec for the JSON blob columns on the orders table. Currency
// values are written as fixed scale-2 strings so a decode returns exactly the
// decimals that were charged, with no precision drift.

// EncodeSummary serializes a summary to its persisted JSON form.
func EncodeSummary(s *Summary) []byte {
	var e jx.Encoder
	e.ObjStart()
	encMoneyField(&e, "productTotal", s.ProductTotal)
	encMoneyField(&e, "taxTotal", s.TaxTotal)
	encMoneyField(&e, "shippingTotal", s.ShippingTotal)
	encMoneyField(&e, "discountTotal", s.DiscountTotal)
	encMoneyField(&e, "grandTotal", s.GrandTotal)

	e.FieldStart("taxLines")
	e.ArrStart()
	for _, tl := range s.TaxLines {
		e.ObjStart()
		encStrField(&e, "productId", tl.ProductID)
		encStrField(&e, "name", tl.Name)
		encStrField(&e, "rate", tl.Rate.String())
		encMoneyField(&e, "amount", tl.Amount)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("shippingBreakdown")
	if s.Shipping == nil {
		e.Null()
	} else {
		encQuote(&e, s.Shipping)
	}

	e.FieldStart("appliedCoupon")
	if s.Coupon == nil {
		e.Null()
	} else {
		encCoupon(&e, s.Coupon)
	}

	e.ObjEnd()
	return e.Bytes()
}

// DecodeSummary parses a persisted summary blob.
func DecodeSummary(data []byte) (*Summary, error) {
	s := &Summary{}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "productTotal":
			return decMoney(d, &s.ProductTotal)
		case "taxTotal":
			return decMoney(d, &s.TaxTotal)
		case "shippingTotal":
			return decMoney(d, &s.ShippingTotal)
		case "discountTotal":
			return decMoney(d, &s.DiscountTotal)
		case "grandTotal":
			return decMoney(d, &s.GrandTotal)
		case "taxLines":
			return d.Arr(func(d *jx.Decoder) error {
				tl, err := decTaxLine(d)
				if err != nil {
					return err
				}
				s.TaxLines = append(s.TaxLines, tl)
				return nil
			})
		case "shippingBreakdown":
			if d.Next() == jx.Null {
				return d.Null()
			}
			q, err := decQuote(d)
			if err != nil {
				return err
			}
			s.Shipping = q
			return nil
		case "appliedCoupon":
			if d.Next() == jx.Null {
				return d.Null()
			}
			c, err := decCoupon(d)
			if err != nil {
				return err
			}
			s.Coupon = c
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode summary")
	}
	return s, nil
}

// EncodeLines serializes order lines to their persisted JSON form.
func EncodeLines(lines []Line) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		encStrField(&e, "productId", l.ProductID)
		encStrField(&e, "name", l.Name)
		e.FieldStart("variantId")
		e.Int64(l.VariantID)
		encStrField(&e, "sku", l.SKU)
		encStrField(&e, "variantLabel", l.VariantLabel)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		encStrField(&e, "unitPrice", l.UnitPrice.StringFixed(2))
		encStrField(&e, "taxRate", l.TaxRate.String())
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// DecodeLines parses a persisted lines blob.
func DecodeLines(data []byte) ([]Line, error) {
	var lines []Line
	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var l Line
		err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "productId":
				return decStr(d, &l.ProductID)
			case "name":
				return decStr(d, &l.Name)
			case "variantId":
				v, err := d.Int64()
				l.VariantID = v
				return err
			case "sku":
				return decStr(d, &l.SKU)
			case "variantLabel":
				return decStr(d, &l.VariantLabel)
			case "quantity":
				v, err := d.Int()
				l.Quantity = v
				return err
			case "unitPrice":
				return decMoney(d, &l.UnitPrice)
			case "taxRate":
				return decMoney(d, &l.TaxRate)
			default:
				return d.Skip()
			}
		})
		if err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode lines")
	}
	return lines, nil
}

// EncodeAddress serializes an address snapshot. A nil address encodes as null.
func EncodeAddress(a *Address) []byte {
	var e jx.Encoder
	if a == nil {
		e.Null()
		return e.Bytes()
	}
	e.ObjStart()
	encStrField(&e, "name", a.Name)
	encStrField(&e, "phone", a.Phone)
	encStrField(&e, "line1", a.Line1)
	encStrField(&e, "line2", a.Line2)
	encStrField(&e, "postcode", a.Postcode)
	e.FieldStart("countryId")
	e.Int64(a.CountryID)
	e.FieldStart("stateId")
	e.Int64(a.StateID)
	e.FieldStart("cityId")
	e.Int64(a.CityID)
	e.ObjEnd()
	return e.Bytes()
}

// DecodeAddress parses a persisted address blob; null yields nil.
func DecodeAddress(data []byte) (*Address, error) {
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	a := &Address{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			return decStr(d, &a.Name)
		case "phone":
			return decStr(d, &a.Phone)
		case "line1":
			return decStr(d, &a.Line1)
		case "line2":
			return decStr(d, &a.Line2)
		case "postcode":
			return decStr(d, &a.Postcode)
		case "countryId":
			v, err := d.Int64()
			a.CountryID = v
			return err
		case "stateId":
			v, err := d.Int64()
			a.StateID = v
			return err
		case "cityId":
			v, err := d.Int64()
			a.CityID = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode address")
	}
	return a, nil
}

// EncodePayment serializes the payment method snapshot.
func EncodePayment(p PaymentMethod) []byte {
	var e jx.Encoder
	e.ObjStart()
	encStrField(&e, "method", p.Method)
	encStrField(&e, "reference", p.Reference)
	e.ObjEnd()
	return e.Bytes()
}

// DecodePayment parses a persisted payment blob.
func DecodePayment(data []byte) (PaymentMethod, error) {
	var p PaymentMethod
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "method":
			return decStr(d, &p.Method)
		case "reference":
			return decStr(d, &p.Reference)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return p, errors.Wrap(err, "decode payment")
	}
	return p, nil
}

func encQuote(e *jx.Encoder, q *shipping.Quote) {
	e.ObjStart()
	e.FieldStart("countryId")
	e.Int64(q.CountryID)
	encStrField(e, "countryName", q.CountryName)
	encNullableMoneyField(e, "countryCost", q.CountryCost)
	e.FieldStart("stateId")
	e.Int64(q.StateID)
	encStrField(e, "stateName", q.StateName)
	encNullableMoneyField(e, "stateCost", q.StateCost)
	e.FieldStart("cityId")
	e.Int64(q.CityID)
	encStrField(e, "cityName", q.CityName)
	encNullableMoneyField(e, "cityCost", q.CityCost)
	encNullableMoneyField(e, "effectiveCost", q.EffectiveCost)
	e.ObjEnd()
}

func decQuote(d *jx.Decoder) (*shipping.Quote, error) {
	q := &shipping.Quote{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "countryId":
			v, err := d.Int64()
			q.CountryID = v
			return err
		case "countryName":
			return decStr(d, &q.CountryName)
		case "countryCost":
			return decNullableMoney(d, &q.CountryCost)
		case "stateId":
			v, err := d.Int64()
			q.StateID = v
			return err
		case "stateName":
			return decStr(d, &q.StateName)
		case "stateCost":
			return decNullableMoney(d, &q.StateCost)
		case "cityId":
			v, err := d.Int64()
			q.CityID = v
			return err
		case "cityName":
			return decStr(d, &q.CityName)
		case "cityCost":
			return decNullableMoney(d, &q.CityCost)
		case "effectiveCost":
			return decNullableMoney(d, &q.EffectiveCost)
		default:
			return d.Skip()
		}
	})
	return q, err
}

func decTaxLine(d *jx.Decoder) (TaxLine, error) {
	var tl TaxLine
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			return decStr(d, &tl.ProductID)
		case "name":
			return decStr(d, &tl.Name)
		case "rate":
			return decMoney(d, &tl.Rate)
		case "amount":
			return decMoney(d, &tl.Amount)
		default:
			return d.Skip()
		}
	})
	return tl, err
}

func encCoupon(e *jx.Encoder, c *coupon.Applied) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	encStrField(e, "code", c.Code)
	encStrField(e, "discountType", string(c.DiscountType))
	encStrField(e, "discountValue", c.DiscountValue.String())
	encMoneyField(e, "discountAmount", c.DiscountAmount)
	encStrField(e, "description", c.Description)
	e.ObjEnd()
}

func decCoupon(d *jx.Decoder) (*coupon.Applied, error) {
	c := &coupon.Applied{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			c.ID = v
			return err
		case "code":
			return decStr(d, &c.Code)
		case "discountType":
			var s string
			if err := decStr(d, &s); err != nil {
				return err
			}
			c.DiscountType = coupon.DiscountType(s)
			return nil
		case "discountValue":
			return decMoney(d, &c.DiscountValue)
		case "discountAmount":
			return decMoney(d, &c.DiscountAmount)
		case "description":
			return decStr(d, &c.Description)
		default:
			return d.Skip()
		}
	})
	return c, err
}

func encStrField(e *jx.Encoder, key, val string) {
	e.FieldStart(key)
	e.Str(val)
}

func encMoneyField(e *jx.Encoder, key string, val decimal.Decimal) {
	e.FieldStart(key)
	e.Str(val.StringFixed(2))
}

func encNullableMoneyField(e *jx.Encoder, key string, val *decimal.Decimal) {
	e.FieldStart(key)
	if val == nil {
		e.Null()
		return
	}
	e.Str(val.StringFixed(2))
}

func decStr(d *jx.Decoder, into *string) error {
	v, err := d.Str()
	if err != nil {
		return err
	}
	*into = v
	return nil
}

func decMoney(d *jx.Decoder, into *decimal.Decimal) error {
	s, err := d.Str()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Wrapf(err, "parse decimal %q", s)
	}
	*into = v
	return nil
}

func decNullableMoney(d *jx.Decoder, into **decimal.Decimal) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	var v decimal.Decimal
	if err := decMoney(d, &v); err != nil {
		return err
	}
	*into = &v
	return nil
}
