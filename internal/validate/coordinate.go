package validate

import (
	"fieldsales-service/internal/apperr"

	"github.com/shopspring/decimal"
)

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

const (
	msgCoordinateFormat = "Invalid coordinate format"
	msgCoordinateRange  = "Invalid coordinate values"
)

// Coordinates parses a latitude/longitude pair. Unparseable input fails with
// InvalidFormat, values outside [-90,90] / [-180,180] with InvalidRange.
func Coordinates(lat, lng interface{}) (decimal.Decimal, decimal.Decimal, error) {
	la, err := Decimal("latitude", lat)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperr.New(apperr.InvalidFormat, msgCoordinateFormat)
	}
	lo, err := Decimal("longitude", lng)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperr.New(apperr.InvalidFormat, msgCoordinateFormat)
	}
	if !within(la, maxLatitude) || !within(lo, maxLongitude) {
		return decimal.Zero, decimal.Zero, apperr.New(apperr.InvalidRange, msgCoordinateRange)
	}
	return la, lo, nil
}

func within(v, limit decimal.Decimal) bool {
	return v.GreaterThanOrEqual(limit.Neg()) && v.LessThanOrEqual(limit)
}
