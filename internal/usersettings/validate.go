package usersettings

import (
	"errors"
	"fmt"
	"strings"

	vd "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/entity"
)

// Postgres NUMERIC holds at most this many digits before and after the
// decimal point.
const (
	maxNumericIntDigits   = 131072
	maxNumericScaleDigits = 16383
)

var (
	ErrInvalidSettlementPoints = errors.New("invalid settlement points")
	ErrInvalidThreshold        = errors.New("invalid lmp threshold")
)

// ValidationError is a user input problem. Message is safe to show on the
// page; Err is one of the sentinel errors above.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

// SettlementPointsRule accepts a list whose every element is one of
// entity.SettlementPoints. Empty strings are rejected too.
var SettlementPointsRule = []vd.Rule{
	vd.Each(vd.Required, vd.In(lo.ToAnySlice(entity.SettlementPoints)...)),
}

// LMPThresholdRule accepts a decimal that is not negative and fits a
// NUMERIC column.
var LMPThresholdRule = []vd.Rule{
	vd.By(func(v interface{}) error {
		d, ok := v.(decimal.Decimal)
		if !ok {
			return errors.New("must be a decimal")
		}
		if d.IsNegative() {
			return errors.New("must be no less than 0")
		}
		if !fitsNumeric(d) {
			return errors.New("out of range")
		}
		return nil
	}),
}

// fitsNumeric checks the digit counts from the coefficient and exponent
// alone, without expanding d into its full decimal text.
func fitsNumeric(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < -maxNumericScaleDigits {
		return false
	}
	digits := len(strings.TrimPrefix(d.Coefficient().String(), "-"))
	return digits+exp <= maxNumericIntDigits
}

// ValidateSettlementPoints checks the submitted list against the fixed
// enumeration. The whole list is rejected if any element is foreign.
func ValidateSettlementPoints(points []string) ([]string, error) {
	if err := vd.Validate(points, SettlementPointsRule...); err != nil {
		return nil, &ValidationError{
			Field:   "settlement_points",
			Message: fmt.Sprintf("Invalid settlement_points (must be subset of [%s])", strings.Join(entity.SettlementPoints, ", ")),
			Err:     ErrInvalidSettlementPoints,
		}
	}
	if len(points) == 0 {
		return nil, nil
	}
	return points, nil
}

// ParseLMPThreshold parses the raw form value. Blank clears the column;
// anything else must be a non-negative decimal.
func ParseLMPThreshold(raw string) (decimal.NullDecimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	invalid := &ValidationError{
		Field:   "lmp_threshold",
		Message: "lmp_threshold must be a non-negative number",
		Err:     ErrInvalidThreshold,
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, invalid
	}
	if err := vd.Validate(d, LMPThresholdRule...); err != nil {
		return decimal.NullDecimal{}, invalid
	}
	return decimal.NewNullDecimal(d), nil
}
