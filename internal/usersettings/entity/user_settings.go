package entity

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// SettlementPoints lists the zones a user may subscribe to, in display order.
var SettlementPoints = []string{"LZ_NORTH", "LZ_WEST", "LZ_SOUTH", "LZ_HOUSTON"}

// UserSettings is one row of telegram_user_settings. Every column but the
// key is nullable.
type UserSettings struct {
	UserID           int64               `db:"user_id"`
	WantsUpdates     sql.NullBool        `db:"wants_updates"`
	SettlementPoints pq.StringArray      `db:"settlement_points"`
	LMPThreshold     decimal.NullDecimal `db:"lmp_threshold"`
	UpdateFrequency  sql.NullString      `db:"update_frequency"`
	ApprovedLive     sql.NullBool        `db:"approved_live"`
	MoreInfo         sql.NullString      `db:"moreinfo"`
	ApprovedForecast sql.NullBool        `db:"approved_forecast"`
}

// Changes holds the editable columns of a row after validation.
// A nil SettlementPoints and an invalid LMPThreshold store NULL.
type Changes struct {
	WantsUpdates     bool
	SettlementPoints []string
	LMPThreshold     decimal.NullDecimal
	ApprovedLive     bool
	ApprovedForecast bool
}

// FormatNumeric renders d with its scale intact, so 12.50 stays 12.50
// rather than collapsing to 12.5.
func FormatNumeric(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// Apply returns a copy of s with c written over the editable columns.
func (s UserSettings) Apply(c Changes) UserSettings {
	s.WantsUpdates = sql.NullBool{Bool: c.WantsUpdates, Valid: true}
	s.ApprovedLive = sql.NullBool{Bool: c.ApprovedLive, Valid: true}
	s.ApprovedForecast = sql.NullBool{Bool: c.ApprovedForecast, Valid: true}
	if len(c.SettlementPoints) == 0 {
		s.SettlementPoints = nil
	} else {
		s.SettlementPoints = append(pq.StringArray(nil), c.SettlementPoints...)
	}
	s.LMPThreshold = c.LMPThreshold
	return s
}
