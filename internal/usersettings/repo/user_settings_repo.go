package repo

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/entity"
)

// The table is owned elsewhere; this repo never creates or alters it.
// Expected schema (Postgres):
// CREATE TABLE telegram_user_settings (
//   user_id BIGINT PRIMARY KEY,
//   wants_updates BOOLEAN,
//   settlement_points TEXT[],
//   lmp_threshold NUMERIC,
//   update_frequency TEXT,
//   approved_live BOOLEAN,
//   moreinfo TEXT,
//   approved_forecast BOOLEAN
// );

const selectColumns = `SELECT user_id, wants_updates, settlement_points, lmp_threshold,
		update_frequency, approved_live, moreinfo, approved_forecast
	FROM telegram_user_settings`

// Repo provides data access for telegram_user_settings using sqlx.
type Repo struct {
	db *sqlx.DB
}

// NewRepo constructs a new Repo with an existing pool.
func NewRepo(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

// GetByID fetches one row or returns sql.ErrNoRows.
func (r *Repo) GetByID(ctx context.Context, userID int64) (*entity.UserSettings, error) {
	const q = selectColumns + ` WHERE user_id = $1`
	var row entity.UserSettings
	if err := r.db.GetContext(ctx, &row, q, userID); err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns at most limit rows ordered by user_id. A non-nil userID
// restricts the result to that identity.
func (r *Repo) List(ctx context.Context, userID *int64, limit int) ([]*entity.UserSettings, error) {
	rows := []*entity.UserSettings{}
	if userID != nil {
		const q = selectColumns + ` WHERE user_id = $1 ORDER BY user_id LIMIT $2`
		if err := r.db.SelectContext(ctx, &rows, q, *userID, limit); err != nil {
			return nil, err
		}
		return rows, nil
	}
	const q = selectColumns + ` ORDER BY user_id LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update overwrites the five editable columns in one statement and returns
// the number of rows affected (0 when the row does not exist).
func (r *Repo) Update(ctx context.Context, userID int64, c entity.Changes) (int64, error) {
	const q = `UPDATE telegram_user_settings
		SET wants_updates = $1, settlement_points = $2, lmp_threshold = $3,
			approved_live = $4, approved_forecast = $5
		WHERE user_id = $6`
	var points pq.StringArray
	if len(c.SettlementPoints) > 0 {
		points = pq.StringArray(c.SettlementPoints)
	}
	var threshold any
	if c.LMPThreshold.Valid {
		threshold = entity.FormatNumeric(c.LMPThreshold.Decimal)
	}
	res, err := r.db.ExecContext(ctx, q,
		c.WantsUpdates,
		points,
		threshold,
		c.ApprovedLive,
		c.ApprovedForecast,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Ping runs a trivial statement to prove the store is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRowxContext(ctx, `SELECT 1`).Scan(&one)
}
