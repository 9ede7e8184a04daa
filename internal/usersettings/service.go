package usersettings

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/entity"
)

// MaxListRows caps the unfiltered listing.
const MaxListRows = 500

var ErrNotFound = errors.New("not found")

// Store is the persistence the service needs; *repo.Repo satisfies it.
type Store interface {
	GetByID(ctx context.Context, userID int64) (*entity.UserSettings, error)
	List(ctx context.Context, userID *int64, limit int) ([]*entity.UserSettings, error)
	Update(ctx context.Context, userID int64, c entity.Changes) (int64, error)
}

// Service encapsulates the list/edit use cases and depends on a Store.
type Service struct {
	store Store
}

// NewService constructs a Service with the provided store.
func NewService(s Store) *Service {
	return &Service{store: s}
}

// ListResult carries the rows and, for a bad filter, a warning to show.
type ListResult struct {
	Rows    []*entity.UserSettings
	Warning string
}

// List returns rows matching the filter. A blank filter lists everything
// up to MaxListRows; a non-numeric one does the same and sets Warning.
func (s *Service) List(ctx context.Context, filter string) (*ListResult, error) {
	res := &ListResult{}
	var userID *int64
	if filter != "" {
		id, err := strconv.ParseInt(filter, 10, 64)
		if err != nil {
			res.Warning = "Search must be numeric"
		} else {
			userID = &id
		}
	}
	rows, err := s.store.List(ctx, userID, MaxListRows)
	if err != nil {
		return nil, err
	}
	res.Rows = rows
	return res, nil
}

// Get returns a row by id.
func (s *Service) Get(ctx context.Context, userID int64) (*entity.UserSettings, error) {
	row, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

// Submission is the raw edit form.
type Submission struct {
	WantsUpdates     bool
	ApprovedLive     bool
	ApprovedForecast bool
	SettlementPoints []string
	LMPThreshold     string
}

// Update validates sub and writes it over the row. On a *ValidationError
// the stored row is returned unchanged alongside the error so the caller
// can redisplay it; nothing is written.
func (s *Service) Update(ctx context.Context, userID int64, sub Submission) (*entity.UserSettings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	points, err := ValidateSettlementPoints(sub.SettlementPoints)
	if err != nil {
		return current, err
	}
	threshold, err := ParseLMPThreshold(sub.LMPThreshold)
	if err != nil {
		return current, err
	}

	changes := entity.Changes{
		WantsUpdates:     sub.WantsUpdates,
		SettlementPoints: points,
		LMPThreshold:     threshold,
		ApprovedLive:     sub.ApprovedLive,
		ApprovedForecast: sub.ApprovedForecast,
	}
	n, err := s.store.Update(ctx, userID, changes)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// deleted between the read and the write
		return nil, ErrNotFound
	}
	updated := current.Apply(changes)
	return &updated, nil
}
