package usersettings

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"

	"github.com/ovaphlow/pitchfork/service-settings-admin/internal/usersettings/entity"
)

// memStore is an in-memory Store for service and handler tests.
type memStore struct {
	mu      sync.Mutex
	rows    map[int64]entity.UserSettings
	err     error
	updates int
	// vanish drops the row right before Update, as a concurrent delete would.
	vanish bool
}

func newMemStore(rows ...entity.UserSettings) *memStore {
	m := &memStore{rows: make(map[int64]entity.UserSettings)}
	for _, r := range rows {
		m.rows[r.UserID] = r
	}
	return m
}

func (m *memStore) GetByID(_ context.Context, userID int64) (*entity.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rows[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (m *memStore) List(_ context.Context, userID *int64, limit int) ([]*entity.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		if userID == nil || *userID == id {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []*entity.UserSettings{}
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		r := m.rows[id]
		out = append(out, &r)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, userID int64, c entity.Changes) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.vanish {
		delete(m.rows, userID)
	}
	r, ok := m.rows[userID]
	if !ok {
		return 0, nil
	}
	m.rows[userID] = r.Apply(c)
	m.updates++
	return 1, nil
}

var errStoreDown = errors.New("store down")
