package cache

import (
	"context"
	"database/sql"
	"errors"

	"ecobook/internal/db"
)

type memoryStore struct {
	entries map[string]Entry
}

// NewMemoryStore keeps entries in a map.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]Entry)}
}

func (m *memoryStore) Lookup(_ context.Context, key string) (Entry, bool, error) {
	e, ok := m.entries[key]
	return e, ok, nil
}

func (m *memoryStore) Save(_ context.Context, e Entry) error {
	m.entries[e.Key] = e
	return nil
}

type dbStore struct {
	s *db.Store
}

// NewDBStore keeps entries in the evals table of s.
func NewDBStore(s *db.Store) Store {
	return &dbStore{s: s}
}

func (d *dbStore) Lookup(ctx context.Context, key string) (Entry, bool, error) {
	row, err := d.s.EvalByKey(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{
		Key:    row.PositionKey,
		FEN:    row.FEN,
		Score:  row.Score,
		Scored: row.Scored,
		Depth:  row.Depth,
	}, true, nil
}

func (d *dbStore) Save(ctx context.Context, e Entry) error {
	return d.s.UpsertEval(ctx, db.Eval{
		PositionKey: e.Key,
		FEN:         e.FEN,
		Score:       e.Score,
		Scored:      e.Scored,
		Depth:       e.Depth,
	})
}
