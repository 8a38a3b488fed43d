package web

import (
	"context"
	"errors"
	"iter"
	"sort"
	"sync"
	"time"

	db "github.com/JonMunkholm/formlog/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
)

// memStore is an in-memory core.EntryStore for handler tests.
type memStore struct {
	mu      sync.Mutex
	entries []db.FormlogEntry

	// failAfter makes StreamEntries yield errStream after that many entries.
	failAfter int
}

var errStream = errors.New("conn closed")

func (m *memStore) InsertEntry(_ context.Context, arg db.InsertEntryParams) (db.FormlogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := db.FormlogEntry(arg)
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memStore) GetEntry(_ context.Context, id pgtype.UUID) (db.FormlogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return db.FormlogEntry{}, db.ErrNoEntry
}

func (m *memStore) ListEntries(_ context.Context, arg db.ListEntriesParams) ([]db.FormlogEntry, error) {
	matched := m.matching(arg.Filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Time.After(matched[j].CreatedAt.Time)
	})

	start := min(int(arg.Offset), len(matched))
	end := min(start+int(arg.Limit), len(matched))
	return matched[start:end], nil
}

func (m *memStore) CountEntries(_ context.Context, filter db.EntryFilter) (int64, error) {
	return int64(len(m.matching(filter))), nil
}

func (m *memStore) StreamEntries(_ context.Context, filter db.EntryFilter) iter.Seq2[db.FormlogEntry, error] {
	return func(yield func(db.FormlogEntry, error) bool) {
		for i, e := range m.matching(filter) {
			if m.failAfter > 0 && i == m.failAfter {
				yield(db.FormlogEntry{}, errStream)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *memStore) DeleteEntriesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *memStore) matching(f db.EntryFilter) []db.FormlogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []db.FormlogEntry
	for _, e := range m.entries {
		switch {
		case f.Identifier != "" && e.Identifier != f.Identifier:
		case f.Pid.Valid && e.Pid != f.Pid.Int32:
		case f.Since.Valid && e.CreatedAt.Time.Before(f.Since.Time):
		case f.Until.Valid && !e.CreatedAt.Time.Before(f.Until.Time):
		default:
			out = append(out, e)
		}
	}
	return out
}
