package core

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

// memStore is an in-memory EntryStore for tests.
type memStore struct {
	mu      sync.Mutex
	entries []db.FormlogEntry

	insertErr error
	streamErr error // yielded after the first streamed entry
	cutoff    time.Time
}

func (m *memStore) InsertEntry(_ context.Context, arg db.InsertEntryParams) (db.FormlogEntry, error) {
	if m.insertErr != nil {
		return db.FormlogEntry{}, m.insertErr
	}
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
		matched := m.matching(filter)
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.Time.Before(matched[j].CreatedAt.Time)
		})

		for i, e := range matched {
			if i == 1 && m.streamErr != nil {
				yield(db.FormlogEntry{}, m.streamErr)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *memStore) DeleteEntriesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cutoff = cutoff
	kept := m.entries[:0]
	var deleted int64
	for _, e := range m.entries {
		if e.CreatedAt.Time.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return deleted, nil
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

var errStoreDown = errors.New("dial tcp: connection refused")

// fixedClock returns a clock starting at t that advances by step per call.
func fixedClock(t time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(step)
		return now
	}
}
