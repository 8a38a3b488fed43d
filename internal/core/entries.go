package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	db "github.com/JonMunkholm/formlog/internal/database"
	"github.com/JonMunkholm/formlog/internal/export"
)

// ErrEntryNotFound is returned when an entry id matches no entry.
var ErrEntryNotFound = errors.New("entry not found")

// Pagination limits for ListEntries.
const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// GetEntry returns the entry with the given id.
func (s *Service) GetEntry(ctx context.Context, id string) (Entry, error) {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	row, err := s.store.GetEntry(ctx, pgID)
	if errors.Is(err, db.ErrNoEntry) {
		return Entry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return entryFromRow(row), nil
}

// ListEntries returns one page of entries, newest first. Pages start at 1.
func (s *Service) ListEntries(ctx context.Context, filter EntryFilter, page, pageSize int) (EntryPage, error) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	dbFilter := toDBFilter(filter)

	total, err := s.store.CountEntries(ctx, dbFilter)
	if err != nil {
		return EntryPage{}, err
	}

	result := EntryPage{
		Entries:  []Entry{},
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}

	// Postgres OFFSET is bound as int4; pages past that lie beyond any
	// reachable row.
	offset := int64(page-1) * int64(pageSize)
	if offset > math.MaxInt32 {
		return result, nil
	}

	rows, err := s.store.ListEntries(ctx, db.ListEntriesParams{
		Filter: dbFilter,
		Limit:  int32(pageSize),
		Offset: int32(offset),
	})
	if err != nil {
		return EntryPage{}, err
	}

	result.Entries = make([]Entry, len(rows))
	for i, row := range rows {
		result.Entries[i] = entryFromRow(row)
	}
	return result, nil
}

// StreamEntries returns the matching entries, oldest first, as export records.
// Entries are read from the store while the records are ranged over.
func (s *Service) StreamEntries(ctx context.Context, filter EntryFilter) export.Records {
	rows := s.store.StreamEntries(ctx, toDBFilter(filter))
	return func(yield func(any, error) bool) {
		for row, err := range rows {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(entryFromRow(row), nil) {
				return
			}
		}
	}
}

func toDBFilter(f EntryFilter) db.EntryFilter {
	return db.EntryFilter{
		Identifier: f.Identifier,
		Pid:        ToPgInt4(f.PageID),
		Since:      ToPgTimestamptz(f.Since),
		Until:      ToPgTimestamptz(f.Until),
	}
}

func entryFromRow(row db.FormlogEntry) Entry {
	e := Entry{
		ID:                PgUUIDToString(row.ID),
		PageID:            int(row.Pid),
		Identifier:        row.Identifier,
		Data:              rawJSON(row.Data),
		FinisherVariables: rawJSON(row.FinisherVariables),
	}
	if row.Language.Valid {
		e.Language = row.Language.String
	}
	if row.CreatedAt.Valid {
		e.CreatedAt = row.CreatedAt.Time
	}
	return e
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(b)
}
