package database

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNoEntry is returned when an entry lookup matches no row.
var ErrNoEntry = errors.New("entry not found")

const entryColumns = `id, pid, identifier, language, data, finisher_variables, created_at`

const insertEntry = `INSERT INTO formlog_entries (` + entryColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + entryColumns

// InsertEntryParams holds the values of a new entry.
type InsertEntryParams struct {
	ID                pgtype.UUID
	Pid               int32
	Identifier        string
	Language          pgtype.Text
	Data              []byte
	FinisherVariables []byte
	CreatedAt         pgtype.Timestamptz
}

// InsertEntry stores a new entry and returns the stored row.
func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) (FormlogEntry, error) {
	row := q.db.QueryRow(ctx, insertEntry,
		arg.ID,
		arg.Pid,
		arg.Identifier,
		arg.Language,
		arg.Data,
		arg.FinisherVariables,
		arg.CreatedAt,
	)
	return scanEntry(row)
}

const getEntry = `SELECT ` + entryColumns + ` FROM formlog_entries WHERE id = $1`

// GetEntry returns the entry with the given id or ErrNoEntry.
func (q *Queries) GetEntry(ctx context.Context, id pgtype.UUID) (FormlogEntry, error) {
	e, err := scanEntry(q.db.QueryRow(ctx, getEntry, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return FormlogEntry{}, ErrNoEntry
	}
	return e, err
}

// ListEntriesParams selects one page of entries, newest first.
type ListEntriesParams struct {
	Filter EntryFilter
	Limit  int32
	Offset int32
}

// ListEntries returns one page of entries matching the filter.
func (q *Queries) ListEntries(ctx context.Context, arg ListEntriesParams) ([]FormlogEntry, error) {
	where, args := arg.Filter.where(1)
	query := fmt.Sprintf(
		"SELECT %s FROM formlog_entries%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		entryColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []FormlogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountEntries returns the number of entries matching the filter.
func (q *Queries) CountEntries(ctx context.Context, filter EntryFilter) (int64, error) {
	where, args := filter.where(1)

	var count int64
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM formlog_entries"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// StreamEntries yields every entry matching the filter, oldest first, straight
// from the cursor. The query runs when the sequence is ranged over and the
// cursor is closed when ranging stops.
func (q *Queries) StreamEntries(ctx context.Context, filter EntryFilter) iter.Seq2[FormlogEntry, error] {
	return func(yield func(FormlogEntry, error) bool) {
		where, args := filter.where(1)
		query := "SELECT " + entryColumns + " FROM formlog_entries" + where + " ORDER BY created_at ASC, id ASC"

		rows, err := q.db.Query(ctx, query, args...)
		if err != nil {
			yield(FormlogEntry{}, fmt.Errorf("query entries: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(FormlogEntry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(FormlogEntry{}, fmt.Errorf("read entries: %w", err))
		}
	}
}

// DeleteEntriesBefore removes entries created before the cutoff and returns
// the number of rows deleted.
func (q *Queries) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, "DELETE FROM formlog_entries WHERE created_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanEntry(row pgx.Row) (FormlogEntry, error) {
	var e FormlogEntry
	err := row.Scan(
		&e.ID,
		&e.Pid,
		&e.Identifier,
		&e.Language,
		&e.Data,
		&e.FinisherVariables,
		&e.CreatedAt,
	)
	return e, err
}
