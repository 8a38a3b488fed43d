package database

import "github.com/jackc/pgx/v5/pgtype"

// FormlogEntry is a row of formlog_entries.
type FormlogEntry struct {
	ID                pgtype.UUID
	Pid               int32
	Identifier        string
	Language          pgtype.Text
	Data              []byte
	FinisherVariables []byte
	CreatedAt         pgtype.Timestamptz
}
