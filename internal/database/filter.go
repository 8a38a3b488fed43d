package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// EntryFilter narrows entry queries. Zero-valued fields do not filter.
type EntryFilter struct {
	Identifier string
	Pid        pgtype.Int4
	Since      pgtype.Timestamptz // created_at >= Since
	Until      pgtype.Timestamptz // created_at < Until
}

// where builds the WHERE clause with placeholders numbered from argStart.
func (f EntryFilter) where(argStart int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, argStart+len(args)-1))
	}

	if f.Identifier != "" {
		add("identifier = $%d", f.Identifier)
	}
	if f.Pid.Valid {
		add("pid = $%d", f.Pid.Int32)
	}
	if f.Since.Valid {
		add("created_at >= $%d", f.Since)
	}
	if f.Until.Valid {
		add("created_at < $%d", f.Until)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
