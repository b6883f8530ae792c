package postgres

import (
	"database/sql"
	"strings"
	"time"

	"github.com/fitdash/fitdash-api/internal/store"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// windowBounds turns an open-ended TimeRange into query arguments.
// Zero bounds become NULL and the queries treat NULL as unbounded.
func windowBounds(w store.TimeRange) (from, to sql.NullTime) {
	if !w.From.IsZero() {
		from = sql.NullTime{Time: w.From, Valid: true}
	}
	if !w.To.IsZero() {
		to = sql.NullTime{Time: w.To, Valid: true}
	}
	return from, to
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func intPtr(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int32)
	return &i
}
